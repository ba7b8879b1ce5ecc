package textrec

import (
	"strings"
	"unicode/utf8"
)

// pad fits s into the cell: truncated when too long, otherwise filled on the
// side(s) Align leaves free. Center puts the smaller half of the padding
// first.
func (f FixedWidth) pad(s string) string {
	n := utf8.RuneCountInString(s)
	if n >= f.Length {
		if n == f.Length {
			return s
		}
		return truncate(s, f.Length)
	}
	fill := string(f.fill())
	gap := f.Length - n
	switch f.Align {
	case AlignRight:
		return strings.Repeat(fill, gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(fill, left) + s + strings.Repeat(fill, gap-left)
	default:
		return s + strings.Repeat(fill, gap)
	}
}

func truncate(s string, runes int) string {
	i := 0
	for pos := range s {
		if i == runes {
			return s[:pos]
		}
		i++
	}
	return s
}

// substr cuts a window of runes out of s; windows past the end are short or
// empty.
func substr(s string, offset, length int) string {
	start, i := len(s), 0
	for pos := range s {
		if i == offset {
			start = pos
			break
		}
		i++
	}
	return truncate(s[start:], length)
}

// splitFields splits a delimited record. Quoted fields may contain the
// separator, doubled quotes and line breaks; text after a closing quote is
// kept as is. An unterminated quote runs to the end of the record.
func splitFields(text string, d Delimited) []string {
	sep := d.sep()
	if d.Quote == 0 {
		return strings.Split(text, sep)
	}
	q := string(d.Quote)
	var fields []string
	var b strings.Builder
	for {
		if !strings.HasPrefix(text, q) {
			j := strings.Index(text, sep)
			if j < 0 {
				return append(fields, text)
			}
			fields = append(fields, text[:j])
			text = text[j+len(sep):]
			continue
		}
		b.Reset()
		text = text[len(q):]
		for {
			i := strings.Index(text, q)
			if i < 0 {
				b.WriteString(text)
				text = ""
				break
			}
			b.WriteString(text[:i])
			text = text[i+len(q):]
			if !strings.HasPrefix(text, q) {
				break
			}
			b.WriteString(q)
			text = text[len(q):]
		}
		j := strings.Index(text, sep)
		if j < 0 {
			b.WriteString(text)
			return append(fields, b.String())
		}
		b.WriteString(text[:j])
		fields = append(fields, b.String())
		text = text[j+len(sep):]
	}
}

// openQuote reports whether text ends inside a quoted field, meaning the
// record continues on the next physical line.
func openQuote(text string, d Delimited) bool {
	if d.Quote == 0 {
		return false
	}
	sep, q := d.sep(), string(d.Quote)
	atStart, inQuote := true, false
	for i := 0; i < len(text); {
		rest := text[i:]
		switch {
		case inQuote:
			if strings.HasPrefix(rest, q+q) {
				i += 2 * len(q)
			} else if strings.HasPrefix(rest, q) {
				inQuote = false
				i += len(q)
			} else {
				i++
			}
		case atStart && strings.HasPrefix(rest, q):
			inQuote, atStart = true, false
			i += len(q)
		case strings.HasPrefix(rest, sep):
			atStart = true
			i += len(sep)
		default:
			atStart = false
			i++
		}
	}
	return inQuote
}

// needsQuote reports whether s contains the separator, the quote or a line
// break.
func (d Delimited) needsQuote(s, lineSep string) bool {
	return strings.Contains(s, d.sep()) || (d.Quote != 0 && strings.ContainsRune(s, d.Quote)) ||
		strings.ContainsAny(s, "\r\n") || (lineSep != "" && strings.Contains(s, lineSep))
}

// quote encloses s in quotes when needsQuote holds. Without a quote rune s is
// returned as is.
func (d Delimited) quote(s, lineSep string) string {
	if d.Quote == 0 || !d.needsQuote(s, lineSep) {
		return s
	}
	q := string(d.Quote)
	return q + strings.ReplaceAll(s, q, q+q) + q
}
