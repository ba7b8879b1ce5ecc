package format

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Symbols are the locale specific characters used by patterned numbers.
type Symbols struct {
	Decimal  rune
	Group    rune
	Minus    rune
	Exponent string
}

// Canonical is used by numeric formats without a pattern.
var Canonical = Symbols{Decimal: '.', Group: ',', Minus: '-', Exponent: "E"}

var symbolCache sync.Map // language.Tag -> Symbols

// SymbolsFor derives the numeric symbols of tag by printing probe numbers
// through golang.org/x/text/message. The undetermined tag yields Canonical.
func SymbolsFor(tag language.Tag) Symbols {
	if tag == language.Und {
		return Canonical
	}
	if s, ok := symbolCache.Load(tag); ok {
		return s.(Symbols)
	}
	sym := probeSymbols(message.NewPrinter(tag))
	symbolCache.Store(tag, sym)
	return sym
}

func probeSymbols(p *message.Printer) Symbols {
	sym := Canonical
	var seps []rune
	prevDigit := false
	for _, r := range p.Sprintf("%.1f", 1234567.5) {
		isDigit := unicode.IsDigit(r)
		if !isDigit && prevDigit {
			seps = append(seps, r)
		}
		prevDigit = isDigit
	}
	switch len(seps) {
	case 0:
	case 1:
		sym.Decimal = seps[0]
	default:
		sym.Decimal = seps[len(seps)-1]
		sym.Group = seps[0]
	}
	if sym.Group == sym.Decimal {
		sym.Group = Canonical.Group
		if sym.Decimal == ',' {
			sym.Group = '.'
		}
	}
	if neg := p.Sprintf("%d", -1); neg != "" {
		if r, _ := utf8.DecodeRuneInString(neg); !unicode.IsDigit(r) {
			sym.Minus = r
		}
	}
	return sym
}

// Exponent markers rewritten to "E" before parsing.
var exponentMarkers = []string{"\u00d710^", "x10^", "\u00b710^", "*10^", "e"}

// normalizeNumber rewrites locale quirks into text strconv understands:
// space grouping (ordinary, no-break, narrow and thin spaces) is collapsed,
// the locale group character is dropped when grouped is set, the decimal
// separator becomes '.', Unicode minus signs become '-', and alternate
// exponent markers become 'E'.
func normalizeNumber(text string, sym Symbols, grouped bool) string {
	if sym.Exponent != "" && sym.Exponent != "E" {
		text = strings.ReplaceAll(text, sym.Exponent, "E")
	}
	for _, m := range exponentMarkers {
		text = strings.ReplaceAll(text, m, "E")
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == ' ', r == '\u00a0', r == '\u202f', r == '\u2009':
			continue
		case grouped && r == sym.Group && r != sym.Decimal:
			continue
		case r == sym.Decimal:
			b.WriteByte('.')
		case r == sym.Minus, r == '\u2212', r == '\u2012', r == '\u2013', r == '\ufe63', r == '\uff0d':
			b.WriteByte('-')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
