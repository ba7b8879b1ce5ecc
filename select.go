package textrec

import (
	"errors"
	"io"
	"slices"

	"github.com/reoring/textrec/internal/buffer"
)

// undefinedRawLimit caps the raw text kept for an unmatched flat record.
const undefinedRawLimit = 80

// selectLine consumes the next record and returns the line shape it belongs
// to. A nil shape with a nil error means the record was consumed but
// matched nothing and the policy let parsing go on. io.EOF ends the input.
func (r *run) selectLine() (*compiledLine, string, error) {
	if r.c.mode == ControlCell {
		return r.selectControl()
	}
	return r.selectStructural()
}

// selectStructural walks the shapes in declared order. A shape is left when
// its occurs are used up or when a record is too short for it and a later
// shape remains.
func (r *run) selectStructural() (*compiledLine, string, error) {
	for r.shape < len(r.c.lines) {
		cl := r.c.lines[r.shape]
		if r.remaining[r.shape] == 0 {
			r.shape++
			continue
		}
		if cl.header && !r.headerDone[r.shape] {
			r.headerDone[r.shape] = true
			text, err := r.readRecord(cl)
			if err != nil {
				return nil, "", err
			}
			r.log.Debug("header skipped", "type", cl.lineType, "text", text)
			continue
		}
		r.buf.Mark()
		text, err := r.readRecord(cl)
		if err != nil {
			r.buf.Release()
			return nil, "", err
		}
		if r.shape < len(r.c.lines)-1 && cl.width(text) < cl.length {
			r.buf.Reset()
			r.log.Debug("shape too wide, trying next", "type", cl.lineType, "width", cl.width(text), "want", cl.length)
			r.shape++
			continue
		}
		r.buf.Release()
		if r.remaining[r.shape] > 0 {
			r.remaining[r.shape]--
		}
		r.record++
		return cl, text, nil
	}
	return r.undefined()
}

// selectControl tries the remaining candidates in most recently used order.
func (r *run) selectControl() (*compiledLine, string, error) {
	if len(r.order) == 0 {
		return r.undefined()
	}
	if r.buf.Strategy() == buffer.Flat {
		if r.buf.AtEOF() {
			return nil, "", io.EOF
		}
		for i, idx := range r.order {
			cl := r.c.lines[idx]
			ok, err := r.peekDiscriminator(cl)
			if err != nil {
				return nil, "", err
			}
			if ok {
				text, err := r.readRecord(cl)
				if err != nil {
					return nil, "", r.ioErr(err)
				}
				r.accept(i)
				r.record++
				return cl, text, nil
			}
		}
		return r.undefined()
	}

	text, err := r.readPhysical()
	if err != nil {
		return nil, "", err
	}
	r.record++
	for i, idx := range r.order {
		cl := r.c.lines[idx]
		if cl.disc != nil && !cl.cond.Match(cl.discriminatorText(text)) {
			continue
		}
		r.accept(i)
		text, err = r.continueRecord(cl, text)
		if err != nil {
			return nil, "", err
		}
		r.log.Debug("line selected", "line", r.record, "type", cl.lineType)
		return cl, text, nil
	}
	return nil, "", r.unmatched(text)
}

// peekDiscriminator reads the discriminator window of a flat record and
// rewinds.
func (r *run) peekDiscriminator(cl *compiledLine) (bool, error) {
	if cl.disc == nil {
		return true, nil
	}
	d := cl.disc
	r.buf.Mark()
	raw, err := r.buf.ReadFixed(d.fixed.trim(), d.offset, d.fixed.Length)
	r.buf.Reset()
	r.buf.Release()
	if err != nil && !errors.Is(err, io.EOF) {
		return false, r.ioErr(err)
	}
	return cl.cond.Match(raw), nil
}

// accept spends one occurrence of the i-th candidate and moves it to the
// front, or drops it once its occurs are used up.
func (r *run) accept(i int) {
	idx := r.order[i]
	if r.remaining[idx] > 0 {
		r.remaining[idx]--
		if r.remaining[idx] == 0 {
			r.order = slices.Delete(r.order, i, i+1)
			return
		}
	}
	if i > 0 {
		copy(r.order[1:i+1], r.order[:i])
		r.order[0] = idx
	}
}

// undefined handles input left over when no shape can take it.
func (r *run) undefined() (*compiledLine, string, error) {
	if r.buf.Strategy() != buffer.Flat {
		text, err := r.readPhysical()
		if err != nil {
			return nil, "", err
		}
		r.record++
		return nil, "", r.unmatched(text)
	}
	if r.buf.AtEOF() {
		return nil, "", io.EOF
	}
	// Flat input cannot be resynchronized: report and stop.
	r.record++
	raw, err := r.buf.ReadFixed(buffer.Trim{}, 0, undefinedRawLimit)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, "", r.ioErr(err)
	}
	if err := r.unmatched(raw); err != nil {
		return nil, "", err
	}
	return nil, "", io.EOF
}

func (r *run) unmatched(text string) error {
	is := newIssue(CodeUndefinedLineType, r.record, nil)
	is.Raw = text
	_, err := r.raise(is)
	return err
}

// discriminatorText extracts the raw discriminator of a separated record.
func (l *compiledLine) discriminatorText(text string) string {
	d := l.disc
	if l.fixed {
		return d.fixed.trim().Apply(substr(text, d.offset, d.fixed.Length))
	}
	fields := splitFields(text, l.delim)
	if d.index < len(fields) {
		return fields[d.index]
	}
	return ""
}

// readRecord reads one record of shape cl, following quoted line breaks.
func (r *run) readRecord(cl *compiledLine) (string, error) {
	if r.buf.Strategy() == buffer.Flat {
		text, err := r.buf.NextLine(cl.length)
		return text, r.ioErr(err)
	}
	text, err := r.readPhysical()
	if err != nil {
		return "", err
	}
	return r.continueRecord(cl, text)
}

// readPhysical reads the next non-empty physical line.
func (r *run) readPhysical() (string, error) {
	for {
		text, err := r.buf.NextLine(0)
		if err != nil {
			return "", r.ioErr(err)
		}
		if text != "" {
			return text, nil
		}
		r.log.Debug("blank line skipped", "after", r.record)
	}
}

func (r *run) continueRecord(cl *compiledLine, text string) (string, error) {
	if cl.fixed {
		return text, nil
	}
	for openQuote(text, cl.delim) {
		more, err := r.buf.NextLine(0)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", r.ioErr(err)
		}
		text += r.c.sep + more
	}
	return text, nil
}

// ioErr keeps io.EOF and turns read failures into io_failure issues.
func (r *run) ioErr(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	var is *Issue
	if errors.As(err, &is) {
		return err
	}
	return ioFailure(r.record, err)
}
