package textrec

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/reoring/textrec/format"
)

// Writer composes lines into text. Lines are joined by the schema's line
// separator, with no separator after the last line. Writer buffers; call
// Flush when done.
type Writer struct {
	c       *Compiled
	w       *bufio.Writer
	log     *slog.Logger
	policy  Policy
	issues  IssueConsumer
	n       int
	headers []bool
	started bool
	sb      strings.Builder
}

// NewWriter compiles s and returns a Writer on w.
func NewWriter(w io.Writer, s *Schema, opts ...ComposeOpt) (*Writer, error) {
	c, err := s.Compile()
	if err != nil {
		return nil, err
	}
	return c.NewWriter(w, opts...), nil
}

// NewWriter returns a Writer over an already compiled schema.
func (c *Compiled) NewWriter(w io.Writer, opts ...ComposeOpt) *Writer {
	opt := lastOpt(opts)
	wr := &Writer{
		c:       c,
		w:       bufio.NewWriter(w),
		log:     loggerOr(opt.Logger),
		policy:  opt.Policy,
		issues:  opt.Issues,
		headers: make([]bool, len(c.lines)),
	}
	if wr.policy == nil {
		wr.policy = DefaultPolicy()
	}
	if wr.issues == nil {
		wr.issues = noIssues{}
	}
	return wr
}

// Count is the number of lines written so far, header rows excluded.
func (w *Writer) Count() int { return w.n }

// Write composes l with the schema line of the same type. A line type the
// schema lacks raises undefined_line_type under the writer's policy; unless
// that fails, the line is dropped.
func (w *Writer) Write(l *Line) error {
	cl := w.c.byType[l.lineType]
	if cl == nil {
		is := newIssue(CodeUndefinedLineType, l.number, nil)
		is.LineType = l.lineType
		switch w.policy.Action(is.Code) {
		case ActionFail:
			return &is
		case ActionReport, ActionSkipLine:
			w.issues.ConsumeIssue(is)
		}
		w.log.Debug("line without schema dropped", "type", l.lineType, "line", l.number)
		return nil
	}
	if cl.header && !w.headers[cl.index] {
		w.headers[cl.index] = true
		w.sb.Reset()
		w.composeHeader(cl)
		if err := w.emit(); err != nil {
			return err
		}
	}
	w.sb.Reset()
	if err := w.compose(cl, l); err != nil {
		return err
	}
	if err := w.emit(); err != nil {
		return err
	}
	w.n++
	w.log.Debug("line composed", "type", l.lineType, "count", w.n)
	return nil
}

// emit writes the composed line, preceded by the separator unless it is the
// first one.
func (w *Writer) emit() error {
	if w.started {
		if _, err := w.w.WriteString(w.c.sep); err != nil {
			return ioFailure(w.n, err)
		}
	}
	w.started = true
	if _, err := w.w.WriteString(w.sb.String()); err != nil {
		return ioFailure(w.n, err)
	}
	return nil
}

// Flush writes buffered text to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return ioFailure(w.n, err)
	}
	return nil
}

func (w *Writer) compose(cl *compiledLine, l *Line) error {
	first := true
	for _, cc := range cl.cells {
		if cc.IgnoreWrite {
			if cl.fixed {
				w.sb.WriteString(cc.fixed.pad(""))
			}
			continue
		}
		text, err := w.cellText(cc, l)
		if err != nil {
			return err
		}
		if cl.fixed {
			w.sb.WriteString(cc.fixed.pad(text))
			continue
		}
		if cl.delim.Quote == 0 && cl.delim.needsQuote(text, w.c.sep) {
			is := newIssue(CodeCellFormatFailure, l.number, map[string]any{"cell": cc.Name, "type": cc.Type})
			is.LineType = l.lineType
			is.Cell = cc.Name
			is.Raw = text
			is.Cause = fmt.Errorf("%q needs quoting but the cell has no quote character", text)
			return &is
		}
		if !first {
			w.sb.WriteString(cl.delim.sep())
		}
		first = false
		w.sb.WriteString(cl.delim.quote(text, w.c.sep))
	}
	return nil
}

// cellText formats the cell's value, or the default text when the cell is
// absent or empty.
func (w *Writer) cellText(cc *compiledCell, l *Line) (string, error) {
	c, ok := l.Cell(cc.Name)
	if !ok || c.IsEmpty() {
		return cc.Default, nil
	}
	text, err := render(cc, c)
	if err != nil {
		is := newIssue(CodeCellFormatFailure, l.number, map[string]any{"cell": cc.Name, "type": cc.Type})
		is.LineType = l.lineType
		is.Cell = cc.Name
		is.Raw = fmt.Sprint(c.value)
		is.Cause = err
		return "", &is
	}
	return text, nil
}

// render formats c with the cell's format. A cell of another type, as
// produced by a schema with different types, goes through its canonical text.
func render(cc *compiledCell, c Cell) (string, error) {
	if c.typ == cc.Type {
		return cc.format.Format(c.value)
	}
	text, err := format.Text(c.typ, c.value)
	if err != nil {
		return "", err
	}
	v, err := cc.format.Parse(text)
	if err != nil {
		return "", fmt.Errorf("%w: cannot read %q as %s: %w", format.ErrValueType, text, cc.Type, err)
	}
	return cc.format.Format(v)
}

func (w *Writer) composeHeader(cl *compiledLine) {
	first := true
	for _, cc := range cl.cells {
		if cc.IgnoreWrite {
			continue
		}
		if !first {
			w.sb.WriteString(cl.delim.sep())
		}
		first = false
		w.sb.WriteString(cl.delim.quote(cc.Name, w.c.sep))
	}
}

// Compose writes lines to w and flushes. ctx is checked between lines.
func Compose(ctx context.Context, w io.Writer, s *Schema, lines iter.Seq[*Line], opts ...ComposeOpt) (int, error) {
	wr, err := NewWriter(w, s, opts...)
	if err != nil {
		return 0, err
	}
	for l := range lines {
		if err := ctx.Err(); err != nil {
			return wr.n, ioFailure(wr.n, err)
		}
		if err := wr.Write(l); err != nil {
			return wr.n, err
		}
	}
	return wr.n, wr.Flush()
}
