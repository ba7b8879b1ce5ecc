package textrec

import (
	"context"
	"io"
	"slices"
	"sync"
)

// Document collects parsed lines and reported issues. It is safe for
// concurrent use.
type Document struct {
	mu     sync.Mutex
	lines  []*Line
	issues Issues
}

func (d *Document) ConsumeLine(l *Line) error {
	d.mu.Lock()
	d.lines = append(d.lines, l)
	d.mu.Unlock()
	return nil
}

func (d *Document) ConsumeIssue(is Issue) {
	d.mu.Lock()
	d.issues = append(d.issues, is)
	d.mu.Unlock()
}

// Add appends lines built by the caller.
func (d *Document) Add(lines ...*Line) {
	d.mu.Lock()
	d.lines = append(d.lines, lines...)
	d.mu.Unlock()
}

// Lines returns the collected lines in order.
func (d *Document) Lines() []*Line {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.lines)
}

// LinesOf returns the lines of one type.
func (d *Document) LinesOf(lineType string) []*Line {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Line
	for _, l := range d.lines {
		if l.lineType == lineType {
			out = append(out, l)
		}
	}
	return out
}

// Issues returns the reported issues; nil when there were none.
func (d *Document) Issues() Issues {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.issues) == 0 {
		return nil
	}
	return slices.Clone(d.issues)
}

// Err returns the reported issues as an error, or nil.
func (d *Document) Err() error {
	if iss := d.Issues(); iss != nil {
		return iss
	}
	return nil
}

// Compose writes the document with s.
func (d *Document) Compose(ctx context.Context, w io.Writer, s *Schema, opts ...ComposeOpt) (int, error) {
	return Compose(ctx, w, s, slices.Values(d.Lines()), opts...)
}
