package textrec

import (
	"errors"
	"fmt"
)

// ErrStop is returned by a LineConsumer to end parsing early. The parse then
// returns without error.
var ErrStop = errors.New("textrec: stop")

// LineConsumer receives parsed lines in input order.
type LineConsumer interface {
	ConsumeLine(l *Line) error
}

// IssueConsumer receives reported issues in detection order.
type IssueConsumer interface {
	ConsumeIssue(is Issue)
}

// LineConsumerFunc adapts a function to LineConsumer.
type LineConsumerFunc func(l *Line) error

func (f LineConsumerFunc) ConsumeLine(l *Line) error { return f(l) }

// IssueConsumerFunc adapts a function to IssueConsumer.
type IssueConsumerFunc func(is Issue)

func (f IssueConsumerFunc) ConsumeIssue(is Issue) { f(is) }

type noIssues struct{}

func (noIssues) ConsumeIssue(Issue) {}

// Binder maps lines onto caller-defined records. See package bind for a
// struct tag implementation.
type Binder interface {
	// CreateRecord returns a new record for the line type.
	CreateRecord(lineType string) (any, error)
	// Assign stores the cell into the record.
	Assign(rec any, c Cell) error
}

// Bind creates a record for l and assigns every cell to it.
func Bind(b Binder, l *Line) (any, error) {
	rec, err := b.CreateRecord(l.Type())
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", l.Number(), err)
	}
	for _, c := range l.cells {
		if err := b.Assign(rec, c); err != nil {
			return nil, fmt.Errorf("line %d cell %q: %w", l.Number(), c.Name(), err)
		}
	}
	return rec, nil
}

// BindLines returns a LineConsumer that binds every line and hands the record
// to fn.
func BindLines(b Binder, fn func(rec any) error) LineConsumer {
	return LineConsumerFunc(func(l *Line) error {
		rec, err := Bind(b, l)
		if err != nil {
			return err
		}
		return fn(rec)
	})
}
