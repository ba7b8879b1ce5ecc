package textrec

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/reoring/textrec/format"
)

// Cell is a named, typed value of a line. A nil value means the cell is
// empty. Cells are immutable; With returns a modified copy.
type Cell struct {
	name     string
	typ      format.Type
	value    any
	presence Presence
}

// NewCell builds a cell, converting v to the canonical Go type of typ (see
// format.Coerce). A nil v yields an empty cell.
func NewCell(name string, typ format.Type, v any) (Cell, error) {
	cv, err := format.Coerce(typ, v)
	if err != nil {
		return Cell{}, fmt.Errorf("cell %q: %w", name, err)
	}
	return Cell{name: name, typ: typ, value: cv}, nil
}

// MustCell is like NewCell but panics on a value of the wrong type.
func MustCell(name string, typ format.Type, v any) Cell {
	c, err := NewCell(name, typ, v)
	if err != nil {
		panic(err)
	}
	return c
}

// EmptyCell returns an empty cell of the given type.
func EmptyCell(name string, typ format.Type) Cell { return Cell{name: name, typ: typ} }

// StringCell is a shorthand for a String-typed cell.
func StringCell(name, v string) Cell { return Cell{name: name, typ: format.String, value: v} }

func parsedCell(name string, typ format.Type, v any, p Presence) Cell {
	return Cell{name: name, typ: typ, value: v, presence: p}
}

func (c Cell) Name() string         { return c.name }
func (c Cell) Type() format.Type    { return c.typ }
func (c Cell) Value() any           { return c.value }
func (c Cell) IsEmpty() bool        { return c.value == nil }
func (c Cell) Presence() Presence   { return c.presence }
func (c Cell) DefaultApplied() bool { return c.presence.Has(PresenceDefaultApplied) }

// With returns a copy holding v.
func (c Cell) With(v any) (Cell, error) { return NewCell(c.name, c.typ, v) }

// Text returns the value of a String or Enum cell.
func (c Cell) Text() (string, bool) {
	s, ok := c.value.(string)
	return s, ok
}

func (c Cell) Int() (int64, bool) {
	n, ok := c.value.(int64)
	return n, ok
}

func (c Cell) Float() (float64, bool) {
	f, ok := c.value.(float64)
	return f, ok
}

func (c Cell) Decimal() (decimal.Decimal, bool) {
	d, ok := c.value.(decimal.Decimal)
	return d, ok
}

func (c Cell) Bool() (bool, bool) {
	b, ok := c.value.(bool)
	return b, ok
}

func (c Cell) Time() (time.Time, bool) {
	t, ok := c.value.(time.Time)
	return t, ok
}

func (c Cell) String() string {
	if c.value == nil {
		return c.name + "=<empty>"
	}
	return fmt.Sprintf("%s=%v", c.name, c.value)
}

// jsonValue renders the value the way the CLI prints it.
func (c Cell) jsonValue() any {
	switch v := c.value.(type) {
	case rune:
		return string(v)
	case time.Duration:
		return v.String()
	case decimal.Decimal:
		return v.String()
	}
	return c.value
}
