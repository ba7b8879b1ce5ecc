package textrec

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
)

// ErrDuplicateCell is returned when a line already holds a cell of that name.
var ErrDuplicateCell = errors.New("textrec: duplicate cell")

// Line is one record: an ordered list of uniquely named cells tagged with a
// line type.
type Line struct {
	lineType string
	number   int
	cells    []Cell
	index    map[string]int
}

// NewLine returns an empty line of the given type.
func NewLine(lineType string, cells ...Cell) (*Line, error) {
	l := &Line{lineType: lineType, index: make(map[string]int, len(cells))}
	for _, c := range cells {
		if err := l.Add(c); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// MustLine is like NewLine but panics on duplicate cells.
func MustLine(lineType string, cells ...Cell) *Line {
	l, err := NewLine(lineType, cells...)
	if err != nil {
		panic(err)
	}
	return l
}

func (l *Line) Type() string { return l.lineType }

// Number is the 1-based record number in the input, 0 for lines built by
// callers.
func (l *Line) Number() int { return l.number }

func (l *Line) Len() int { return len(l.cells) }

// At returns the i-th cell.
func (l *Line) At(i int) Cell { return l.cells[i] }

// Cell looks a cell up by name.
func (l *Line) Cell(name string) (Cell, bool) {
	i, ok := l.index[name]
	if !ok {
		return Cell{}, false
	}
	return l.cells[i], true
}

// Value returns the value of the named cell, nil when absent or empty.
func (l *Line) Value(name string) any {
	c, _ := l.Cell(name)
	return c.value
}

// Cells returns a copy of the cells in order.
func (l *Line) Cells() []Cell { return append([]Cell(nil), l.cells...) }

// Add appends c. Adding a second cell with the same name fails with
// ErrDuplicateCell.
func (l *Line) Add(c Cell) error {
	if _, ok := l.index[c.name]; ok {
		return fmt.Errorf("%w: %q in line %q", ErrDuplicateCell, c.name, l.lineType)
	}
	if l.index == nil {
		l.index = make(map[string]int)
	}
	l.index[c.name] = len(l.cells)
	l.cells = append(l.cells, c)
	return nil
}

// Set replaces the cell with the same name, or appends it.
func (l *Line) Set(c Cell) {
	if i, ok := l.index[c.name]; ok {
		l.cells[i] = c
		return
	}
	_ = l.Add(c)
}

func (l *Line) String() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%s#%d{", l.lineType, l.number)
	for i, c := range l.cells {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.String())
	}
	b.WriteByte('}')
	return b.String()
}

// MarshalJSON writes {"type":..,"line":..,"cells":{..}} keeping cell order.
func (l *Line) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"type":`)
	t, err := json.Marshal(l.lineType)
	if err != nil {
		return nil, err
	}
	b.Write(t)
	fmt.Fprintf(&b, `,"line":%d,"cells":{`, l.number)
	for i, c := range l.cells {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(c.name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.jsonValue())
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", c.name, err)
		}
		b.Write(k)
		b.WriteByte(':')
		b.Write(v)
	}
	b.WriteString("}}")
	return b.Bytes(), nil
}
