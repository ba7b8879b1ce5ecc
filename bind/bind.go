// Package bind maps textrec lines onto Go structs.
//
// Each line type is registered with a struct type. Fields bind to cells by
// name, resolved with textrec.ResolveCellName: a `textrec:"name"` tag wins,
// then the json tag name, then the field name. A field tagged "-" is never
// bound.
//
//	type Detail struct {
//		Kind string `textrec:"kind"`
//		Qty  int    `textrec:"qty"`
//	}
//
//	b := bind.New()
//	bind.Register[Detail](b, "detail")
//	err := p.Parse(ctx, r, textrec.BindLines(b, handle), nil)
package bind

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/reoring/textrec"
)

// ErrUnknownLineType is returned for a line type that was never registered.
var ErrUnknownLineType = errors.New("bind: line type not registered")

var cellType = reflect.TypeFor[textrec.Cell]()

type recordType struct {
	t      reflect.Type
	fields map[string]int // cell name -> struct field index
}

// Binder implements textrec.Binder over registered struct types. Register
// everything before use; afterwards a Binder is safe for concurrent use.
type Binder struct {
	types map[string]*recordType
}

// New returns an empty Binder.
func New() *Binder {
	return &Binder{types: map[string]*recordType{}}
}

// Register binds lineType to struct type T. Records are created as *T.
func Register[T any](b *Binder, lineType string) error {
	return b.Register(lineType, reflect.TypeFor[T]())
}

// Register binds lineType to the struct type t (or the struct t points to).
func (b *Binder) Register(lineType string, t reflect.Type) error {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("bind: %s: %s is not a struct", lineType, t)
	}
	rt := &recordType{t: t, fields: map[string]int{}}
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := textrec.ResolveCellName(sf)
		if name == "-" || name == "" {
			continue
		}
		if j, dup := rt.fields[name]; dup {
			return fmt.Errorf("bind: %s: fields %s and %s both bind cell %q", lineType, t.Field(j).Name, sf.Name, name)
		}
		rt.fields[name] = i
	}
	b.types[lineType] = rt
	return nil
}

// CreateRecord returns a pointer to a new zero struct for lineType.
func (b *Binder) CreateRecord(lineType string) (any, error) {
	rt, ok := b.types[lineType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLineType, lineType)
	}
	return reflect.New(rt.t).Interface(), nil
}

// Assign stores c into the field bound to its name. Cells without a field
// are ignored; empty cells leave the zero value.
func (b *Binder) Assign(rec any, c textrec.Cell) error {
	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind: record must be a non-nil struct pointer, got %T", rec)
	}
	rv = rv.Elem()
	rt := b.lookup(rv.Type())
	if rt == nil {
		return fmt.Errorf("bind: %s is not registered", rv.Type())
	}
	idx, ok := rt.fields[c.Name()]
	if !ok {
		return nil
	}
	fv := rv.Field(idx)
	if fv.Type() == cellType {
		fv.Set(reflect.ValueOf(c))
		return nil
	}
	if c.IsEmpty() {
		fv.Set(reflect.Zero(fv.Type()))
		return nil
	}
	return set(fv, c)
}

func (b *Binder) lookup(t reflect.Type) *recordType {
	for _, rt := range b.types {
		if rt.t == t {
			return rt
		}
	}
	return nil
}

// set assigns the cell value to fv, allocating pointers and converting
// between numeric kinds.
func set(fv reflect.Value, c textrec.Cell) error {
	if fv.Kind() == reflect.Pointer {
		p := reflect.New(fv.Type().Elem())
		if err := set(p.Elem(), c); err != nil {
			return err
		}
		fv.Set(p)
		return nil
	}
	vv := reflect.ValueOf(c.Value())
	switch {
	case vv.Type().AssignableTo(fv.Type()):
		fv.Set(vv)
	case fv.Kind() == reflect.String:
		// Characters become strings; numbers never do.
		switch v := c.Value().(type) {
		case string:
			fv.SetString(v)
		case rune:
			fv.SetString(string(v))
		default:
			return mismatch(fv, c)
		}
	case isNumber(vv.Kind()) && isNumber(fv.Kind()) && vv.Type().ConvertibleTo(fv.Type()):
		cv := vv.Convert(fv.Type())
		if !cv.Convert(vv.Type()).Equal(vv) {
			return fmt.Errorf("bind: cell %q: %v overflows %s", c.Name(), c.Value(), fv.Type())
		}
		fv.Set(cv)
	case vv.Type().ConvertibleTo(fv.Type()) && vv.Kind() == fv.Kind():
		fv.Set(vv.Convert(fv.Type()))
	default:
		return mismatch(fv, c)
	}
	return nil
}

func mismatch(fv reflect.Value, c textrec.Cell) error {
	return fmt.Errorf("bind: cell %q: cannot store %T in %s", c.Name(), c.Value(), fv.Type())
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// LineOf builds a line of lineType from rec, typing each cell with the
// compiled schema. Cells without a bound field are left out, so the writer
// falls back to their defaults.
func (b *Binder) LineOf(c *textrec.Compiled, lineType string, rec any) (*textrec.Line, error) {
	rt, ok := b.types[lineType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLineType, lineType)
	}
	rv := reflect.ValueOf(rec)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, fmt.Errorf("bind: nil %s record", lineType)
		}
		rv = rv.Elem()
	}
	if rv.Type() != rt.t {
		return nil, fmt.Errorf("bind: %s expects %s, got %s", lineType, rt.t, rv.Type())
	}
	l, err := textrec.NewLine(lineType)
	if err != nil {
		return nil, err
	}
	for _, col := range c.Columns() {
		if col.LineType != lineType {
			continue
		}
		idx, ok := rt.fields[col.Cell]
		if !ok {
			continue
		}
		fv := rv.Field(idx)
		var cell textrec.Cell
		switch {
		case fv.Type() == cellType && fv.Interface().(textrec.Cell).Name() != "":
			cell = fv.Interface().(textrec.Cell)
		case fv.Type() == cellType, fv.Kind() == reflect.Pointer && fv.IsNil():
			cell = textrec.EmptyCell(col.Cell, col.Type)
		default:
			for fv.Kind() == reflect.Pointer {
				fv = fv.Elem()
			}
			cell, err = textrec.NewCell(col.Cell, col.Type, plain(fv))
			if err != nil {
				return nil, fmt.Errorf("bind: field %s: %w", rt.t.Field(idx).Name, err)
			}
		}
		if err := l.Add(cell); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// plain strips named types down to the builtin kinds NewCell understands.
func plain(v reflect.Value) any {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int64:
		return v.Int()
	case reflect.Int32:
		return int32(v.Int())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return v.Interface()
}
