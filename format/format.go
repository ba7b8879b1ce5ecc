// Package format converts between cell text and typed Go values.
//
// Every Type has one strategy. A strategy is built from an optional pattern
// and a locale; without a pattern it falls back to a fixed canonical layout so
// that output never depends on the process locale.
package format

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// ErrValueType is returned by Format when the value does not carry the Go
// type that belongs to the format's Type.
var ErrValueType = errors.New("format: value type mismatch")

// Format is a stateless parse/format pair for one Type.
type Format interface {
	Type() Type
	// Parse converts text into the Go value for Type. Errors are *ParseError.
	Parse(text string) (any, error)
	// Format renders a value previously produced by Parse (or Coerce).
	Format(v any) (string, error)
}

// ParseError reports text that could not be converted.
type ParseError struct {
	Type Type
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as %s: %v", e.Text, e.Type, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// New builds the strategy for typ. An empty pattern selects the canonical
// representation; loc only affects patterned numeric formats.
func New(typ Type, pattern string, loc language.Tag) (Format, error) {
	var (
		f   Format
		err error
	)
	switch typ {
	case String:
		f, err = newString(pattern)
	case Integer:
		f, err = newInteger(pattern, loc)
	case Float:
		f, err = newFloat(pattern, loc)
	case Decimal:
		f, err = newDecimal(pattern, loc)
	case ImpliedDecimal:
		f, err = newImpliedDecimal(pattern)
	case Boolean:
		f, err = newBoolean(pattern)
	case Character:
		f = erase[rune](typ, characterFormat{})
	case Date, LocalDate, LocalTime, LocalDateTime, ZonedDateTime, Instant:
		f, err = newTemporal(typ, pattern)
	case Duration:
		f = erase[time.Duration](typ, durationFormat{})
	case Enum:
		f, err = newEnum(pattern)
	default:
		err = fmt.Errorf("format: unsupported type %v", typ)
	}
	if err != nil {
		return nil, fmt.Errorf("format %s pattern %q: %w", typ, pattern, err)
	}
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(typ Type, pattern string, loc language.Tag) Format {
	f, err := New(typ, pattern, loc)
	if err != nil {
		panic(err)
	}
	return f
}

// ---- generic adapter ----

// typed is the strategy shape each concrete format implements.
type typed[T any] interface {
	parse(text string) (T, error)
	format(v T) (string, error)
}

type erased[T any] struct {
	typ  Type
	impl typed[T]
}

func erase[T any](typ Type, impl typed[T]) Format { return erased[T]{typ: typ, impl: impl} }

func (e erased[T]) Type() Type { return e.typ }

func (e erased[T]) Parse(text string) (any, error) {
	v, err := e.impl.parse(text)
	if err != nil {
		return nil, &ParseError{Type: e.typ, Text: text, Err: err}
	}
	return v, nil
}

func (e erased[T]) Format(v any) (string, error) {
	cv, err := Coerce(e.typ, v)
	if err != nil {
		return "", err
	}
	tv, ok := cv.(T)
	if !ok {
		var zero T
		return "", fmt.Errorf("%w: %s expects %T, got %T", ErrValueType, e.typ, zero, v)
	}
	return e.impl.format(tv)
}
