package format

import (
	"cmp"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

var canonicalFormats = sync.OnceValue(func() map[Type]Format {
	m := make(map[Type]Format, len(typeNames))
	for t := range typeNames {
		if f, err := New(Type(t), "", language.Und); err == nil {
			m[Type(t)] = f
		}
	}
	return m
})

// Text renders v in the canonical form of typ, the text a cell of that type
// takes when its format has no pattern. Enum values render as themselves.
func Text(typ Type, v any) (string, error) {
	if typ == Enum {
		typ = String
	}
	f, ok := canonicalFormats()[typ]
	if !ok {
		return "", fmt.Errorf("%w: unknown type %d", ErrValueType, int(typ))
	}
	return f.Format(v)
}

// Coerce converts v to the canonical Go type for typ. Integer kinds widen to
// int64, floats to float64, numeric kinds to decimal.Decimal, and a one
// character string to a rune. Values already in canonical form pass through.
func Coerce(typ Type, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case String, Enum:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
	case Integer:
		if n, ok := toInt64(v); ok {
			return n, nil
		}
	case Float:
		switch x := v.(type) {
		case float64:
			return x, nil
		case float32:
			return float64(x), nil
		case decimal.Decimal:
			f, _ := x.Float64()
			return f, nil
		}
		if n, ok := toInt64(v); ok {
			return float64(n), nil
		}
	case Decimal, ImpliedDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case float64:
			return decimal.NewFromFloat(x), nil
		case float32:
			return decimal.NewFromFloat32(x), nil
		case string:
			d, err := decimal.NewFromString(x)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrValueType, err)
			}
			return d, nil
		}
		if n, ok := toInt64(v); ok {
			return decimal.NewFromInt(n), nil
		}
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Character:
		switch x := v.(type) {
		case rune:
			return x, nil
		case byte:
			return rune(x), nil
		case string:
			if utf8.RuneCountInString(x) == 1 {
				r, _ := utf8.DecodeRuneInString(x)
				return r, nil
			}
		}
	case Date, LocalDate, LocalTime, LocalDateTime, ZonedDateTime, Instant:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case Duration:
		switch x := v.(type) {
		case time.Duration:
			return x, nil
		case int64:
			return time.Duration(x), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot use %T as %s", ErrValueType, v, typ)
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case int16:
		return int64(x), true
	case int8:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	}
	return 0, false
}

// Compare orders two values of the same canonical type: numeric magnitude,
// chronological order, false before true, and lexical order for text.
func Compare(a, b any) (int, error) {
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmp.Compare(x, y), nil
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y), nil
		}
	case decimal.Decimal:
		if y, ok := b.(decimal.Decimal); ok {
			return x.Cmp(y), nil
		}
	case rune:
		if y, ok := b.(rune); ok {
			return cmp.Compare(x, y), nil
		}
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0, nil
			case !x:
				return -1, nil
			default:
				return 1, nil
			}
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y), nil
		}
	case time.Duration:
		if y, ok := b.(time.Duration); ok {
			return cmp.Compare(x, y), nil
		}
	}
	return 0, fmt.Errorf("%w: cannot compare %T with %T", ErrValueType, a, b)
}
