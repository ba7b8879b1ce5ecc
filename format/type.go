package format

import (
	"fmt"
	"strings"
)

// Type tags the Go value carried by a cell.
type Type int

const (
	String         Type = iota // string
	Integer                    // int64
	Float                      // float64
	Decimal                    // decimal.Decimal
	ImpliedDecimal             // decimal.Decimal stored without a decimal separator
	Boolean                    // bool
	Character                  // rune
	Date                       // time.Time, UTC wall clock with milliseconds
	LocalDate                  // time.Time, date only
	LocalTime                  // time.Time, time of day only
	LocalDateTime              // time.Time, date and time without zone
	ZonedDateTime              // time.Time, keeps its offset
	Instant                    // time.Time, always UTC
	Duration                   // time.Duration
	Enum                       // string restricted to declared values
)

var typeNames = [...]string{
	String:         "string",
	Integer:        "integer",
	Float:          "float",
	Decimal:        "decimal",
	ImpliedDecimal: "implied_decimal",
	Boolean:        "boolean",
	Character:      "character",
	Date:           "date",
	LocalDate:      "local_date",
	LocalTime:      "local_time",
	LocalDateTime:  "local_date_time",
	ZonedDateTime:  "zoned_date_time",
	Instant:        "instant",
	Duration:       "duration",
	Enum:           "enum",
}

// aliases accepted by ParseType in addition to the canonical names.
var typeAliases = map[string]Type{
	"text":      String,
	"int":       Integer,
	"long":      Integer,
	"double":    Float,
	"bigdec":    Decimal,
	"implied":   ImpliedDecimal,
	"bool":      Boolean,
	"char":      Character,
	"datetime":  LocalDateTime,
	"timestamp": Instant,
}

// String returns the canonical type name.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// Temporal reports whether values of t are time.Time.
func (t Type) Temporal() bool {
	switch t {
	case Date, LocalDate, LocalTime, LocalDateTime, ZonedDateTime, Instant:
		return true
	}
	return false
}

// ParseType resolves a type name. Matching ignores case, dashes and underscores.
func ParseType(s string) (Type, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(strings.TrimSpace(s)))
	for i, name := range typeNames {
		if strings.ReplaceAll(name, "_", "") == key {
			return Type(i), nil
		}
	}
	if t, ok := typeAliases[key]; ok {
		return t, nil
	}
	return 0, fmt.Errorf("format: unknown type %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
