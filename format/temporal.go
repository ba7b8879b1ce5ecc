package format

import (
	"time"
)

// Canonical layouts used when a temporal cell declares no pattern.
const (
	LayoutDate          = "2006-01-02 15:04:05.000"
	LayoutLocalDate     = "2006-01-02"
	LayoutLocalTime     = "15:04:05.999999999"
	LayoutLocalDateTime = "2006-01-02T15:04:05.999999999"
	LayoutZoned         = time.RFC3339Nano
)

// temporalFormat parses with a Go reference layout. Patterns are Go layouts
// too, so month and day names are always English.
type temporalFormat struct {
	typ    Type
	layout string
	loc    *time.Location
}

func newTemporal(typ Type, pattern string) (Format, error) {
	f := temporalFormat{typ: typ, layout: pattern, loc: time.UTC}
	if f.layout == "" {
		switch typ {
		case Date:
			f.layout = LayoutDate
		case LocalDate:
			f.layout = LayoutLocalDate
		case LocalTime:
			f.layout = LayoutLocalTime
		case LocalDateTime:
			f.layout = LayoutLocalDateTime
		case ZonedDateTime, Instant:
			f.layout = LayoutZoned
		}
	}
	return erase[time.Time](typ, f), nil
}

func (f temporalFormat) parse(text string) (time.Time, error) {
	var (
		t   time.Time
		err error
	)
	switch f.typ {
	case ZonedDateTime, Instant:
		t, err = parseZoned(f.layout, text)
	default:
		t, err = time.ParseInLocation(f.layout, text, f.loc)
	}
	if err != nil {
		return time.Time{}, err
	}
	if f.typ == Instant {
		t = t.UTC()
	}
	return t, nil
}

func (f temporalFormat) format(v time.Time) (string, error) {
	switch f.typ {
	case Instant, Date:
		// normalize to UTC; RFC3339Nano trims trailing zeros
		return v.UTC().Format(f.layout), nil
	}
	return v.Format(f.layout), nil
}

func parseZoned(layout, s string) (time.Time, error) {
	t, err := time.Parse(layout, s)
	if err != nil && layout == time.RFC3339Nano {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
	}
	return t, err
}
