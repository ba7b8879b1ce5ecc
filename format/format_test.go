package format

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// TestRoundTrip parses and formats each type back to the same text.
func TestRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		typ     Type
		pattern string
		loc     language.Tag
		text    string
	}{
		{"string", String, "", language.Und, "Jonas"},
		{"string regexp", String, "[A-Z][a-z]+", language.Und, "Frida"},
		{"integer", Integer, "", language.Und, "-42"},
		{"integer zero padded", Integer, "0000", language.Und, "0042"},
		{"integer grouped", Integer, "#,##0", language.English, "1,234,567"},
		{"float", Float, "", language.Und, "3.25"},
		{"float exponent", Float, "0.###E0", language.English, "1.234E4"},
		{"decimal", Decimal, "", language.Und, "123.45"},
		{"decimal grouped", Decimal, "#,##0.00", language.English, "1,234.50"},
		{"implied decimal", ImpliedDecimal, "2", language.Und, "12345"},
		{"boolean", Boolean, "", language.Und, "true"},
		{"boolean pattern", Boolean, "Y|J;N", language.Und, "N"},
		{"character", Character, "", language.Und, "x"},
		{"local date", LocalDate, "", language.Und, "2024-02-29"},
		{"local time", LocalTime, "", language.Und, "13:45:30.5"},
		{"local date time", LocalDateTime, "", language.Und, "2024-05-01T08:30:00"},
		{"local date pattern", LocalDate, "02.01.2006", language.Und, "29.02.2024"},
		{"zoned", ZonedDateTime, "", language.Und, "2025-01-01T10:00:00+02:00"},
		{"instant", Instant, "", language.Und, "2025-01-01T00:00:00Z"},
		{"date", Date, "", language.Und, "2025-03-04 05:06:07.089"},
		{"duration", Duration, "", language.Und, "1h30m0s"},
		{"enum", Enum, "R=RED|G=GREEN", language.Und, "G"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f, err := New(tc.typ, tc.pattern, tc.loc)
			require.NoError(t, err)
			assert.Equal(t, tc.typ, f.Type())

			v, err := f.Parse(tc.text)
			require.NoError(t, err)
			out, err := f.Format(v)
			require.NoError(t, err)
			assert.Equal(t, tc.text, out)

			again, err := f.Parse(out)
			require.NoError(t, err)
			c, err := Compare(v, again)
			require.NoError(t, err)
			assert.Zero(t, c)
		})
	}
}

func TestRoundTripLocalizedPattern(t *testing.T) {
	t.Parallel()
	for _, tag := range []language.Tag{language.German, language.Swedish, language.French, language.English} {
		f := MustNew(Decimal, "#,##0.00", tag)
		want := decimal.RequireFromString("-1234567.5")
		text, err := f.Format(want)
		require.NoError(t, err)
		got, err := f.Parse(text)
		require.NoError(t, err, "locale %s text %q", tag, text)
		assert.True(t, want.Equal(got.(decimal.Decimal)), "locale %s text %q", tag, text)
	}
}

// TestNumberQuirks accepts locale spaces, minus signs and exponent markers.
func TestNumberQuirks(t *testing.T) {
	t.Parallel()
	f := MustNew(Float, "", language.Und)

	v, err := f.Parse("\u22121\u00a0234.5")
	require.NoError(t, err)
	assert.Equal(t, -1234.5, v)

	v, err = f.Parse("1 234 567")
	require.NoError(t, err)
	assert.Equal(t, 1234567.0, v)

	v, err = f.Parse("1.5\u00d710^3")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, v)

	v, err = f.Parse("2.5e-1")
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		typ     Type
		pattern string
		text    string
	}{
		{Integer, "", "12a"},
		{Float, "", "NaN"},
		{Character, "", "ab"},
		{Boolean, "", "maybe"},
		{Boolean, "Y;N", "yes"},
		{Enum, "A|B", "C"},
		{String, "[0-9]+", "12x"},
		{LocalDate, "", "2024-13-01"},
		{ImpliedDecimal, "2", "1.5"},
		{Duration, "", "forever"},
	}
	for _, tc := range cases {
		f := MustNew(tc.typ, tc.pattern, language.Und)
		_, err := f.Parse(tc.text)
		var pe *ParseError
		require.ErrorAs(t, err, &pe, "%s %q", tc.typ, tc.text)
		assert.Equal(t, tc.typ, pe.Type)
		assert.Equal(t, tc.text, pe.Text)
	}
}

func TestInvalidPatterns(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		typ     Type
		pattern string
	}{
		{Integer, "#,##0.00"},
		{Integer, "0#"},
		{Float, "0.0E"},
		{Decimal, "abc"},
		{ImpliedDecimal, "two"},
		{Boolean, "yes"},
		{Enum, ""},
		{Enum, "A|A"},
		{String, "("},
	} {
		_, err := New(tc.typ, tc.pattern, language.Und)
		assert.Error(t, err, "%s %q", tc.typ, tc.pattern)
	}
}

func TestImpliedDecimal(t *testing.T) {
	t.Parallel()
	f := MustNew(ImpliedDecimal, "2", language.Und)
	v, err := f.Parse("-000050")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-0.5").Equal(v.(decimal.Decimal)))

	s, err := f.Format(decimal.RequireFromString("123.45"))
	require.NoError(t, err)
	assert.Equal(t, "12345", s)
}

// TestFormatCoercesValues accepts Go values of related kinds.
func TestFormatCoercesValues(t *testing.T) {
	t.Parallel()
	s, err := MustNew(Integer, "", language.Und).Format(7)
	require.NoError(t, err)
	assert.Equal(t, "7", s)

	s, err = MustNew(Decimal, "", language.Und).Format(2.5)
	require.NoError(t, err)
	assert.Equal(t, "2.5", s)

	s, err = MustNew(Character, "", language.Und).Format("Z")
	require.NoError(t, err)
	assert.Equal(t, "Z", s)

	_, err = MustNew(Integer, "", language.Und).Format("seven")
	assert.True(t, errors.Is(err, ErrValueType))

	_, err = MustNew(Enum, "A|B", language.Und).Format("C")
	assert.True(t, errors.Is(err, ErrValueType))
}

func TestInstantNormalizesToUTC(t *testing.T) {
	t.Parallel()
	f := MustNew(Instant, "", language.Und)
	v, err := f.Parse("2025-01-01T02:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, v.(time.Time).Location())
	s, err := f.Format(v)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01T00:00:00Z", s)
}

// TestDateIsUTC reads the canonical date layout in UTC whatever the host
// zone, and writes zoned times as their UTC wall clock.
func TestDateIsUTC(t *testing.T) {
	t.Parallel()
	f := MustNew(Date, "", language.Und)
	v, err := f.Parse("2025-03-04 05:06:07.089")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 4, 5, 6, 7, 89e6, time.UTC), v)
	assert.Equal(t, time.UTC, v.(time.Time).Location())

	out, err := f.Format(time.Date(2025, 3, 4, 7, 6, 7, 89e6, time.FixedZone("CEST", 2*3600)))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-04 05:06:07.089", out)
}

// TestText renders values in the canonical form of their type.
func TestText(t *testing.T) {
	t.Parallel()
	cases := []struct {
		typ  Type
		v    any
		want string
	}{
		{Integer, int64(12), "12"},
		{Decimal, decimal.RequireFromString("9.50"), "9.5"},
		{Boolean, true, "true"},
		{Character, 'x', "x"},
		{LocalDate, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), "2024-02-29"},
		{Enum, "GREEN", "GREEN"},
		{String, "Jonas", "Jonas"},
	}
	for _, tc := range cases {
		got, err := Text(tc.typ, tc.v)
		require.NoError(t, err, tc.typ)
		assert.Equal(t, tc.want, got, tc.typ)
	}
	_, err := Text(Integer, "x")
	assert.ErrorIs(t, err, ErrValueType)
}

// TestCompare orders values of each kind.
func TestCompare(t *testing.T) {
	t.Parallel()
	d1, d2 := decimal.RequireFromString("9.5"), decimal.RequireFromString("10")
	cases := []struct {
		a, b any
		want int
	}{
		{int64(9), int64(10), -1},
		{10.5, 10.5, 0},
		{d1, d2, -1},
		{"b", "a", 1},
		{false, true, -1},
		{'a', 'b', -1},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1},
		{time.Second, time.Minute, -1},
	}
	for _, tc := range cases {
		got, err := Compare(tc.a, tc.b)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%v vs %v", tc.a, tc.b)
	}
	_, err := Compare(int64(1), "1")
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]Type{
		"string":          String,
		"Local-Date":      LocalDate,
		"local_date_time": LocalDateTime,
		"int":             Integer,
		"bool":            Boolean,
		"implied_decimal": ImpliedDecimal,
		"ZonedDateTime":   ZonedDateTime,
	} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseType("money")
	assert.Error(t, err)
	assert.Equal(t, "local_time", LocalTime.String())
}
