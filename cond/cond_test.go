package cond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		c    Condition
		in   string
		want bool
	}{
		{Equals("H"), "H", true},
		{Equals("H"), "D", false},
		{NotEquals("H"), "D", true},
		{Prefix("AB"), "ABC", true},
		{Suffix("BC"), "ABC", true},
		{Contains("x"), "abc", false},
		{In("A", "B"), "B", true},
		{In("A", "B"), "C", false},
		{MustMatch(`^D[0-9]$`), "D7", true},
		{Empty(), "", true},
		{Empty(), " ", false},
		{Blank(), "   ", true},
		{All(Prefix("A"), Suffix("Z")), "AZ", true},
		{All(Prefix("A"), Suffix("Z")), "AB", false},
		{Any(Equals("A"), Equals("B")), "B", true},
		{Not(Equals("A")), "A", false},
		{Func(func(s string) bool { return len(s) == 2 }), "ab", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.c.Match(tc.in), "%s on %q", tc.c, tc.in)
	}
}

// TestParse builds conditions from their text form.
func TestParse(t *testing.T) {
	t.Parallel()
	cases := []struct {
		expr string
		in   string
		want bool
	}{
		{`eq "H"`, "H", true},
		{`eq "H"`, "h", false},
		{`ne "H"`, "D", true},
		{`prefix "D" or prefix "E"`, "E1", true},
		{`in ("A", "B") and not blank`, "A", true},
		{`in ("A", "B") and not blank`, "C", false},
		{"matches `^[0-9]+$`", "123", true},
		{"matches `^[0-9]+$`", "12a", false},
		{`not (eq "A" or eq "B")`, "C", true},
		{`empty or eq "-"`, "-", true},
		{`blank`, "  ", true},
		{`contains "\""`, `a"b`, true},
	}
	for _, tc := range cases {
		c, err := Parse(tc.expr)
		require.NoError(t, err, tc.expr)
		assert.Equal(t, tc.want, c.Match(tc.in), "%s on %q", tc.expr, tc.in)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	for _, expr := range []string{
		"",
		`eq`,
		`eq "A" and`,
		`within "A"`,
		"matches `(`",
		`in ()`,
	} {
		_, err := Parse(expr)
		assert.Error(t, err, expr)
	}
}

// TestStringIsReadable prints conditions back in the text form Parse reads.
func TestStringIsReadable(t *testing.T) {
	t.Parallel()
	c := MustParse(`in ("A", "B") and not eq "C"`)
	assert.Equal(t, `(in ("A", "B")) and (not (eq "C"))`, c.String())
}
