// Package cond provides predicates over the raw text of a cell. They decide
// which line type an input line belongs to and when a cell counts as empty.
package cond

import (
	"fmt"
	"regexp"
	"strings"
)

// Condition tests the raw (untrimmed or trimmed, as the caller decides) text
// of a cell.
type Condition interface {
	Match(text string) bool
	String() string
}

// Op is a comparison against a single operand.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpPrefix
	OpSuffix
	OpContains
)

var opNames = [...]string{OpEq: "eq", OpNe: "ne", OpPrefix: "prefix", OpSuffix: "suffix", OpContains: "contains"}

func (o Op) String() string { return opNames[o] }

type compare struct {
	op   Op
	want string
}

// If builds a comparison condition.
func If(op Op, want string) Condition { return compare{op: op, want: want} }

// Equals matches text equal to want.
func Equals(want string) Condition { return compare{op: OpEq, want: want} }

// NotEquals matches text different from want.
func NotEquals(want string) Condition { return compare{op: OpNe, want: want} }

// Prefix matches text starting with p.
func Prefix(p string) Condition { return compare{op: OpPrefix, want: p} }

// Suffix matches text ending with s.
func Suffix(s string) Condition { return compare{op: OpSuffix, want: s} }

// Contains matches text containing sub.
func Contains(sub string) Condition { return compare{op: OpContains, want: sub} }

func (c compare) Match(text string) bool {
	switch c.op {
	case OpEq:
		return text == c.want
	case OpNe:
		return text != c.want
	case OpPrefix:
		return strings.HasPrefix(text, c.want)
	case OpSuffix:
		return strings.HasSuffix(text, c.want)
	case OpContains:
		return strings.Contains(text, c.want)
	}
	return false
}

func (c compare) String() string { return fmt.Sprintf("%s %q", c.op, c.want) }

type in []string

// In matches text equal to any of values.
func In(values ...string) Condition { return in(values) }

func (c in) Match(text string) bool {
	for _, v := range c {
		if v == text {
			return true
		}
	}
	return false
}

func (c in) String() string {
	q := make([]string, len(c))
	for i, v := range c {
		q[i] = fmt.Sprintf("%q", v)
	}
	return "in (" + strings.Join(q, ", ") + ")"
}

type matches struct{ re *regexp.Regexp }

// Matches matches text containing a match of the regular expression. Anchor
// the expression to test the whole text.
func Matches(expr string) (Condition, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("cond: %w", err)
	}
	return matches{re}, nil
}

// MustMatch is like Matches but panics on an invalid expression.
func MustMatch(expr string) Condition {
	c, err := Matches(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func (c matches) Match(text string) bool { return c.re.MatchString(text) }
func (c matches) String() string         { return fmt.Sprintf("matches %q", c.re) }

type empty struct{}

// Empty matches the empty string.
func Empty() Condition { return empty{} }

func (empty) Match(text string) bool { return text == "" }
func (empty) String() string         { return "empty" }

type blank struct{}

// Blank matches text made only of white space, including the empty string.
func Blank() Condition { return blank{} }

func (blank) Match(text string) bool { return strings.TrimSpace(text) == "" }
func (blank) String() string         { return "blank" }

type all []Condition

// All matches when every condition matches.
func All(conds ...Condition) Condition { return all(conds) }

func (c all) Match(text string) bool {
	for _, it := range c {
		if !it.Match(text) {
			return false
		}
	}
	return true
}

func (c all) String() string { return join(c, " and ") }

type anyOf []Condition

// Any matches when at least one condition matches.
func Any(conds ...Condition) Condition { return anyOf(conds) }

func (c anyOf) Match(text string) bool {
	for _, it := range c {
		if it.Match(text) {
			return true
		}
	}
	return false
}

func (c anyOf) String() string { return join(c, " or ") }

type not struct{ inner Condition }

// Not inverts c.
func Not(c Condition) Condition { return not{c} }

func (c not) Match(text string) bool { return !c.inner.Match(text) }
func (c not) String() string         { return "not (" + c.inner.String() + ")" }

// Func adapts a plain predicate.
type Func func(text string) bool

func (f Func) Match(text string) bool { return f(text) }
func (f Func) String() string         { return "func" }

func join(conds []Condition, sep string) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = "(" + c.String() + ")"
	}
	return strings.Join(parts, sep)
}
