package cond

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer for the condition language:
//
//	eq "H"
//	in ("A", "B") and not blank
//	prefix "D" or matches `^X[0-9]+$`
var condLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|` + "`[^`]*`"},
	{Name: "Ident", Pattern: `[a-zA-Z_]+`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

type exprAST struct {
	Or []*andAST `@@ ( "or" @@ )*`
}

type andAST struct {
	And []*unaryAST `@@ ( "and" @@ )*`
}

type unaryAST struct {
	Not   *unaryAST `  "not" @@`
	Group *exprAST  `| "(" @@ ")"`
	Test  *testAST  `| @@`
}

type testAST struct {
	In    []string `  "in" "(" @String ( "," @String )* ")"`
	Op    string   `| @( "eq" | "ne" | "prefix" | "suffix" | "contains" | "matches" )`
	Arg   string   `  @String`
	Empty bool     `| @"empty"`
	Blank bool     `| @"blank"`
}

var condParser = participle.MustBuild[exprAST](
	participle.Lexer(condLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse compiles a condition expression. Operators are eq, ne, prefix,
// suffix, contains, matches, in, empty and blank; they combine with and, or,
// not and parentheses. Operands are double quoted or back quoted strings.
func Parse(expr string) (Condition, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("cond: empty expression")
	}
	ast, err := condParser.ParseString("", expr)
	if err != nil {
		return nil, fmt.Errorf("cond: %w", err)
	}
	return ast.build()
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) Condition {
	c, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func (e *exprAST) build() (Condition, error) {
	conds := make([]Condition, 0, len(e.Or))
	for _, a := range e.Or {
		c, err := a.build()
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return Any(conds...), nil
}

func (a *andAST) build() (Condition, error) {
	conds := make([]Condition, 0, len(a.And))
	for _, u := range a.And {
		c, err := u.build()
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return All(conds...), nil
}

func (u *unaryAST) build() (Condition, error) {
	switch {
	case u.Not != nil:
		c, err := u.Not.build()
		if err != nil {
			return nil, err
		}
		return Not(c), nil
	case u.Group != nil:
		return u.Group.build()
	default:
		return u.Test.build()
	}
}

func (t *testAST) build() (Condition, error) {
	switch {
	case t.In != nil:
		return In(t.In...), nil
	case t.Empty:
		return Empty(), nil
	case t.Blank:
		return Blank(), nil
	}
	switch t.Op {
	case "eq":
		return Equals(t.Arg), nil
	case "ne":
		return NotEquals(t.Arg), nil
	case "prefix":
		return Prefix(t.Arg), nil
	case "suffix":
		return Suffix(t.Arg), nil
	case "contains":
		return Contains(t.Arg), nil
	case "matches":
		return Matches(t.Arg)
	}
	return nil, fmt.Errorf("cond: unknown operator %q", t.Op)
}
