package textrec_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/textrec"
	"github.com/reoring/textrec/format"
)

func alignedSchema(sep string) *textrec.Schema {
	cell := func(name string, a textrec.Alignment) *textrec.SchemaCell {
		return &textrec.SchemaCell{Name: name, Type: format.String, Layout: textrec.FixedWidth{Length: 10, Align: a, Fill: '_'}}
	}
	return &textrec.Schema{
		LineSeparator: sep,
		Lines: []*textrec.SchemaLine{{
			LineType: "aligned",
			Cells: []*textrec.SchemaCell{
				cell("left", textrec.AlignLeft),
				cell("right", textrec.AlignRight),
				cell("center", textrec.AlignCenter),
			},
		}},
	}
}

func compose(t *testing.T, s *textrec.Schema, lines ...*textrec.Line) (string, error) {
	t.Helper()
	var b strings.Builder
	_, err := textrec.Compose(context.Background(), &b, s, slices.Values(lines))
	return b.String(), err
}

// TestComposeAlignment pads each alignment to the declared length.
func TestComposeAlignment(t *testing.T) {
	t.Parallel()
	l := textrec.MustLine("aligned",
		textrec.StringCell("left", "AB"),
		textrec.StringCell("right", "AB"),
		textrec.StringCell("center", "AB"),
	)
	out, err := compose(t, alignedSchema("\r\n"), l, l)
	require.NoError(t, err)
	row := "AB________" + "________AB" + "____AB____"
	assert.Equal(t, row+"\r\n"+row, out)
}

// TestComposeRoundTripFixed parses fixed-width text and composes it back unchanged.
func TestComposeRoundTripFixed(t *testing.T) {
	t.Parallel()
	input := "H20240131\nD007\nD120"
	doc, err := textrec.ReadDocument(context.Background(), headDetailSchema("\n"), strings.NewReader(input))
	require.NoError(t, err)
	var b strings.Builder
	n, err := doc.Compose(context.Background(), &b, headDetailSchema("\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, input, b.String())
}

// TestComposeFlat composes lines without a separator between them.
func TestComposeFlat(t *testing.T) {
	t.Parallel()
	lines := []*textrec.Line{
		textrec.MustLine("head", textrec.StringCell("kind", "H"), textrec.EmptyCell("date", format.LocalDate)),
		textrec.MustLine("detail", textrec.StringCell("kind", "D"), textrec.MustCell("qty", format.Integer, 5)),
	}
	out, err := compose(t, headDetailSchema(""), lines...)
	require.NoError(t, err)
	assert.Equal(t, "H        D005", out)
}

// TestComposeIgnoreAndDefault skips ignored cells and writes defaults for missing ones.
func TestComposeIgnoreAndDefault(t *testing.T) {
	t.Parallel()
	fixedSchema := &textrec.Schema{
		LineSeparator: "\n",
		Lines: []*textrec.SchemaLine{{
			LineType: "r",
			Cells: []*textrec.SchemaCell{
				{Name: "a", Type: format.String, Layout: textrec.FixedWidth{Length: 3}},
				{Name: "skip", Type: format.String, IgnoreWrite: true, Layout: textrec.FixedWidth{Length: 2, Fill: '.'}},
				{Name: "c", Type: format.String, Default: "zz", Layout: textrec.FixedWidth{Length: 3}},
			},
		}},
	}
	l := textrec.MustLine("r", textrec.StringCell("a", "x"), textrec.StringCell("skip", "yy"))
	out, err := compose(t, fixedSchema, l)
	require.NoError(t, err)
	assert.Equal(t, "x  ..zz ", out)

	csvSchema := &textrec.Schema{
		LineSeparator: "\n",
		Lines: []*textrec.SchemaLine{{
			LineType: "r",
			Cells: []*textrec.SchemaCell{
				{Name: "a", Type: format.String, Layout: textrec.CSV},
				{Name: "skip", Type: format.String, IgnoreWrite: true, Layout: textrec.CSV},
				{Name: "c", Type: format.String, Default: "zz", Layout: textrec.CSV},
			},
		}},
	}
	out, err = compose(t, csvSchema, l)
	require.NoError(t, err)
	assert.Equal(t, "x,zz", out)
}

// TestComposeUnknownLineType applies the policy to lines the schema does not describe.
func TestComposeUnknownLineType(t *testing.T) {
	t.Parallel()
	stray := textrec.MustLine("stray", textrec.StringCell("x", "1"))
	person := textrec.MustLine("person", textrec.StringCell("First name", "Jonas"), textrec.StringCell("Last name", "Stenberg"))

	_, err := compose(t, personSchema(), stray)
	is, ok := textrec.AsIssue(err)
	require.True(t, ok)
	assert.Equal(t, textrec.CodeUndefinedLineType, is.Code)

	var b strings.Builder
	doc := &textrec.Document{}
	w, err := textrec.NewWriter(&b, personSchema(), textrec.ComposeOpt{
		Policy: textrec.DefaultPolicy().With(textrec.CodeUndefinedLineType, textrec.ActionReport),
		Issues: doc,
	})
	require.NoError(t, err)
	require.NoError(t, w.Write(person))
	require.NoError(t, w.Write(stray))
	require.NoError(t, w.Write(person))
	require.NoError(t, w.Flush())
	assert.Equal(t, 2, w.Count())
	assert.Equal(t, "Jonas Stenberg \nJonas Stenberg ", b.String())
	assert.Len(t, doc.Issues(), 1)
}

// TestComposeFormatFailure reports a value the cell format cannot write.
func TestComposeFormatFailure(t *testing.T) {
	t.Parallel()
	l := textrec.MustLine("row", textrec.StringCell("id", "a"), textrec.StringCell("amount", "lots"))
	_, err := compose(t, amountSchema(), l)
	is, ok := textrec.AsIssue(err)
	require.True(t, ok)
	assert.Equal(t, textrec.CodeCellFormatFailure, is.Code)
	assert.Equal(t, "amount", is.Cell)
	assert.True(t, errors.Is(err, format.ErrValueType))
}

// TestComposeUnquotedSeparator refuses values that would split a record
// when the cell has no quote character.
func TestComposeUnquotedSeparator(t *testing.T) {
	t.Parallel()
	s := &textrec.Schema{
		LineSeparator: "\n",
		Lines: []*textrec.SchemaLine{{
			LineType: "r",
			Cells: []*textrec.SchemaCell{
				{Name: "a", Type: format.String, Layout: textrec.Delimited{Separator: "|"}},
				{Name: "b", Type: format.String, Layout: textrec.Delimited{Separator: "|"}},
			},
		}},
	}
	out, err := compose(t, s, textrec.MustLine("r", textrec.StringCell("a", "x,y"), textrec.StringCell("b", `"q"`)))
	require.NoError(t, err)
	assert.Equal(t, `x,y|"q"`, out)

	for _, bad := range []string{"x|y", "two\nlines"} {
		_, err = compose(t, s, textrec.MustLine("r", textrec.StringCell("a", "ok"), textrec.StringCell("b", bad)))
		is, ok := textrec.AsIssue(err)
		require.True(t, ok, "got %v", err)
		assert.Equal(t, textrec.CodeCellFormatFailure, is.Code)
		assert.Equal(t, "b", is.Cell)
		assert.Equal(t, bad, is.Raw)
	}
}

func TestComposeCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := textrec.MustLine("person", textrec.StringCell("First name", "Jonas"))
	n, err := textrec.Compose(ctx, &strings.Builder{}, personSchema(), slices.Values([]*textrec.Line{l}))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, context.Canceled)
}
