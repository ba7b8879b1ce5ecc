package bind_test

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/textrec"
	"github.com/reoring/textrec/bind"
	"github.com/reoring/textrec/format"
)

type order struct {
	ID     string          `textrec:"id"`
	Qty    int             `textrec:"qty"`
	Price  decimal.Decimal `json:"price"`
	Due    *time.Time      `textrec:"due"`
	Flag   string          `textrec:"flag"`
	Raw    textrec.Cell    `textrec:"note"`
	Hidden string          `textrec:"-"`
	secret string
}

func orderSchema() *textrec.Schema {
	cell := func(name string, typ format.Type) *textrec.SchemaCell {
		return &textrec.SchemaCell{Name: name, Type: typ, Layout: textrec.CSV}
	}
	due := cell("due", format.LocalDate)
	return &textrec.Schema{
		LineSeparator: "\n",
		Lines: []*textrec.SchemaLine{{
			LineType: "order",
			Cells: []*textrec.SchemaCell{
				cell("id", format.String),
				cell("qty", format.Integer),
				cell("price", format.Decimal),
				due,
				cell("flag", format.Character),
				cell("note", format.String),
				cell("Hidden", format.String),
			},
		}},
	}
}

func newBinder(t *testing.T) *bind.Binder {
	t.Helper()
	b := bind.New()
	require.NoError(t, bind.Register[order](b, "order"))
	return b
}

// TestBindParsedLines binds parsed lines into tagged structs.
func TestBindParsedLines(t *testing.T) {
	t.Parallel()
	b := newBinder(t)
	p, err := textrec.NewParser(orderSchema())
	require.NoError(t, err)

	var got []*order
	_, err = p.Parse(context.Background(),
		strings.NewReader("A1,3,9.95,2024-03-01,Y,first,x\nA2,,1,,N,,y\n"),
		textrec.BindLines(b, func(rec any) error {
			got = append(got, rec.(*order))
			return nil
		}), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "A1", first.ID)
	assert.Equal(t, 3, first.Qty)
	assert.True(t, decimal.RequireFromString("9.95").Equal(first.Price))
	require.NotNil(t, first.Due)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *first.Due)
	assert.Equal(t, "Y", first.Flag)
	assert.Equal(t, "first", first.Raw.Value())
	assert.Empty(t, first.Hidden)

	second := got[1]
	assert.Zero(t, second.Qty)
	assert.Nil(t, second.Due)
	assert.True(t, second.Raw.IsEmpty())
}

func TestCreateRecordUnknown(t *testing.T) {
	t.Parallel()
	_, err := newBinder(t).CreateRecord("invoice")
	assert.ErrorIs(t, err, bind.ErrUnknownLineType)
}

func TestAssignMismatch(t *testing.T) {
	t.Parallel()
	b := newBinder(t)
	rec, err := b.CreateRecord("order")
	require.NoError(t, err)

	err = b.Assign(rec, textrec.MustCell("id", format.Integer, 7))
	assert.ErrorContains(t, err, `cell "id"`)

	err = b.Assign(rec, textrec.MustCell("qty", format.Decimal, "1.5"))
	assert.Error(t, err)

	assert.NoError(t, b.Assign(rec, textrec.StringCell("unbound", "x")))
	assert.Error(t, b.Assign(order{}, textrec.StringCell("id", "x")))
}

// TestAssignOverflow rejects integers that do not fit the field.
func TestAssignOverflow(t *testing.T) {
	t.Parallel()
	type small struct {
		N int8 `textrec:"n"`
	}
	b := bind.New()
	require.NoError(t, bind.Register[small](b, "small"))
	rec, err := b.CreateRecord("small")
	require.NoError(t, err)
	assert.NoError(t, b.Assign(rec, textrec.MustCell("n", format.Integer, 100)))
	assert.Equal(t, int8(100), rec.(*small).N)
	assert.ErrorContains(t, b.Assign(rec, textrec.MustCell("n", format.Integer, 300)), "overflows")
}

func TestRegisterErrors(t *testing.T) {
	t.Parallel()
	b := bind.New()
	assert.Error(t, b.Register("x", reflect.TypeFor[int]()))

	type twice struct {
		A string `textrec:"v"`
		B string `json:"v"`
	}
	assert.ErrorContains(t, bind.Register[twice](b, "twice"), "both bind")
}

// TestLineOfRoundTrip builds lines from structs and composes them.
func TestLineOfRoundTrip(t *testing.T) {
	t.Parallel()
	b := newBinder(t)
	c, err := orderSchema().Compile()
	require.NoError(t, err)

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	recs := []*order{
		{ID: "A1", Qty: 3, Price: decimal.RequireFromString("9.95"), Due: &due, Flag: "Y", Raw: textrec.StringCell("note", "a,b")},
		{ID: "A2", Price: decimal.NewFromInt(1), Flag: "N"},
	}
	var lines []*textrec.Line
	for _, r := range recs {
		l, err := b.LineOf(c, "order", r)
		require.NoError(t, err)
		lines = append(lines, l)
	}
	assert.False(t, slices.ContainsFunc(lines[1].Cells(), func(c textrec.Cell) bool { return c.Name() == "Hidden" }))

	var out strings.Builder
	n, err := textrec.Compose(context.Background(), &out, orderSchema(), slices.Values(lines))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "A1,3,9.95,2024-03-01,Y,\"a,b\",\nA2,0,1,,N,,", out.String())
}

func TestLineOfErrors(t *testing.T) {
	t.Parallel()
	b := newBinder(t)
	c, err := orderSchema().Compile()
	require.NoError(t, err)

	_, err = b.LineOf(c, "invoice", &order{})
	assert.True(t, errors.Is(err, bind.ErrUnknownLineType))

	_, err = b.LineOf(c, "order", struct{}{})
	assert.Error(t, err)

	_, err = b.LineOf(c, "order", &order{Flag: "too long"})
	assert.ErrorContains(t, err, "Flag")

	var nilOrder *order
	_, err = b.LineOf(c, "order", nilOrder)
	assert.Error(t, err)
}
