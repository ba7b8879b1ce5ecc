package textrec

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/reoring/textrec/cond"
	"github.com/reoring/textrec/format"
	"github.com/reoring/textrec/internal/buffer"
)

// Alignment places a value inside a fixed-width cell.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
)

var alignNames = [...]string{"left", "right", "center"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignNames) {
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
	return alignNames[a]
}

// ParseAlignment accepts left, right and center (or centre).
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left":
		return AlignLeft, nil
	case "right":
		return AlignRight, nil
	case "center", "centre":
		return AlignCenter, nil
	}
	return 0, fmt.Errorf("textrec: unknown alignment %q", s)
}

func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Layout places a cell in a line: FixedWidth or Delimited.
type Layout interface{ isLayout() }

// FixedWidth cells occupy Length characters. Shorter values are padded with
// Fill (' ' when zero) according to Align; longer values are truncated.
type FixedWidth struct {
	Length int
	Align  Alignment
	Fill   rune
}

func (FixedWidth) isLayout() {}

func (f FixedWidth) fill() rune {
	if f.Fill == 0 {
		return ' '
	}
	return f.Fill
}

// trim strips the padding that Align would have added.
func (f FixedWidth) trim() buffer.Trim {
	t := buffer.Trim{Fill: f.fill()}
	switch f.Align {
	case AlignRight:
		t.Left = true
	case AlignCenter:
		t.Left, t.Right = true, true
	default:
		t.Right = true
	}
	return t
}

// Delimited cells are separated by Separator ("," when empty). Values that
// contain the separator, the quote or a line break are quoted with Quote; a
// zero Quote disables quoting.
type Delimited struct {
	Separator string
	Quote     rune
}

func (Delimited) isLayout() {}

func (d Delimited) sep() string {
	if d.Separator == "" {
		return ","
	}
	return d.Separator
}

// CSV is the RFC 4180 layout.
var CSV = Delimited{Separator: ",", Quote: '"'}

// Discriminator recognizes a line type by the raw text of one of its cells.
type Discriminator struct {
	Cell      string
	Condition cond.Condition
}

// SchemaCell describes one cell of a line.
type SchemaCell struct {
	Name    string
	Type    format.Type
	Pattern string
	// Locale overrides the schema locale; language.Und inherits it.
	Locale    language.Tag
	Mandatory bool
	// Default is raw text used when the input is empty.
	Default string
	// EmptyWhen marks further raw texts as empty, e.g. cond.Blank().
	EmptyWhen cond.Condition
	// Min and Max are raw text bounds, parsed with the cell's format.
	Min, Max    string
	IgnoreRead  bool
	IgnoreWrite bool
	// CacheSize is the number of parsed values remembered by raw text.
	CacheSize int
	Layout    Layout
}

// SchemaLine describes one line shape.
type SchemaLine struct {
	LineType string
	Cells    []*SchemaCell
	// Occurs is the expected number of repetitions; zero or less is unbounded.
	// A structural schema allows one unbounded line; with discriminators any
	// number of lines may be unbounded.
	Occurs        int
	Discriminator *Discriminator
	// Header marks a delimited line whose first row holds the cell names.
	Header bool
}

// Schema is the declarative description of all line shapes of a file.
type Schema struct {
	Lines []*SchemaLine
	// LineSeparator ends each line; empty means lines follow each other
	// without separator and every line must be fixed width.
	LineSeparator string
	Locale        language.Tag
}

// Mode is the way line types are selected.
type Mode int

const (
	// Structural selection walks the lines in order, honoring Occurs.
	Structural Mode = iota
	// ControlCell selection tests discriminators against each input line.
	ControlCell
)

func (m Mode) String() string {
	if m == ControlCell {
		return "control-cell"
	}
	return "structural"
}

// Mode is ControlCell as soon as one line declares a discriminator.
func (s *Schema) Mode() Mode {
	for _, l := range s.Lines {
		if l != nil && l.Discriminator != nil {
			return ControlCell
		}
	}
	return Structural
}

// Line returns the line with the given type, or nil.
func (s *Schema) Line(lineType string) *SchemaLine {
	for _, l := range s.Lines {
		if l != nil && l.LineType == lineType {
			return l
		}
	}
	return nil
}

// Validate reports every structural problem of the schema.
func (s *Schema) Validate() error {
	_, err := s.Compile()
	return err
}

// Compiled is a validated schema with resolved formats. It is a snapshot:
// later changes to the Schema do not affect it, and it is safe for
// concurrent use.
type Compiled struct {
	lines  []*compiledLine
	byType map[string]*compiledLine
	sep    string
	mode   Mode
}

type compiledLine struct {
	index    int
	lineType string
	cells    []*compiledCell
	occurs   int
	header   bool
	fixed    bool
	// length is the sum of cell lengths for fixed lines and the field count
	// for delimited lines.
	length int
	delim  Delimited
	disc   *compiledCell
	cond   cond.Condition
}

type compiledCell struct {
	SchemaCell
	index  int
	offset int
	fixed  FixedWidth
	format format.Format
	def    any
	min    any
	max    any
}

func (c *compiledCell) hasDefault() bool { return c.Default != "" }

// Compile validates s and resolves its formats.
func (s *Schema) Compile() (*Compiled, error) {
	if s == nil {
		return nil, errors.New("textrec: nil schema")
	}
	var errs []error
	fail := func(msg string, args ...any) {
		errs = append(errs, fmt.Errorf(msg, args...))
	}
	if len(s.Lines) == 0 {
		fail("schema: no lines")
	}
	c := &Compiled{byType: map[string]*compiledLine{}, sep: s.LineSeparator, mode: s.Mode()}
	unbounded := 0
	for i, sl := range s.Lines {
		if sl == nil {
			fail("line %d: nil", i)
			continue
		}
		cl, lineErrs := compileLine(sl, s)
		errs = append(errs, lineErrs...)
		if sl.LineType == "" {
			fail("line %d: empty line type", i)
		} else if _, dup := c.byType[sl.LineType]; dup {
			fail("line %q: duplicate line type", sl.LineType)
		}
		if s.LineSeparator == "" {
			if !cl.fixed {
				fail("line %q: delimited lines need a line separator", sl.LineType)
			} else if cl.length == 0 {
				fail("line %q: zero width without a line separator", sl.LineType)
			}
		}
		if cl.header && c.mode == ControlCell {
			fail("line %q: header rows are not supported with discriminators", sl.LineType)
		}
		if sl.Occurs <= 0 {
			unbounded++
		}
		cl.index = len(c.lines)
		c.lines = append(c.lines, cl)
		c.byType[sl.LineType] = cl
	}
	if c.mode == Structural && unbounded > 1 {
		fail("schema: %d lines with unbounded occurs, at most one allowed", unbounded)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func compileLine(sl *SchemaLine, s *Schema) (*compiledLine, []error) {
	var errs []error
	fail := func(msg string, args ...any) {
		errs = append(errs, fmt.Errorf("line %q: %s", sl.LineType, fmt.Sprintf(msg, args...)))
	}
	cl := &compiledLine{lineType: sl.LineType, occurs: sl.Occurs, header: sl.Header, fixed: true}
	if len(sl.Cells) == 0 {
		fail("no cells")
	}
	names := map[string]*compiledCell{}
	for i, sc := range sl.Cells {
		if sc == nil {
			fail("cell %d: nil", i)
			continue
		}
		cc := &compiledCell{SchemaCell: *sc, index: i}
		switch l := sc.Layout.(type) {
		case FixedWidth:
			if i > 0 && !cl.fixed {
				fail("cell %q: mixes fixed-width and delimited layouts", sc.Name)
			}
			if l.Length < 0 {
				fail("cell %q: negative length %d", sc.Name, l.Length)
			}
			cc.fixed = l
			cc.offset = cl.length
			cl.length += max(l.Length, 0)
		case Delimited:
			if i == 0 {
				cl.fixed = false
				cl.delim = l
			} else if cl.fixed {
				fail("cell %q: mixes fixed-width and delimited layouts", sc.Name)
			} else if l.sep() != cl.delim.sep() || l.Quote != cl.delim.Quote {
				fail("cell %q: delimiter differs from the first cell", sc.Name)
			}
			cl.length++
		default:
			fail("cell %q: missing layout", sc.Name)
		}
		if sc.Name == "" {
			fail("cell %d: empty name", i)
		} else if _, dup := names[sc.Name]; dup {
			fail("cell %q: duplicate name", sc.Name)
		}
		names[sc.Name] = cc
		errs = append(errs, compileFormat(cc, sl.LineType, s.Locale)...)
		cl.cells = append(cl.cells, cc)
	}
	if sl.Header && cl.fixed {
		fail("header rows need a delimited layout")
	}
	if d := sl.Discriminator; d != nil {
		cl.disc = names[d.Cell]
		cl.cond = d.Condition
		if cl.disc == nil {
			fail("discriminator cell %q not found", d.Cell)
		}
		if d.Condition == nil {
			fail("discriminator without condition")
		}
	}
	return cl, errs
}

func compileFormat(cc *compiledCell, lineType string, schemaLoc language.Tag) []error {
	var errs []error
	loc := cc.Locale
	if loc == language.Und {
		loc = schemaLoc
	}
	f, err := format.New(cc.Type, cc.Pattern, loc)
	if err != nil {
		return []error{fmt.Errorf("line %q cell %q: %w", lineType, cc.Name, err)}
	}
	cc.format = f
	parse := func(what, text string) any {
		if text == "" {
			return nil
		}
		v, err := f.Parse(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %q cell %q: %s: %w", lineType, cc.Name, what, err))
		}
		return v
	}
	cc.def = parse("default", cc.Default)
	cc.min = parse("min", cc.Min)
	cc.max = parse("max", cc.Max)
	if cc.min != nil && cc.max != nil {
		if n, err := format.Compare(cc.min, cc.max); err != nil || n > 0 {
			errs = append(errs, fmt.Errorf("line %q cell %q: min %q above max %q", lineType, cc.Name, cc.Min, cc.Max))
		}
	}
	return errs
}

// Mode reports the selection mode.
func (c *Compiled) Mode() Mode { return c.mode }

// LineSeparator is the separator written between lines.
func (c *Compiled) LineSeparator() string { return c.sep }

// LineTypes lists the line types in declaration order.
func (c *Compiled) LineTypes() []string {
	out := make([]string, len(c.lines))
	for i, l := range c.lines {
		out[i] = l.lineType
	}
	return out
}

// Column describes where a cell sits in its line.
type Column struct {
	LineType string
	Cell     string
	Type     format.Type
	Pattern  string
	// Start and End are rune positions of fixed-width cells (End exclusive);
	// both are -1 for delimited cells.
	Start, End int
	// Field is the 0-based field index of delimited cells, -1 otherwise.
	Field     int
	Mandatory bool
	Ignored   bool
}

// Columns lists every cell of every line in order.
func (c *Compiled) Columns() []Column {
	var out []Column
	for _, l := range c.lines {
		for _, cc := range l.cells {
			col := Column{
				LineType:  l.lineType,
				Cell:      cc.Name,
				Type:      cc.Type,
				Pattern:   cc.Pattern,
				Start:     -1,
				End:       -1,
				Field:     -1,
				Mandatory: cc.Mandatory,
				Ignored:   cc.IgnoreRead,
			}
			if l.fixed {
				col.Start, col.End = cc.offset, cc.offset+cc.fixed.Length
			} else {
				col.Field = cc.index
			}
			out = append(out, col)
		}
	}
	return out
}

// width measures raw text the way the line's length is counted.
func (l *compiledLine) width(text string) int {
	if l.fixed {
		return utf8.RuneCountInString(text)
	}
	return len(splitFields(text, l.delim))
}
