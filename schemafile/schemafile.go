// Package schemafile reads textrec schemas from YAML documents.
//
// A document lists the line shapes of a file together with the validation
// policy to parse it with:
//
//	separator: crlf
//	locale: sv-SE
//	policy:
//	  cell_parse_failure: fail
//	lines:
//	  - type: head
//	    occurs: 1
//	    when: {cell: kind, match: 'eq "H"'}
//	    cells:
//	      - {name: kind, length: 1}
//	      - {name: date, type: local_date, pattern: "20060102", length: 8}
//	  - type: detail
//	    when: {cell: kind, match: 'eq "D"'}
//	    cells:
//	      - {name: kind, length: 1}
//	      - {name: qty, type: integer, length: 5, align: right, fill: "0"}
//
// Cells with a length are fixed width; cells with a delimiter (set on the
// cell or inherited from the line) are delimited. Conditions use the cond
// expression language.
package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/reoring/textrec"
	"github.com/reoring/textrec/cond"
	"github.com/reoring/textrec/format"
)

// File is a decoded schema document.
type File struct {
	Schema *textrec.Schema
	// Policy is the default policy with the document's overrides applied.
	Policy textrec.Policy
}

// ParseOpt returns parse options carrying the document's policy.
func (f *File) ParseOpt() textrec.ParseOpt { return textrec.ParseOpt{Policy: f.Policy} }

// ComposeOpt returns compose options carrying the document's policy.
func (f *File) ComposeOpt() textrec.ComposeOpt { return textrec.ComposeOpt{Policy: f.Policy} }

// DuplicateKeyError reports a mapping key given twice.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	Line      int
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("schemafile: duplicate key %q at line %d (first at line %d)", e.Key, e.Line, e.FirstLine)
}

var separators = map[string]string{
	"lf":   "\n",
	"crlf": "\r\n",
	"cr":   "\r",
	"none": "",
}

type document struct {
	Separator *string           `yaml:"separator"`
	Locale    string            `yaml:"locale"`
	Policy    map[string]string `yaml:"policy"`
	Lines     []lineDoc         `yaml:"lines"`
}

type lineDoc struct {
	Type      string    `yaml:"type"`
	Occurs    int       `yaml:"occurs"`
	Header    bool      `yaml:"header"`
	When      *whenDoc  `yaml:"when"`
	Delimiter *string   `yaml:"delimiter"`
	Quote     *string   `yaml:"quote"`
	Cells     []cellDoc `yaml:"cells"`
}

type whenDoc struct {
	Cell  string `yaml:"cell"`
	Match string `yaml:"match"`
}

type cellDoc struct {
	Name      string  `yaml:"name"`
	Type      string  `yaml:"type"`
	Pattern   string  `yaml:"pattern"`
	Locale    string  `yaml:"locale"`
	Mandatory bool    `yaml:"mandatory"`
	Default   string  `yaml:"default"`
	EmptyWhen string  `yaml:"empty_when"`
	Min       string  `yaml:"min"`
	Max       string  `yaml:"max"`
	Ignore    string  `yaml:"ignore"`
	Cache     int     `yaml:"cache"`
	Length    *int    `yaml:"length"`
	Align     string  `yaml:"align"`
	Fill      string  `yaml:"fill"`
	Delimiter *string `yaml:"delimiter"`
	Quote     *string `yaml:"quote"`
}

// LoadFile reads the schema document at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Load reads a schema document from r.
func Load(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a schema document and validates the resulting schema.
// Unknown keys and duplicate keys are errors.
func Parse(data []byte) (*File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	if err := checkDuplicates(&root); err != nil {
		return nil, err
	}
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schemafile: empty document")
		}
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	f, err := doc.build()
	if err != nil {
		return nil, err
	}
	if err := f.Schema.Validate(); err != nil {
		return nil, fmt.Errorf("schemafile: %w", err)
	}
	return f, nil
}

func checkDuplicates(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		first := make(map[string]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if line, dup := first[k.Value]; dup {
				return &DuplicateKeyError{Key: k.Value, FirstLine: line, Line: k.Line}
			}
			first[k.Value] = k.Line
		}
	}
	for _, c := range n.Content {
		if err := checkDuplicates(c); err != nil {
			return err
		}
	}
	return nil
}

// ---- building ----

func (d *document) build() (*File, error) {
	s := &textrec.Schema{LineSeparator: "\n"}
	if d.Separator != nil {
		s.LineSeparator = *d.Separator
		if alias, ok := separators[*d.Separator]; ok {
			s.LineSeparator = alias
		}
	}
	var err error
	if s.Locale, err = parseLocale(d.Locale); err != nil {
		return nil, err
	}
	policy := textrec.DefaultPolicy()
	for code, name := range d.Policy {
		if !slices.Contains(textrec.Codes, code) {
			return nil, fmt.Errorf("schemafile: policy: unknown issue code %q", code)
		}
		a, err := textrec.ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("schemafile: policy %s: %w", code, err)
		}
		policy[code] = a
	}
	for i := range d.Lines {
		sl, err := d.Lines[i].build()
		if err != nil {
			return nil, fmt.Errorf("schemafile: line %d (%s): %w", i, d.Lines[i].Type, err)
		}
		s.Lines = append(s.Lines, sl)
	}
	return &File{Schema: s, Policy: policy}, nil
}

func (l *lineDoc) build() (*textrec.SchemaLine, error) {
	sl := &textrec.SchemaLine{LineType: l.Type, Occurs: l.Occurs, Header: l.Header}
	if l.When != nil {
		c, err := cond.Parse(l.When.Match)
		if err != nil {
			return nil, fmt.Errorf("when: %w", err)
		}
		sl.Discriminator = &textrec.Discriminator{Cell: l.When.Cell, Condition: c}
	}
	for _, cd := range l.Cells {
		sc, err := cd.build(l)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", cd.Name, err)
		}
		sl.Cells = append(sl.Cells, sc)
	}
	return sl, nil
}

func (c *cellDoc) build(l *lineDoc) (*textrec.SchemaCell, error) {
	sc := &textrec.SchemaCell{
		Name:      c.Name,
		Pattern:   c.Pattern,
		Mandatory: c.Mandatory,
		Default:   c.Default,
		Min:       c.Min,
		Max:       c.Max,
		CacheSize: c.Cache,
	}
	var err error
	if c.Type != "" {
		if sc.Type, err = format.ParseType(c.Type); err != nil {
			return nil, err
		}
	}
	if sc.Locale, err = parseLocale(c.Locale); err != nil {
		return nil, err
	}
	if c.EmptyWhen != "" {
		if sc.EmptyWhen, err = cond.Parse(c.EmptyWhen); err != nil {
			return nil, fmt.Errorf("empty_when: %w", err)
		}
	}
	switch c.Ignore {
	case "":
	case "read":
		sc.IgnoreRead = true
	case "write":
		sc.IgnoreWrite = true
	case "both":
		sc.IgnoreRead, sc.IgnoreWrite = true, true
	default:
		return nil, fmt.Errorf("ignore: want read, write or both, got %q", c.Ignore)
	}
	sc.Layout, err = c.layout(l)
	return sc, err
}

func (c *cellDoc) layout(l *lineDoc) (textrec.Layout, error) {
	if c.Length != nil {
		if c.Delimiter != nil {
			return nil, errors.New("length and delimiter are exclusive")
		}
		align, err := textrec.ParseAlignment(c.Align)
		if err != nil {
			return nil, err
		}
		fill, err := oneRune("fill", c.Fill)
		if err != nil {
			return nil, err
		}
		return textrec.FixedWidth{Length: *c.Length, Align: align, Fill: fill}, nil
	}
	sep, quote := c.Delimiter, c.Quote
	if sep == nil {
		sep = l.Delimiter
	}
	if quote == nil {
		quote = l.Quote
	}
	if sep == nil {
		return nil, errors.New("needs a length or a delimiter")
	}
	d := textrec.Delimited{Separator: *sep, Quote: '"'}
	if quote != nil {
		q, err := oneRune("quote", *quote)
		if err != nil {
			return nil, err
		}
		d.Quote = q
	}
	return d, nil
}

func oneRune(what, s string) (rune, error) {
	switch utf8.RuneCountInString(s) {
	case 0:
		return 0, nil
	case 1:
		r, _ := utf8.DecodeRuneInString(s)
		return r, nil
	}
	return 0, fmt.Errorf("%s: want a single character, got %q", what, s)
}

func parseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, nil
	}
	t, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("locale %q: %w", s, err)
	}
	return t, nil
}
