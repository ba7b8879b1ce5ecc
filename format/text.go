package format

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ---- string ----

// stringFormat optionally requires the whole text to match a regular
// expression.
type stringFormat struct{ re *regexp.Regexp }

func newString(pattern string) (Format, error) {
	f := stringFormat{}
	if pattern != "" {
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil {
			return nil, err
		}
		f.re = re
	}
	return erase[string](String, f), nil
}

func (f stringFormat) parse(text string) (string, error) {
	if f.re != nil && !f.re.MatchString(text) {
		return "", fmt.Errorf("does not match %s", f.re)
	}
	return text, nil
}

func (f stringFormat) format(v string) (string, error) { return v, nil }

// ---- character ----

type characterFormat struct{}

func (characterFormat) parse(text string) (rune, error) {
	if utf8.RuneCountInString(text) != 1 {
		return 0, errors.New("expected exactly one character")
	}
	r, _ := utf8.DecodeRuneInString(text)
	return r, nil
}

func (characterFormat) format(v rune) (string, error) { return string(v), nil }

// ---- boolean ----

// booleanFormat pattern: "true|yes;false|no". Alternatives are matched
// ignoring case; the first alternative of each side is used when composing.
type booleanFormat struct {
	trues, falses []string
}

func newBoolean(pattern string) (Format, error) {
	if pattern == "" {
		return erase[bool](Boolean, booleanFormat{}), nil
	}
	t, f, ok := strings.Cut(pattern, ";")
	if !ok {
		return nil, errors.New(`boolean pattern must be "true-texts;false-texts"`)
	}
	bf := booleanFormat{trues: strings.Split(t, "|"), falses: strings.Split(f, "|")}
	if bf.trues[0] == "" && bf.falses[0] == "" {
		return nil, errors.New("boolean pattern needs at least one non-empty text")
	}
	return erase[bool](Boolean, bf), nil
}

func (f booleanFormat) parse(text string) (bool, error) {
	if f.trues == nil {
		return strconv.ParseBool(text)
	}
	for _, s := range f.trues {
		if strings.EqualFold(s, text) {
			return true, nil
		}
	}
	for _, s := range f.falses {
		if strings.EqualFold(s, text) {
			return false, nil
		}
	}
	return false, fmt.Errorf("expected one of %q or %q", f.trues, f.falses)
}

func (f booleanFormat) format(v bool) (string, error) {
	switch {
	case f.trues == nil:
		return strconv.FormatBool(v), nil
	case v:
		return f.trues[0], nil
	default:
		return f.falses[0], nil
	}
}

// ---- enum ----

// enumFormat pattern: "A|B|C" or "text=value|text=value". Several texts may
// map to the same value; the first one is used when composing.
type enumFormat struct {
	byText  map[string]string
	byValue map[string]string
	values  []string
}

func newEnum(pattern string) (Format, error) {
	if pattern == "" {
		return nil, errors.New("enum needs a pattern listing its values")
	}
	f := enumFormat{byText: map[string]string{}, byValue: map[string]string{}}
	for _, entry := range strings.Split(pattern, "|") {
		text, value, ok := strings.Cut(entry, "=")
		if !ok {
			value = text
		}
		if _, dup := f.byText[text]; dup {
			return nil, fmt.Errorf("duplicate enum text %q", text)
		}
		f.byText[text] = value
		if _, seen := f.byValue[value]; !seen {
			f.byValue[value] = text
			f.values = append(f.values, value)
		}
	}
	return erase[string](Enum, f), nil
}

func (f enumFormat) parse(text string) (string, error) {
	v, ok := f.byText[text]
	if !ok {
		return "", fmt.Errorf("not one of %q", f.values)
	}
	return v, nil
}

func (f enumFormat) format(v string) (string, error) {
	t, ok := f.byValue[v]
	if !ok {
		return "", fmt.Errorf("%w: %q is not one of %q", ErrValueType, v, f.values)
	}
	return t, nil
}

// ---- duration ----

type durationFormat struct{}

func (durationFormat) parse(text string) (time.Duration, error) { return time.ParseDuration(text) }

func (durationFormat) format(v time.Duration) (string, error) { return v.String(), nil }
