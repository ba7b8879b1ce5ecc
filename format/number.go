package format

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// numberPattern is the supported subset of DecimalFormat syntax:
// '#' optional digit, '0' required digit, ',' grouping, '.' fraction and
// 'E0' exponent, e.g. "#,##0.00", "0000" or "0.###E0".
type numberPattern struct {
	set       bool
	grouping  bool
	groupSize int
	minInt    int
	minFrac   int
	maxFrac   int
	exponent  bool
	minExp    int
}

func parseNumberPattern(p string) (numberPattern, error) {
	np := numberPattern{set: p != "", groupSize: 3, maxFrac: -1}
	if p == "" {
		return np, nil
	}
	mantissa := p
	if i := strings.IndexByte(p, 'E'); i >= 0 {
		mantissa = p[:i]
		exp := p[i+1:]
		if exp == "" || strings.Trim(exp, "0") != "" {
			return np, fmt.Errorf("invalid exponent %q", exp)
		}
		np.exponent = true
		np.minExp = len(exp)
	}
	intPart, fracPart, hasFrac := strings.Cut(mantissa, ".")
	lastComma := -1
	for i, r := range intPart {
		switch r {
		case '0':
			np.minInt++
		case '#':
			if np.minInt > 0 {
				return np, errors.New("'#' after '0' in integer part")
			}
		case ',':
			np.grouping = true
			lastComma = i
		default:
			return np, fmt.Errorf("unexpected %q in number pattern", r)
		}
	}
	if np.grouping {
		np.groupSize = len(intPart) - lastComma - 1
		if np.groupSize <= 0 {
			return np, errors.New("grouping separator at end of integer part")
		}
	}
	np.maxFrac = 0
	if hasFrac {
		for _, r := range fracPart {
			switch r {
			case '0':
				if np.maxFrac > np.minFrac {
					return np, errors.New("'0' after '#' in fraction part")
				}
				np.minFrac++
				np.maxFrac++
			case '#':
				np.maxFrac++
			default:
				return np, fmt.Errorf("unexpected %q in number pattern", r)
			}
		}
	}
	return np, nil
}

// render lays out canonical digits ("-1234.5600") according to the pattern.
// The fraction is trimmed of trailing zeros down to minFrac, the integer is
// zero padded to minInt and grouped, and the result is localized.
func (np numberPattern) render(canonical string, sym Symbols) string {
	neg := strings.HasPrefix(canonical, "-")
	canonical = strings.TrimPrefix(canonical, "-")
	mant, exp, hasExp := strings.Cut(canonical, "E")
	intPart, frac, _ := strings.Cut(mant, ".")

	for len(frac) > np.minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}
	if np.minInt == 0 && intPart == "0" && frac != "" {
		intPart = ""
	}
	for len(intPart) < np.minInt {
		intPart = "0" + intPart
	}
	if np.grouping {
		intPart = group(intPart, np.groupSize, sym.Group)
	}

	var b strings.Builder
	if neg {
		b.WriteRune(sym.Minus)
	}
	b.WriteString(intPart)
	if frac != "" {
		b.WriteRune(sym.Decimal)
		b.WriteString(frac)
	}
	if hasExp {
		b.WriteString(sym.Exponent)
		if strings.HasPrefix(exp, "-") {
			b.WriteRune(sym.Minus)
			exp = exp[1:]
		}
		exp = strings.TrimPrefix(exp, "+")
		exp = strings.TrimLeft(exp, "0")
		for len(exp) < max(np.minExp, 1) {
			exp = "0" + exp
		}
		b.WriteString(exp)
	}
	return b.String()
}

func group(digits string, size int, sep rune) string {
	if len(digits) <= size {
		return digits
	}
	var b strings.Builder
	head := len(digits) % size
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += size {
		if b.Len() > 0 {
			b.WriteRune(sep)
		}
		b.WriteString(digits[i : i+size])
	}
	return b.String()
}

// numberBase carries what all numeric formats share.
type numberBase struct {
	pattern numberPattern
	sym     Symbols
}

func newNumberBase(pattern string, loc language.Tag) (numberBase, error) {
	np, err := parseNumberPattern(pattern)
	if err != nil {
		return numberBase{}, err
	}
	sym := Canonical
	if np.set {
		sym = SymbolsFor(loc)
	}
	return numberBase{pattern: np, sym: sym}, nil
}

func (nb numberBase) normalize(text string) string {
	return normalizeNumber(text, nb.sym, nb.pattern.grouping)
}

// ---- integer ----

type integerFormat struct{ numberBase }

func newInteger(pattern string, loc language.Tag) (Format, error) {
	nb, err := newNumberBase(pattern, loc)
	if err != nil {
		return nil, err
	}
	if nb.pattern.maxFrac > 0 || nb.pattern.exponent {
		return nil, errors.New("integer pattern cannot have fraction or exponent")
	}
	return erase[int64](Integer, integerFormat{nb}), nil
}

func (f integerFormat) parse(text string) (int64, error) {
	return strconv.ParseInt(f.normalize(text), 10, 64)
}

func (f integerFormat) format(v int64) (string, error) {
	s := strconv.FormatInt(v, 10)
	if !f.pattern.set {
		return s, nil
	}
	return f.pattern.render(s, f.sym), nil
}

// ---- float ----

type floatFormat struct{ numberBase }

func newFloat(pattern string, loc language.Tag) (Format, error) {
	nb, err := newNumberBase(pattern, loc)
	if err != nil {
		return nil, err
	}
	return erase[float64](Float, floatFormat{nb}), nil
}

func (f floatFormat) parse(text string) (float64, error) {
	v, err := strconv.ParseFloat(f.normalize(text), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("value %q out of range", text)
	}
	return v, nil
}

func (f floatFormat) format(v float64) (string, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "", fmt.Errorf("%w: cannot format %v", ErrValueType, v)
	}
	if !f.pattern.set {
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	verb := byte('f')
	if f.pattern.exponent {
		verb = 'E'
	}
	return f.pattern.render(strconv.FormatFloat(v, verb, f.pattern.maxFrac, 64), f.sym), nil
}

// ---- decimal ----

type decimalFormat struct{ numberBase }

func newDecimal(pattern string, loc language.Tag) (Format, error) {
	nb, err := newNumberBase(pattern, loc)
	if err != nil {
		return nil, err
	}
	if nb.pattern.exponent {
		return nil, errors.New("decimal pattern cannot have an exponent")
	}
	return erase[decimal.Decimal](Decimal, decimalFormat{nb}), nil
}

func (f decimalFormat) parse(text string) (decimal.Decimal, error) {
	return decimal.NewFromString(f.normalize(text))
}

func (f decimalFormat) format(v decimal.Decimal) (string, error) {
	if !f.pattern.set {
		return v.String(), nil
	}
	return f.pattern.render(v.StringFixed(int32(f.pattern.maxFrac)), f.sym), nil
}

// ---- implied decimal ----

// impliedDecimalFormat stores decimals as plain digits with a fixed number of
// implied fraction digits: with pattern "2", text "12345" is 123.45.
type impliedDecimalFormat struct{ scale int32 }

func newImpliedDecimal(pattern string) (Format, error) {
	scale := 0
	if pattern != "" {
		n, err := strconv.Atoi(pattern)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("implied decimal pattern must be a digit count, got %q", pattern)
		}
		scale = n
	}
	return erase[decimal.Decimal](ImpliedDecimal, impliedDecimalFormat{scale: int32(scale)}), nil
}

func (f impliedDecimalFormat) parse(text string) (decimal.Decimal, error) {
	n := normalizeNumber(text, Canonical, false)
	if strings.ContainsAny(n, ".E") {
		return decimal.Decimal{}, errors.New("implied decimal text must be an integer")
	}
	d, err := decimal.NewFromString(n)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Shift(-f.scale), nil
}

func (f impliedDecimalFormat) format(v decimal.Decimal) (string, error) {
	return v.Shift(f.scale).StringFixed(0), nil
}
