package textrec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/textrec/i18n"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeIOFailure              = "io_failure"
	CodeUndefinedLineType      = "undefined_line_type"
	CodeInsufficientLineLength = "insufficient_line_length"
	CodeLineOverflow           = "line_overflow"
	CodeMandatoryMissing       = "mandatory_missing"
	CodeCellParseFailure       = "cell_parse_failure"
	CodeRangeViolation         = "range_violation"
	// Compose side
	CodeCellFormatFailure = "cell_format_failure"
)

// Codes lists the codes a Policy can map to an action.
var Codes = []string{
	CodeUndefinedLineType,
	CodeInsufficientLineLength,
	CodeLineOverflow,
	CodeMandatoryMissing,
	CodeCellParseFailure,
	CodeRangeViolation,
}

// Issue is a single problem found while parsing or composing.
type Issue struct {
	Code     string
	Line     int    // 1-based record number (0 when unknown).
	LineType string // Optional: the selected line type.
	Cell     string // Optional: the cell name.
	Raw      string // Optional: the offending input text.
	Message  string
	Cause    error // Optional: underlying error.
	// Params carries structured parameters (e.g., {"bound":"min", "limit":10})
	// for i18n and observability.
	Params map[string]any
}

func (is *Issue) Error() string {
	b := &strings.Builder{}
	if is.Line > 0 {
		fmt.Fprintf(b, "line %d: ", is.Line)
	}
	if is.Cell != "" {
		fmt.Fprintf(b, "cell %q: ", is.Cell)
	}
	b.WriteString(is.Code)
	if is.Message != "" {
		b.WriteString(": ")
		b.WriteString(is.Message)
	}
	if is.Cause != nil && is.Code == CodeIOFailure {
		b.WriteString(": ")
		b.WriteString(is.Cause.Error())
	}
	return b.String()
}

func (is *Issue) Unwrap() error { return is.Cause }

// Issues is a collection of issues that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		// e.g. range_violation at line 4 cell amount
		fmt.Fprintf(b, "%s at line %d", iss[i].Code, iss[i].Line)
		if iss[i].Cell != "" {
			fmt.Fprintf(b, " cell %s", iss[i].Cell)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// AsIssue extracts a single *Issue, as returned for Fail actions and I/O
// failures.
func AsIssue(err error) (*Issue, bool) {
	var is *Issue
	if errors.As(err, &is) {
		return is, true
	}
	return nil, false
}

// newIssue fills the localized message from the code and params.
func newIssue(code string, line int, params map[string]any) Issue {
	is := Issue{Code: code, Line: line, Params: params}
	is.Message = i18n.T(code, stringParams(params))
	return is
}

func stringParams(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprint(v)
	}
	return out
}

func ioFailure(line int, err error) error {
	is := newIssue(CodeIOFailure, line, nil)
	is.Cause = err
	return &is
}
