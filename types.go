package textrec

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Action is the response to a recoverable problem.
type Action int

const (
	ActionNone     Action = iota // Proceed silently.
	ActionReport                 // Hand the issue to the IssueConsumer and proceed.
	ActionFail                   // Abort the operation with the issue as error.
	ActionSkipLine               // Report the issue and drop the current line.
)

var actionNames = [...]string{"none", "report", "fail", "skip_line"}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

// ParseAction accepts the names printed by String; "skip" and "skipline" are
// accepted for skip_line.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "ignore":
		return ActionNone, nil
	case "report", "warn":
		return ActionReport, nil
	case "fail", "error":
		return ActionFail, nil
	case "skip_line", "skipline", "skip":
		return ActionSkipLine, nil
	}
	return 0, fmt.Errorf("textrec: unknown action %q", s)
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(b []byte) error {
	v, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Policy maps issue codes to actions. Codes missing from the map use the
// default action. I/O failures always fail.
type Policy map[string]Action

var defaultActions = Policy{
	CodeUndefinedLineType:      ActionFail,
	CodeInsufficientLineLength: ActionNone,
	CodeLineOverflow:           ActionNone,
	CodeMandatoryMissing:       ActionReport,
	CodeCellParseFailure:       ActionReport,
	CodeRangeViolation:         ActionReport,
}

// DefaultPolicy returns a fresh copy of the default actions.
func DefaultPolicy() Policy {
	p := make(Policy, len(defaultActions))
	for k, v := range defaultActions {
		p[k] = v
	}
	return p
}

// Action resolves the action for code.
func (p Policy) Action(code string) Action {
	if code == CodeIOFailure {
		return ActionFail
	}
	if a, ok := p[code]; ok {
		return a
	}
	return defaultActions[code]
}

// With returns a copy of p with code mapped to a.
func (p Policy) With(code string, a Action) Policy {
	out := make(Policy, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	out[code] = a
	return out
}

// ParseOpt bundles parsing options.
type ParseOpt struct {
	Policy     Policy       // nil means DefaultPolicy.
	BufferSize int          // Initial read buffer in runes; 0 uses the default.
	Logger     *slog.Logger // Debug traces; nil discards.
}

// ComposeOpt bundles composing options. Policy only governs lines whose
// type the schema lacks.
type ComposeOpt struct {
	Policy Policy
	Issues IssueConsumer
	Logger *slog.Logger
}

func lastOpt[T any](opts []T) T {
	var opt T
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return discard
	}
	return l
}
