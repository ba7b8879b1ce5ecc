package textrec

import (
	"github.com/reoring/textrec/format"
)

// parseLine converts a selected record into a Line. A true skip means the
// policy dropped the line.
func (r *run) parseLine(cl *compiledLine, text string) (line *Line, skip bool, err error) {
	line = &Line{lineType: cl.lineType, number: r.record, index: make(map[string]int, len(cl.cells))}
	var fields []string
	var have int
	if cl.fixed {
		have = cl.width(text)
	} else {
		fields = splitFields(text, cl.delim)
		have = len(fields)
	}
	switch {
	case have < cl.length:
		is := r.lineIssue(CodeInsufficientLineLength, cl, text, map[string]any{"want": cl.length, "got": have})
		if skip, err := r.raise(is); skip || err != nil {
			return nil, true, err
		}
	case have > cl.length:
		is := r.lineIssue(CodeLineOverflow, cl, text, map[string]any{"extra": have - cl.length})
		if skip, err := r.raise(is); skip || err != nil {
			return nil, true, err
		}
	}
	for _, cc := range cl.cells {
		if cc.IgnoreRead {
			continue
		}
		if cl.fixed && cc.fixed.Length == 0 {
			line.index[cc.Name] = len(line.cells)
			line.cells = append(line.cells, parsedCell(cc.Name, cc.Type, nil, 0))
			continue
		}
		var raw string
		if cl.fixed {
			raw = cc.fixed.trim().Apply(substr(text, cc.offset, cc.fixed.Length))
		} else if cc.index < len(fields) {
			raw = fields[cc.index]
		}
		c, skip, err := r.parseCell(cl, cc, raw)
		if skip || err != nil {
			return nil, true, err
		}
		line.index[c.name] = len(line.cells)
		line.cells = append(line.cells, c)
	}
	return line, false, nil
}

// parseCell converts raw text into a cell, applying the empty, default,
// mandatory and range rules. A cell that fails validation is left empty.
func (r *run) parseCell(cl *compiledLine, cc *compiledCell, raw string) (Cell, bool, error) {
	var p Presence
	if raw != "" {
		p = PresenceSeen
	}
	if raw == "" || (cc.EmptyWhen != nil && cc.EmptyWhen.Match(raw)) {
		if cc.hasDefault() {
			return parsedCell(cc.Name, cc.Type, cc.def, p|PresenceDefaultApplied), false, nil
		}
		if cc.Mandatory {
			is := r.cellIssue(CodeMandatoryMissing, cl, cc, raw, map[string]any{"cell": cc.Name})
			if skip, err := r.raise(is); skip || err != nil {
				return Cell{}, true, err
			}
		}
		return parsedCell(cc.Name, cc.Type, nil, p), false, nil
	}

	cache := r.cache(cc)
	if v, ok := cache.Get(raw); ok {
		return parsedCell(cc.Name, cc.Type, v, p), false, nil
	}
	v, err := cc.format.Parse(raw)
	if err != nil {
		is := r.cellIssue(CodeCellParseFailure, cl, cc, raw, map[string]any{"raw": raw, "type": cc.Type})
		is.Cause = err
		skip, ferr := r.raise(is)
		return parsedCell(cc.Name, cc.Type, nil, p), skip, ferr
	}
	if bound, limit, out := cc.outOfRange(v); out {
		is := r.cellIssue(CodeRangeViolation, cl, cc, raw, map[string]any{"value": raw, "bound": bound, "limit": limit})
		skip, ferr := r.raise(is)
		return parsedCell(cc.Name, cc.Type, nil, p), skip, ferr
	}
	cache.Add(raw, v)
	return parsedCell(cc.Name, cc.Type, v, p), false, nil
}

// outOfRange compares v with the bounds using the ordering of its type.
func (cc *compiledCell) outOfRange(v any) (bound, limit string, out bool) {
	if cc.min != nil {
		if n, err := format.Compare(v, cc.min); err == nil && n < 0 {
			return "min", cc.Min, true
		}
	}
	if cc.max != nil {
		if n, err := format.Compare(v, cc.max); err == nil && n > 0 {
			return "max", cc.Max, true
		}
	}
	return "", "", false
}

func (r *run) cache(cc *compiledCell) format.Cache {
	c, ok := r.caches[cc]
	if !ok {
		c = format.NewCache(cc.CacheSize)
		r.caches[cc] = c
	}
	return c
}

func (r *run) lineIssue(code string, cl *compiledLine, text string, params map[string]any) Issue {
	is := newIssue(code, r.record, params)
	is.LineType = cl.lineType
	is.Raw = text
	return is
}

func (r *run) cellIssue(code string, cl *compiledLine, cc *compiledCell, raw string, params map[string]any) Issue {
	is := newIssue(code, r.record, params)
	is.LineType = cl.lineType
	is.Cell = cc.Name
	is.Raw = raw
	return is
}

// raise applies the policy. Fail returns the issue as error; SkipLine reports
// it and asks the caller to drop the line. A missing mandatory cell is
// reported even when the policy says none.
func (r *run) raise(is Issue) (skip bool, err error) {
	action := r.policy.Action(is.Code)
	if action == ActionNone && is.Code == CodeMandatoryMissing {
		action = ActionReport
	}
	switch action {
	case ActionNone:
		r.log.Debug("issue ignored", "code", is.Code, "line", is.Line, "cell", is.Cell)
		return false, nil
	case ActionReport:
		r.issues.ConsumeIssue(is)
		return false, nil
	case ActionSkipLine:
		r.issues.ConsumeIssue(is)
		r.log.Debug("line skipped", "code", is.Code, "line", is.Line)
		return true, nil
	default:
		return true, &is
	}
}
