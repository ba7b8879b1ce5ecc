package textrec

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/reoring/textrec/format"
	"github.com/reoring/textrec/internal/buffer"
)

// Parser reads records described by a schema. A Parser holds no per-input
// state and may run several parses concurrently.
type Parser struct {
	c   *Compiled
	opt ParseOpt
	log *slog.Logger
}

// NewParser compiles s. When several options are given the last one wins.
func NewParser(s *Schema, opts ...ParseOpt) (*Parser, error) {
	c, err := s.Compile()
	if err != nil {
		return nil, err
	}
	return c.NewParser(opts...), nil
}

// NewParser returns a parser over an already compiled schema.
func (c *Compiled) NewParser(opts ...ParseOpt) *Parser {
	opt := lastOpt(opts)
	if opt.Policy == nil {
		opt.Policy = DefaultPolicy()
	}
	return &Parser{c: c, opt: opt, log: loggerOr(opt.Logger)}
}

// Schema returns the compiled schema.
func (p *Parser) Schema() *Compiled { return p.c }

// run is the state of one parse.
type run struct {
	c      *Compiled
	buf    *buffer.Reader
	policy Policy
	log    *slog.Logger
	issues IssueConsumer
	caches map[*compiledCell]format.Cache

	record    int
	remaining []int // per line; -1 is unbounded

	// structural
	shape      int
	headerDone []bool
	// control cell: candidate line indexes in trial order
	order []int
}

func (p *Parser) newRun(r io.Reader, issues IssueConsumer) *run {
	if issues == nil {
		issues = noIssues{}
	}
	n := len(p.c.lines)
	rn := &run{
		c:          p.c,
		buf:        buffer.New(r, p.c.sep, p.opt.BufferSize),
		policy:     p.opt.Policy,
		log:        p.log,
		issues:     issues,
		caches:     make(map[*compiledCell]format.Cache),
		remaining:  make([]int, n),
		headerDone: make([]bool, n),
		order:      make([]int, 0, n),
	}
	for i, l := range p.c.lines {
		rn.remaining[i] = -1
		if l.occurs > 0 {
			rn.remaining[i] = l.occurs
		}
		rn.order = append(rn.order, i)
	}
	return rn
}

// next returns the next parsed line, nil for a dropped one, or io.EOF.
func (r *run) next() (*Line, error) {
	cl, text, err := r.selectLine()
	if err != nil || cl == nil {
		return nil, err
	}
	line, skip, err := r.parseLine(cl, text)
	if err != nil || skip {
		return nil, err
	}
	return line, nil
}

// Parse reads r to the end, handing each line to lines and each reported
// issue to issues (which may be nil). It returns the number of lines handed
// over. A LineConsumer returning ErrStop ends the parse without error;
// cancelling ctx ends it with an io_failure issue wrapping ctx.Err().
func (p *Parser) Parse(ctx context.Context, r io.Reader, lines LineConsumer, issues IssueConsumer) (int, error) {
	rn := p.newRun(r, issues)
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, ioFailure(rn.record, err)
		}
		line, err := rn.next()
		if errors.Is(err, io.EOF) {
			p.log.Debug("parse done", "lines", n, "records", rn.record)
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if line == nil {
			continue
		}
		n++
		if err := lines.ConsumeLine(line); err != nil {
			if errors.Is(err, ErrStop) {
				p.log.Debug("parse stopped by consumer", "lines", n)
				return n, nil
			}
			return n, err
		}
	}
}

// All iterates over the lines of r. Reported issues are yielded as a nil
// line with an *Issue error, and iteration continues after them; any other
// error is the last value yielded.
func (p *Parser) All(ctx context.Context, r io.Reader) iter.Seq2[*Line, error] {
	return func(yield func(*Line, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stopped := false
		issues := IssueConsumerFunc(func(is Issue) {
			if !stopped && !yield(nil, &is) {
				stopped = true
				cancel()
			}
		})
		lines := LineConsumerFunc(func(l *Line) error {
			if stopped || !yield(l, nil) {
				stopped = true
				return ErrStop
			}
			return nil
		})
		_, err := p.Parse(ctx, r, lines, issues)
		if err != nil && !stopped {
			yield(nil, err)
		}
	}
}

// ReadDocument parses r into a Document.
func ReadDocument(ctx context.Context, s *Schema, r io.Reader, opts ...ParseOpt) (*Document, error) {
	p, err := NewParser(s, opts...)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if _, err := p.Parse(ctx, r, doc, doc); err != nil {
		return doc, err
	}
	return doc, nil
}
