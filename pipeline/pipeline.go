// Package pipeline runs the two halves of a conversion concurrently: the
// parser produces lines on the calling goroutine while a consumer goroutine
// composes them. The halves are joined by a bounded queue, so a slow
// consumer holds the parser back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/reoring/textrec"
)

// DefaultQueueSize is the queue capacity used when none is given.
const DefaultQueueSize = 64

// Queue is a textrec.LineConsumer that hands lines to another consumer
// running on its own goroutine. An error of that consumer is returned by the
// next ConsumeLine or by Close.
type Queue struct {
	ctx   context.Context
	next  textrec.LineConsumer
	ch    chan *textrec.Line
	done  chan struct{}
	err   error // written by the consumer goroutine before done closes
	close sync.Once
}

// NewQueue starts a consumer goroutine feeding next. Call Close once the
// producer is finished.
func NewQueue(ctx context.Context, next textrec.LineConsumer, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	q := &Queue{
		ctx:  ctx,
		next: next,
		ch:   make(chan *textrec.Line, size),
		done: make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	defer close(q.done)
	defer func() {
		if p := recover(); p != nil {
			q.err = fmt.Errorf("pipeline: consumer panic: %v", p)
		}
	}()
	for l := range q.ch {
		if err := q.ctx.Err(); err != nil {
			q.err = err
			return
		}
		if err := q.next.ConsumeLine(l); err != nil {
			q.err = err
			return
		}
	}
}

// ConsumeLine enqueues l, blocking while the queue is full.
func (q *Queue) ConsumeLine(l *textrec.Line) error {
	select {
	case <-q.done:
		return q.failure()
	default:
	}
	select {
	case q.ch <- l:
		return nil
	case <-q.done:
		return q.failure()
	case <-q.ctx.Done():
		return q.ctx.Err()
	}
}

// failure is the consumer's error once done is closed. A consumer that
// stopped without error before Close still refuses further lines.
func (q *Queue) failure() error {
	if q.err != nil {
		return q.err
	}
	return textrec.ErrStop
}

// Close signals the end of input, waits for the consumer to drain the queue
// and returns its error. ErrStop from the consumer is not an error.
func (q *Queue) Close() error {
	q.close.Do(func() { close(q.ch) })
	<-q.done
	if errors.Is(q.err, textrec.ErrStop) {
		return nil
	}
	return q.err
}

// Issues makes ic safe to call from both halves of a pipeline.
func Issues(ic textrec.IssueConsumer) textrec.IssueConsumer {
	if ic == nil {
		return nil
	}
	return &lockedIssues{ic: ic}
}

type lockedIssues struct {
	mu sync.Mutex
	ic textrec.IssueConsumer
}

func (l *lockedIssues) ConsumeIssue(is textrec.Issue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ic.ConsumeIssue(is)
}

// Options configures Convert.
type Options struct {
	textrec.ConvertOpt
	// QueueSize bounds the lines in flight; DefaultQueueSize when zero.
	QueueSize int
}

// Convert is textrec.Convert with parsing and composing on separate
// goroutines. It returns the number of lines written.
func Convert(ctx context.Context, r io.Reader, in *textrec.Schema, w io.Writer, out *textrec.Schema, opts ...Options) (int, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	issues := Issues(opt.Issues)
	p, err := textrec.NewParser(in, opt.Parse)
	if err != nil {
		return 0, err
	}
	copt := opt.Compose
	if copt.Policy == nil {
		copt.Policy = opt.Parse.Policy
	}
	if copt.Issues == nil {
		copt.Issues = issues
	}
	wr, err := textrec.NewWriter(w, out, copt)
	if err != nil {
		return 0, err
	}

	q := NewQueue(ctx, textrec.LineConsumerFunc(wr.Write), opt.QueueSize)
	_, perr := p.Parse(ctx, r, q, issues)
	cerr := q.Close()
	ferr := wr.Flush()
	// The consumer's error is the cause when the parser only saw it re-raised.
	if cerr != nil {
		return wr.Count(), cerr
	}
	if perr != nil {
		return wr.Count(), perr
	}
	return wr.Count(), ferr
}
