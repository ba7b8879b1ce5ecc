package textrec

import (
	"context"
	"io"
)

// ConvertOpt bundles the options of both directions. Issues receives the
// issues of both; a nil Compose.Policy borrows Parse.Policy.
type ConvertOpt struct {
	Parse   ParseOpt
	Compose ComposeOpt
	Issues  IssueConsumer
}

// Convert parses r with in and composes every line into w with out, in one
// pass. Lines map across schemas by line type and cells by name. It returns
// the number of lines written.
func Convert(ctx context.Context, r io.Reader, in *Schema, w io.Writer, out *Schema, opts ...ConvertOpt) (int, error) {
	opt := lastOpt(opts)
	p, err := NewParser(in, opt.Parse)
	if err != nil {
		return 0, err
	}
	copt := opt.Compose
	if copt.Policy == nil {
		copt.Policy = p.opt.Policy
	}
	if copt.Issues == nil {
		copt.Issues = opt.Issues
	}
	wr, err := NewWriter(w, out, copt)
	if err != nil {
		return 0, err
	}
	if _, err := p.Parse(ctx, r, LineConsumerFunc(wr.Write), opt.Issues); err != nil {
		_ = wr.Flush()
		return wr.Count(), err
	}
	return wr.Count(), wr.Flush()
}
