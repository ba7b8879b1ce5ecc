// Package textrec provides:
//
// - A schema model for fixed-width and delimited record text, including files that mix several line types
// - A streaming Parser that selects the line type of each record and converts cells to typed values
// - A Writer that composes lines back into the same text, padding and quoting as declared
// - A stable error model via Issue (code, line, cell, raw text) and per-code validation actions
//
// Design policy:
// - Keep only public APIs in the root package; put the buffered reader under internal/.
// - Place value formats under format/, cell conditions under cond/, schema files under schemafile/,
//   struct binding under bind/, the concurrent converter under pipeline/ and the CLI under cmd/textrec.
// - A Schema is compiled once per operation; the compiled form is immutable and shareable.
//
// Typical usage:
//
//	p, err := textrec.NewParser(schema)
//	n, err := p.Parse(ctx, r, textrec.LineConsumerFunc(handle), nil)
//
//	for line, err := range p.All(ctx, r) { ... }
//
//	n, err := textrec.Convert(ctx, r, fixedSchema, w, csvSchema)
package textrec
