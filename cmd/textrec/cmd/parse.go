package cmd

import (
	"bufio"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/textrec"
)

func newParseCmd(a *app) *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "parse <schema.yaml> [input]",
		Short: "Print the lines of a file as JSON, one per line",
		Long: `Parse the input (stdin when omitted or "-") with the schema and write each
line as a JSON object to stdout. Issues are printed to stderr.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.loadSchema(args[0])
			if err != nil {
				return err
			}
			in, err := openInput(cmd, argOr(args, 1, ""))
			if err != nil {
				return err
			}
			defer in.Close()

			opt := f.ParseOpt()
			opt.Logger = a.log
			p, err := textrec.NewParser(f.Schema, opt)
			if err != nil {
				return err
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()
			enc := json.NewEncoder(out)
			n := 0
			_, err = p.Parse(cmd.Context(), in, textrec.LineConsumerFunc(func(l *textrec.Line) error {
				if err := enc.Encode(l); err != nil {
					return err
				}
				n++
				if limit > 0 && n >= limit {
					return textrec.ErrStop
				}
				return nil
			}), a.reportTo(cmd.ErrOrStderr()))
			return err
		},
	}
	c.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many lines (0 reads all)")
	return c
}
