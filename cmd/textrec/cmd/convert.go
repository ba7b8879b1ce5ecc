package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reoring/textrec"
	"github.com/reoring/textrec/pipeline"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		output     string
		concurrent bool
		queue      int
	)
	c := &cobra.Command{
		Use:   "convert <from.yaml> <to.yaml> [input]",
		Short: "Rewrite a file from one schema into another",
		Long: `Parse the input with the first schema and compose every line with the
second. Lines map by line type and cells by name. The --on overrides and
the policy of the first schema apply to both directions.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := a.loadSchema(args[0])
			if err != nil {
				return err
			}
			to, err := a.loadSchema(args[1])
			if err != nil {
				return err
			}
			in, err := openInput(cmd, argOr(args, 2, ""))
			if err != nil {
				return err
			}
			defer in.Close()

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				fh, err := os.Create(output)
				if err != nil {
					return err
				}
				defer fh.Close()
				out = fh
			}

			popt := from.ParseOpt()
			popt.Logger = a.log
			copt := to.ComposeOpt()
			copt.Policy = popt.Policy
			copt.Logger = a.log
			opt := textrec.ConvertOpt{Parse: popt, Compose: copt, Issues: a.reportTo(cmd.ErrOrStderr())}

			var n int
			if concurrent {
				n, err = pipeline.Convert(cmd.Context(), in, from.Schema, out, to.Schema,
					pipeline.Options{ConvertOpt: opt, QueueSize: queue})
			} else {
				n, err = textrec.Convert(cmd.Context(), in, from.Schema, out, to.Schema, opt)
			}
			a.log.Info("converted", "lines", n)
			return err
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	c.Flags().BoolVar(&concurrent, "concurrent", false, "parse and compose on separate goroutines")
	c.Flags().IntVar(&queue, "queue", pipeline.DefaultQueueSize, "lines in flight with --concurrent")
	return c
}
