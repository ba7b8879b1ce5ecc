package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/reoring/textrec"
	"github.com/reoring/textrec/i18n"
	"github.com/reoring/textrec/schemafile"
)

// app holds what the persistent flags configure.
type app struct {
	verbose bool
	lang    string
	on      map[string]string
	log     *slog.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "textrec",
		Short: "Read, write and convert fixed-width and delimited record files",
		Long: `textrec reads and writes line-oriented record files described by a YAML
schema: fixed-width layouts, CSV and mixes of line types.

Examples:
  textrec describe orders.yaml                   # Show the cell layout
  textrec parse orders.yaml orders.txt           # Print lines as JSON
  textrec convert orders.yaml orders-csv.yaml orders.txt -o orders.csv`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			i18n.SetLanguage(a.lang)
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().StringVar(&a.lang, "lang", "en", "language of issue messages (en, sv)")
	root.PersistentFlags().StringToStringVar(&a.on, "on", nil, "override the action for an issue code, e.g. --on line_overflow=report")

	root.AddCommand(newParseCmd(a), newConvertCmd(a), newDescribeCmd(a))
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSchema reads a schema document and applies the --on overrides.
func (a *app) loadSchema(path string) (*schemafile.File, error) {
	f, err := schemafile.LoadFile(path)
	if err != nil {
		return nil, err
	}
	for code, name := range a.on {
		if !slices.Contains(textrec.Codes, code) {
			return nil, fmt.Errorf("--on: unknown issue code %q", code)
		}
		act, err := textrec.ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("--on %s: %w", code, err)
		}
		f.Policy = f.Policy.With(code, act)
	}
	return f, nil
}

// reportTo prints every issue as a warning on w.
func (a *app) reportTo(w io.Writer) textrec.IssueConsumer {
	return textrec.IssueConsumerFunc(func(is textrec.Issue) {
		a.log.Debug("issue", "code", is.Code, "line", is.Line, "type", is.LineType, "cell", is.Cell)
		fmt.Fprintf(w, "warning: %s\n", is.Error())
	})
}

// openInput opens the named file, or returns stdin for "" and "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(name)
}

func argOr(args []string, i int, def string) string {
	if i < len(args) {
		return args[i]
	}
	return def
}
