package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/reoring/textrec"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <schema.yaml>",
		Short: "Show the lines and cells of a schema",
		Long: `Print one row per cell: its line type, name, value type, pattern, position
(1-based columns for fixed width, field number for delimited) and flags.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.loadSchema(args[0])
			if err != nil {
				return err
			}
			c, err := f.Schema.Compile()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			sep := strconv.Quote(c.LineSeparator())
			fmt.Fprintf(out, "mode: %s, line separator: %s\n\n", c.Mode(), sep)
			writeTable(out, []string{"LINE", "CELL", "TYPE", "PATTERN", "POSITION", "FLAGS"}, columnRows(c.Columns()))
			return nil
		},
	}
}

func columnRows(cols []textrec.Column) [][]string {
	rows := make([][]string, 0, len(cols))
	for _, col := range cols {
		pos := fmt.Sprintf("field %d", col.Field+1)
		if col.Start >= 0 {
			pos = fmt.Sprintf("%d-%d", col.Start+1, col.End)
		}
		var flags []string
		if col.Mandatory {
			flags = append(flags, "mandatory")
		}
		if col.Ignored {
			flags = append(flags, "ignored")
		}
		rows = append(rows, []string{col.LineType, col.Cell, col.Type.String(), col.Pattern, pos, strings.Join(flags, ",")})
	}
	return rows
}

// writeTable aligns columns by display width so wide characters in cell
// names keep the table straight.
func writeTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	line := func(cells []string) {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}
	line(header)
	for _, row := range rows {
		line(row)
	}
}
