package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fernwell/bandcut/internal/stats"
	"github.com/fernwell/bandcut/internal/table"
	"github.com/spf13/cobra"
)

var stDelimiter string

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Summarize the columns of a CSV before discretizing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		conf := activeConfig()
		delimFlag := stDelimiter
		if delimFlag == "" {
			delimFlag = conf.Delimiter
		}
		delim, err := parseDelimiter(delimFlag)
		if err != nil {
			return err
		}
		if delim == 0 {
			delim = table.SniffDelimiter(path)
		}
		tbl, err := table.ReadFile(path, delim)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "[COLUMN SUMMARY]\n")
		fmt.Fprintf(out, "Rows: %d\nColumns: %d\n\n", len(tbl.Rows), len(tbl.Header))
		for j, name := range tbl.Header {
			acc := stats.NewAccumulator()
			nonNumeric := 0
			missing := 0
			for _, row := range tbl.Rows {
				v := strings.TrimSpace(row[j])
				if v == "" {
					missing++
					continue
				}
				x, err := strconv.ParseFloat(v, 64)
				if err != nil {
					nonNumeric++
					continue
				}
				acc.Add(x)
			}
			if acc.Count() > 0 && nonNumeric == 0 {
				fmt.Fprintf(out, "- %s: numeric (n=%d, missing %d), min %.4g, max %.4g, mean %.4g, std %.4g\n",
					name, acc.Count(), missing, acc.Min(), acc.Max(), acc.Mean(), acc.StdDev())
			} else {
				fmt.Fprintf(out, "- %s: text (n=%d, missing %d)\n", name, len(tbl.Rows)-missing, missing)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&stDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
}
