package cmd

import (
	"fmt"

	"github.com/fernwell/bandcut/internal/table"
	"github.com/spf13/cobra"
)

var (
	srtCol       string
	srtOutput    string
	srtDelimiter string
	srtNumeric   bool
	srtLexical   bool
)

var sortCmd = &cobra.Command{
	Use:   "sort [file]",
	Short: "Stable-sort a CSV by a column",
	Long: `Sort reads a CSV from the given file (or stdin when omitted) and writes it
back stable-sorted ascending by the target column. The default strategy
compares the column numerically; --lexical compares it as text. Rows with
equal keys keep their input order.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := activeConfig()
		delimFlag := srtDelimiter
		if delimFlag == "" {
			delimFlag = conf.Delimiter
		}
		delim, err := parseDelimiter(delimFlag)
		if err != nil {
			return err
		}

		var tbl *table.Table
		if len(args) == 1 {
			if delim == 0 {
				delim = table.SniffDelimiter(args[0])
			}
			tbl, err = table.ReadFile(args[0], delim)
		} else {
			tbl, err = table.Read(cmd.InOrStdin(), delim)
		}
		if err != nil {
			return err
		}
		col, err := tbl.ColumnIndex(srtCol)
		if err != nil {
			return err
		}
		if srtLexical {
			err = tbl.SortLexical(col)
		} else {
			err = tbl.SortNumeric(col)
		}
		if err != nil {
			return err
		}

		if srtOutput != "" {
			if err := tbl.WriteFile(srtOutput, delim); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote %d sorted rows to %s\n", len(tbl.Rows), srtOutput)
			return nil
		}
		return tbl.Write(cmd.OutOrStdout(), delim)
	},
}

func init() {
	rootCmd.AddCommand(sortCmd)
	sortCmd.Flags().StringVar(&srtCol, "col", "", "sort column by name or zero-based index (default: last column)")
	sortCmd.Flags().StringVarP(&srtOutput, "output", "o", "", "optional path to write the sorted table (default stdout)")
	sortCmd.Flags().StringVar(&srtDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	sortCmd.Flags().BoolVar(&srtNumeric, "numeric", false, "compare the column numerically (default)")
	sortCmd.Flags().BoolVar(&srtLexical, "lexical", false, "compare the column as text")
	sortCmd.MarkFlagsMutuallyExclusive("numeric", "lexical")
}
