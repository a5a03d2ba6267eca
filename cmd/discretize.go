package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fernwell/bandcut/internal/band"
	"github.com/fernwell/bandcut/internal/manifest"
	"github.com/fernwell/bandcut/internal/report"
	"github.com/fernwell/bandcut/internal/table"
	"github.com/spf13/cobra"
)

var (
	disCol         string
	disOutput      string
	disDelimiter   string
	disCohen       float64
	disMargin      float64
	disMinBin      int
	disMinRise     float64
	disTrace       bool
	disReportPath  string
	disManifest    bool
	disManifestDir string
)

var discretizeCmd = &cobra.Command{
	Use:   "discretize <file>",
	Short: "Sort a CSV by a numeric column and append a band-label column",
	Long: `Discretize reads a CSV, stable-sorts it ascending by the target column
(the last column unless --col says otherwise), splits the sorted values into
contiguous low-variance bands, and writes the table back with a label column
appended. The label header is the target column name suffixed with "!klass".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		conf := activeConfig()

		delimFlag := disDelimiter
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
		col, err := tbl.ColumnIndex(disCol)
		if err != nil {
			return err
		}
		if err := tbl.SortNumeric(col); err != nil {
			return err
		}
		vals, err := tbl.NumericColumn(col)
		if err != nil {
			return err
		}

		opt := band.Options{
			MinBinSize: conf.MinBinSize,
			MinRise:    conf.MinRise,
			Cohen:      conf.Cohen,
			Margin:     conf.Margin,
		}
		if cmd.Flags().Changed("min-bin") {
			opt.MinBinSize = disMinBin
		}
		if cmd.Flags().Changed("min-rise") {
			opt.MinRise = disMinRise
		}
		if cmd.Flags().Changed("cohen") {
			opt.Cohen = disCohen
		}
		if cmd.Flags().Changed("margin") {
			opt.Margin = disMargin
		}
		if disTrace || conf.Trace {
			opt.Trace = cmd.ErrOrStderr()
		}

		parts, err := band.Discretize(vals, opt)
		if err != nil {
			return err
		}
		if err := band.Validate(parts, len(vals)); err != nil {
			return fmt.Errorf("internal error: bad partitioning: %w", err)
		}
		labels := make([]string, len(vals))
		for _, p := range parts {
			for i := p.Lo; i <= p.Hi; i++ {
				labels[i] = p.Label
			}
		}
		target := tbl.Header[col]
		if err := tbl.AppendColumn(target+table.ClassSuffix, labels); err != nil {
			return err
		}

		if disOutput != "" {
			if err := tbl.WriteFile(disOutput, delim); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote %d rows in %d bands to %s\n", len(vals), len(parts), disOutput)
		} else {
			if err := tbl.Write(cmd.OutOrStdout(), delim); err != nil {
				return err
			}
		}

		if disReportPath == "" && !disManifest {
			return nil
		}
		rep := report.New(filepath.Base(path), target, vals, parts)
		if disReportPath != "" {
			if err := os.WriteFile(disReportPath, []byte(rep.Markdown()), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Printf("✓ Wrote band report to %s\n", disReportPath)
		}
		if disManifest {
			dir := disManifestDir
			if dir == "" {
				dir = conf.ManifestDir
			}
			if dir == "" {
				return fmt.Errorf("no manifest directory configured (set manifest_dir or --manifest-dir)")
			}
			m, err := manifest.Load(dir)
			if err != nil {
				return err
			}
			m.AddRun(rep, path, disOutput)
			if err := m.Save(); err != nil {
				return err
			}
			fmt.Printf("✓ Recorded run %s in %s\n", rep.RunID, dir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discretizeCmd)
	discretizeCmd.Flags().StringVar(&disCol, "col", "", "target column by name or zero-based index (default: last column)")
	discretizeCmd.Flags().StringVarP(&disOutput, "output", "o", "", "optional path to write the labeled table (default stdout)")
	discretizeCmd.Flags().StringVar(&disDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect if omitted)")
	discretizeCmd.Flags().Float64Var(&disCohen, "cohen", band.DefaultCohen, "effect-size multiplier for the minimum band spread")
	discretizeCmd.Flags().Float64Var(&disMargin, "margin", band.DefaultMargin, "cost margin biasing against marginal splits")
	discretizeCmd.Flags().IntVar(&disMinBin, "min-bin", 0, "minimum rows per band (0 = floor(sqrt(n)))")
	discretizeCmd.Flags().Float64Var(&disMinRise, "min-rise", 0, "minimum value spread per band (0 = cohen * column stddev)")
	discretizeCmd.Flags().BoolVar(&disTrace, "trace", false, "print the recursion trace to stderr")
	discretizeCmd.Flags().StringVar(&disReportPath, "report", "", "optional path to write a band summary (Markdown)")
	discretizeCmd.Flags().BoolVar(&disManifest, "manifest", false, "record this run in the manifest")
	discretizeCmd.Flags().StringVar(&disManifestDir, "manifest-dir", "", "manifest directory (default from config)")
}
