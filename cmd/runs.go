package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fernwell/bandcut/internal/manifest"
	"github.com/spf13/cobra"
)

var runsManifestDir string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List discretization runs recorded in the manifest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := runsManifestDir
		if dir == "" {
			dir = activeConfig().ManifestDir
		}
		if dir == "" {
			return fmt.Errorf("no manifest directory configured (set manifest_dir or --manifest-dir)")
		}
		m, err := manifest.Load(dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		runs := m.List()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		fmt.Fprintf(out, "Manifest: %s\n", m.RootDir())
		for _, r := range runs {
			dest := r.Output
			if dest == "" {
				dest = "(stdout)"
			}
			fmt.Fprintf(out, "- %s: %s -> %s, column %s, %d rows, %d bands [%s] (%s)\n",
				r.ID, r.Input, dest, r.Column, r.Rows, len(r.Labels),
				strings.Join(r.Labels, " | "), r.CreatedAt.Format(time.RFC3339))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsManifestDir, "manifest-dir", "", "manifest directory (default from config)")
}
