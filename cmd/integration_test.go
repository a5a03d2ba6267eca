package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// resetFlags restores named flags on a command to their defaults and clears
// the sticky Changed state between invocations.
func resetFlags(args ...string) {
	for _, c := range rootCmd.Commands() {
		for _, n := range args {
			if f := c.Flags().Lookup(n); f != nil {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			}
		}
	}
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	resetFlags("col", "output", "delimiter", "cohen", "margin", "min-bin", "min-rise",
		"trace", "report", "manifest", "manifest-dir", "numeric", "lexical")
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

const clusterCSV = "name,dom\n" +
	"i,53\n" +
	"a,1\n" +
	"g,50\n" +
	"b,1\n" +
	"e,2\n" +
	"h,51\n" +
	"c,1\n" +
	"f,2\n" +
	"j,52\n" +
	"d,1\n"

func TestCLI_DiscretizeWritesLabeledTable(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	rep := filepath.Join(dir, "report.md")
	runs := filepath.Join(dir, "runs")
	if err := os.WriteFile(in, []byte(clusterCSV), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	runCmd(t, "discretize", in,
		"--min-bin", "3", "--min-rise", "0.5",
		"-o", out, "--report", rep, "--manifest", "--manifest-dir", runs)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if lines[0] != "name,dom,dom!klass" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if len(lines) != 11 {
		t.Fatalf("expected 11 lines, got %d", len(lines))
	}
	// Sorted ascending by dom with stable ties: the four 1s keep input order.
	if lines[1] != "a,1,..2" || lines[4] != "d,1,..2" {
		t.Fatalf("unexpected low band rows: %q, %q", lines[1], lines[4])
	}
	if lines[7] != "g,50,50.." || lines[10] != "i,53,50.." {
		t.Fatalf("unexpected high band rows: %q, %q", lines[7], lines[10])
	}

	md, err := os.ReadFile(rep)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(md), "[BAND SUMMARY]") || !strings.Contains(string(md), "Bands: 2") {
		t.Fatalf("unexpected report:\n%s", md)
	}

	if _, err := os.Stat(filepath.Join(runs, "manifest.json")); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
}

func TestCLI_DiscretizeNonNumericTargetFails(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(in, []byte("x,dom\na,1\nb,oops\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	resetFlags("col", "output", "delimiter", "min-bin", "min-rise", "report", "manifest", "manifest-dir", "trace")
	rootCmd.SetArgs([]string{"discretize", in})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected parse failure for non-numeric target")
	}
}

func TestCLI_SortDefaultNumeric(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, []byte("name,dom\nb,10\na,2\nc,2\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	resetFlags("col", "output", "delimiter", "numeric", "lexical")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"sort", in})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("sort: %v", err)
	}
	want := "name,dom\na,2\nc,2\nb,10\n"
	if buf.String() != want {
		t.Fatalf("sorted output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestCLI_SortRejectsConflictingModes(t *testing.T) {
	resetFlags("col", "output", "delimiter", "numeric", "lexical")
	rootCmd.SetArgs([]string{"sort", "--numeric", "--lexical"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected mutually exclusive flag error")
	}
}

func TestCLI_SortRejectsExcessArgs(t *testing.T) {
	resetFlags("col", "output", "delimiter", "numeric", "lexical")
	rootCmd.SetArgs([]string{"sort", "a.csv", "b.csv"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected usage error for excess arguments")
	}
}

func TestCLI_RunsListsRecordedRuns(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	runs := filepath.Join(dir, "runs")
	if err := os.WriteFile(in, []byte(clusterCSV), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	// Empty manifest first.
	resetFlags("manifest-dir")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"runs", "--manifest-dir", runs})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("runs (empty): %v", err)
	}
	if !strings.Contains(buf.String(), "(no runs)") {
		t.Fatalf("expected empty listing, got:\n%s", buf.String())
	}

	runCmd(t, "discretize", in,
		"--min-bin", "3", "--min-rise", "0.5",
		"-o", out, "--manifest", "--manifest-dir", runs)

	resetFlags("manifest-dir")
	buf.Reset()
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"runs", "--manifest-dir", runs})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("runs: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "Manifest: "+runs) {
		t.Fatalf("listing missing manifest dir:\n%s", got)
	}
	if !strings.Contains(got, in) || !strings.Contains(got, "2 bands [..2 | 50..]") {
		t.Fatalf("listing missing run details:\n%s", got)
	}
}

func TestCLI_RunsWithoutManifestDirFails(t *testing.T) {
	resetFlags("manifest-dir")
	rootCmd.SetArgs([]string{"runs"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatal("expected error when no manifest directory is configured")
	}
}

func TestCLI_Stats(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, []byte("plot,dom\nA,1\nB,3\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	resetFlags("delimiter")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	defer rootCmd.SetOut(nil)
	rootCmd.SetArgs([]string{"stats", in})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[COLUMN SUMMARY]") {
		t.Fatalf("missing summary header:\n%s", out)
	}
	if !strings.Contains(out, "- plot: text") || !strings.Contains(out, "- dom: numeric") {
		t.Fatalf("unexpected column kinds:\n%s", out)
	}
}
