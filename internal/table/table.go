// Package table reads, sorts, and writes the CSV tables the discretizer
// operates on.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fernwell/bandcut/internal/utils"
)

// ClassSuffix marks a generated classification column for downstream
// pipeline stages.
const ClassSuffix = "!klass"

// Table is a header plus data rows. Every row has exactly len(Header)
// fields until a label column is appended.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read parses a header line followed by data rows. A row whose field count
// differs from the header is an immediate error.
func Read(r io.Reader, delim rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	if delim != 0 {
		cr.Comma = delim
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input: missing header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	t := &Table{Header: header}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile opens and parses path. A zero delim is sniffed from the file
// extension (.tsv means tab, everything else comma).
func ReadFile(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	if delim == 0 {
		delim = SniffDelimiter(path)
	}
	t, err := Read(f, delim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// SniffDelimiter picks a delimiter from the filename extension.
func SniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// ColumnIndex resolves a column selector: a header name (case-insensitive)
// or a zero-based numeric index. An empty selector picks the last column,
// the usual position of the target in a staged pipeline.
func (t *Table) ColumnIndex(sel string) (int, error) {
	sel = strings.TrimSpace(sel)
	if sel == "" {
		if len(t.Header) == 0 {
			return 0, errors.New("table has no columns")
		}
		return len(t.Header) - 1, nil
	}
	for i, h := range t.Header {
		if strings.EqualFold(h, sel) {
			return i, nil
		}
	}
	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 0 || idx >= len(t.Header) {
			return 0, fmt.Errorf("column index %d out of range (0..%d)", idx, len(t.Header)-1)
		}
		return idx, nil
	}
	return 0, fmt.Errorf("unknown column %q", sel)
}

// NumericColumn parses column col of every row as float64, failing fast on
// the first value that does not parse.
func (t *Table) NumericColumn(col int) ([]float64, error) {
	if col < 0 || col >= len(t.Header) {
		return nil, fmt.Errorf("column index %d out of range", col)
	}
	vals := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: non-numeric value %q", i+1, t.Header[col], row[col])
		}
		vals[i] = v
	}
	return vals, nil
}

// SortNumeric sorts the rows ascending by the numeric value of column col.
// The sort is stable: rows with equal values keep their input order.
func (t *Table) SortNumeric(col int) error {
	keys, err := t.NumericColumn(col)
	if err != nil {
		return err
	}
	idx := make([]int, len(t.Rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return keys[idx[a]] < keys[idx[b]] })
	t.reorder(idx)
	return nil
}

// SortLexical sorts the rows ascending by the string value of column col,
// stable like SortNumeric.
func (t *Table) SortLexical(col int) error {
	if col < 0 || col >= len(t.Header) {
		return fmt.Errorf("column index %d out of range", col)
	}
	idx := make([]int, len(t.Rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return t.Rows[idx[a]][col] < t.Rows[idx[b]][col] })
	t.reorder(idx)
	return nil
}

func (t *Table) reorder(idx []int) {
	rows := make([][]string, len(idx))
	for i, j := range idx {
		rows[i] = t.Rows[j]
	}
	t.Rows = rows
}

// AppendColumn adds a column to the header and one value to every row.
// len(values) must equal the row count.
func (t *Table) AppendColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("append column %q: %d values for %d rows", name, len(values), len(t.Rows))
	}
	t.Header = append(t.Header, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return nil
}

// Write emits the header and rows as CSV.
func (t *Table) Write(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	if delim != 0 {
		cw.Comma = delim
	}
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile renders the table and writes it atomically to path.
func (t *Table) WriteFile(path string, delim rune) error {
	var sb strings.Builder
	if delim == 0 {
		delim = SniffDelimiter(path)
	}
	if err := t.Write(&sb, delim); err != nil {
		return err
	}
	return utils.SafeWriteFile(path, []byte(sb.String()))
}
