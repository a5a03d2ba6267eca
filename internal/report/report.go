// Package report renders a run of the discretizer as a compact
// markdown-friendly summary.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/fernwell/bandcut/internal/band"
	"github.com/fernwell/bandcut/internal/stats"
	"github.com/google/uuid"
)

// Band captures one band's label and the statistics of the rows it covers.
type Band struct {
	Label string  `json:"label"`
	Rows  int     `json:"rows"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
}

// Report is a band-level summary of one discretization run.
type Report struct {
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Column    string    `json:"column"`
	Rows      int       `json:"rows"`
	Bands     []Band    `json:"bands"`
	CreatedAt time.Time `json:"created_at"`
}

// New builds a report over the sorted target values and the partitions
// produced from them. Each report carries a fresh run ID.
func New(name, column string, vals []float64, parts []band.Partition) *Report {
	r := &Report{
		RunID:     uuid.NewString(),
		Name:      name,
		Column:    column,
		Rows:      len(vals),
		CreatedAt: time.Now(),
	}
	for _, p := range parts {
		acc := stats.NewAccumulator()
		for i := p.Lo; i <= p.Hi; i++ {
			acc.Add(vals[i])
		}
		r.Bands = append(r.Bands, Band{
			Label: p.Label,
			Rows:  acc.Count(),
			Min:   acc.Min(),
			Max:   acc.Max(),
			Mean:  acc.Mean(),
			Std:   acc.StdDev(),
		})
	}
	return r
}

// Markdown renders a compact report suitable for logs or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[BAND SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Column: %s\n", r.Column))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Bands: %d\n", len(r.Bands)))
	b.WriteString(fmt.Sprintf("Run: %s\n\n", r.RunID))

	b.WriteString("[BANDS]\n")
	for _, bd := range r.Bands {
		pct := 0.0
		if r.Rows > 0 {
			pct = float64(bd.Rows) * 100.0 / float64(r.Rows)
		}
		b.WriteString(fmt.Sprintf("- %s: %d rows (%.1f%%), min %.4g, max %.4g, mean %.4g, std %.4g\n",
			bd.Label, bd.Rows, pct, bd.Min, bd.Max, bd.Mean, bd.Std))
	}
	return b.String()
}
