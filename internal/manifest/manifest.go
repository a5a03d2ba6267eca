// Package manifest persists a record of completed discretization runs so
// downstream stages can trace where a label column came from.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fernwell/bandcut/internal/report"
	"github.com/fernwell/bandcut/internal/utils"
	"github.com/google/uuid"
)

const manifestFileName = "manifest.json"

// Run is one completed discretization recorded in the manifest.
type Run struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Column    string    `json:"column"`
	Rows      int       `json:"rows"`
	Labels    []string  `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
}

// Manifest is the on-disk run log, one manifest.json per directory.
type Manifest struct {
	Runs      map[string]*Run `json:"runs"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Not serialized: on-disk location of the manifest.json
	rootDir string
}

// Load reads manifest.json from dir. A missing file yields an empty
// manifest rooted at dir, not an error.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Manifest{Runs: make(map[string]*Run), rootDir: dir}, nil
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if m.Runs == nil {
		m.Runs = make(map[string]*Run)
	}
	m.rootDir = dir
	return &m, nil
}

// RootDir returns the directory holding manifest.json.
func (m *Manifest) RootDir() string { return m.rootDir }

// Save writes manifest.json using atomic write.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest root directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(m.rootDir, manifestFileName), data)
}

// AddRun records a completed run described by rep. The report's run ID is
// reused so the manifest entry and any written report file correlate; a
// report without one gets a fresh ID.
func (m *Manifest) AddRun(rep *report.Report, input, output string) *Run {
	id := rep.RunID
	if id == "" {
		id = uuid.NewString()
	}
	labels := make([]string, 0, len(rep.Bands))
	for _, b := range rep.Bands {
		labels = append(labels, b.Label)
	}
	r := &Run{
		ID:        id,
		Input:     input,
		Output:    output,
		Column:    rep.Column,
		Rows:      rep.Rows,
		Labels:    labels,
		CreatedAt: time.Now(),
	}
	if m.Runs == nil {
		m.Runs = make(map[string]*Run)
	}
	m.Runs[id] = r
	m.UpdatedAt = time.Now()
	return r
}

// List returns the recorded runs, newest first, with ID as the tiebreaker
// for a deterministic order.
func (m *Manifest) List() []*Run {
	runs := make([]*Run, 0, len(m.Runs))
	for _, r := range m.Runs {
		runs = append(runs, r)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].ID < runs[j].ID
	})
	return runs
}
