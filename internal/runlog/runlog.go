// Package runlog records per-run ingestion summaries under the output root,
// so crashed or partial runs can be told apart from completed ones.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"adledger/pkg/logger"
)

// Summary is the outcome of one observe run.
type Summary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Manifest   string    `json:"manifest"`
	LedgerPath string    `json:"ledger_path"`

	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	New       int `json:"new"`
	Exact     int `json:"exact"`
	Near      int `json:"near"`

	UniqueBanners int `json:"unique_banners"`
}

// Manager writes and reads run summaries in a single directory.
type Manager struct {
	dir string
	log logger.Logger
}

// NewManager creates a run log manager rooted at <outputRoot>/runs.
func NewManager(outputRoot string) (*Manager, error) {
	dir := filepath.Join(outputRoot, "runs")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runs directory: %w", err)
	}
	return &Manager{dir: dir, log: logger.GetLogger()}, nil
}

// Save writes a summary atomically, named by its finish timestamp.
func (m *Manager) Save(s *Summary) error {
	name := fmt.Sprintf("run_%s.json", s.FinishedAt.Format("20060102T150405"))
	path := filepath.Join(m.dir, name)
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create run summary: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	writeErr := enc.Encode(s)
	if writeErr == nil {
		writeErr = f.Sync()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write run summary: %w", writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace run summary: %w", err)
	}

	m.log.DebugWithFields("run summary saved", map[string]interface{}{
		"path":      path,
		"processed": s.Processed,
	})
	return nil
}

// Latest loads the most recent run summary, or nil when none exist.
func (m *Manager) Latest() (*Summary, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	data, err := os.ReadFile(filepath.Join(m.dir, names[len(names)-1]))
	if err != nil {
		return nil, fmt.Errorf("failed to read run summary: %w", err)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode run summary: %w", err)
	}
	return &s, nil
}
