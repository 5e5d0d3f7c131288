package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLatest(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	older := &Summary{
		StartedAt:     time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC),
		FinishedAt:    time.Date(2026, 8, 25, 10, 5, 0, 0, time.UTC),
		Manifest:      "captures_20260825.jsonl",
		Processed:     10,
		New:           4,
		UniqueBanners: 4,
	}
	newer := &Summary{
		StartedAt:     time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC),
		FinishedAt:    time.Date(2026, 8, 26, 10, 3, 0, 0, time.UTC),
		Manifest:      "captures_20260826.jsonl",
		Processed:     12,
		Skipped:       1,
		New:           2,
		Exact:         8,
		Near:          2,
		UniqueBanners: 6,
	}

	require.NoError(t, m.Save(newer))
	require.NoError(t, m.Save(older))

	got, err := m.Latest()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "captures_20260826.jsonl", got.Manifest)
	assert.Equal(t, 12, got.Processed)
	assert.Equal(t, 2, got.Near)
	assert.True(t, got.FinishedAt.Equal(newer.FinishedAt))
}

func TestLatestEmpty(t *testing.T) {
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)

	got, err := m.Latest()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	s := &Summary{FinishedAt: time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)}
	require.NoError(t, m.Save(s))

	entries, err := os.ReadDir(filepath.Join(root, "runs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run_20260826T120000.json", entries[0].Name())
}
