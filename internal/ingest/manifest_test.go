package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "captures.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
# captures from the 2026-08-26 run
{"image":"imgs/a.png","site":"example-site","date":"2026-08-26","click_url":"https://shop.brandco.com/x"}

{"image":"/abs/b.png","site":"other-site","advertiser_hint":"brandco.com"}
`)

	captures, err := ReadManifest(path)
	require.NoError(t, err)
	require.Len(t, captures, 2)

	assert.Equal(t, filepath.Join(dir, "imgs", "a.png"), captures[0].Image)
	assert.Equal(t, "example-site", captures[0].Site)
	assert.Equal(t, "2026-08-26", captures[0].Date)
	assert.Equal(t, "https://shop.brandco.com/x", captures[0].ClickURL)

	assert.Equal(t, "/abs/b.png", captures[1].Image, "absolute paths pass through untouched")
	assert.Equal(t, "brandco.com", captures[1].AdvertiserHint)
}

func TestReadManifestMalformedLine(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{"image":"a.png"}
{"image": broken`)

	_, err := ReadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadManifestMissingImage(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `{"site":"example-site"}`)

	_, err := ReadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing image path")
}

func TestReadManifestMissingFile(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}

func TestReadManifestEmptyFile(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "")
	captures, err := ReadManifest(path)
	require.NoError(t, err)
	assert.Empty(t, captures)
}
