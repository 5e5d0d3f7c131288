// Package archive stores the representative capture for each unique banner
// under a site/date tree below the output root.
package archive

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Manager handles capture archive writes below one output root.
type Manager struct {
	root string
}

// NewManager creates an archive manager, creating the root if absent.
func NewManager(root string) (*Manager, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output root: %w", err)
	}
	return &Manager{root: root}, nil
}

// Root returns the output root path.
func (m *Manager) Root() string {
	return m.root
}

// Store writes image bytes to <root>/<site>/<date>/<bannerID>.<ext> with an
// atomic tmp-rename, and returns the absolute path plus the root-relative
// path with forward slashes.
func (m *Manager) Store(imageBytes []byte, site, date, bannerID string) (path, rel string, err error) {
	dir := filepath.Join(m.root, sanitize(site), date)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	path = filepath.Join(dir, bannerID+extFor(imageBytes))
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	_, writeErr := f.Write(imageBytes)
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("failed to write capture: %w", writeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	rel, err = filepath.Rel(m.root, path)
	if err != nil {
		rel = ""
	}
	return path, filepath.ToSlash(rel), nil
}

// extFor sniffs the image format from the bytes.
func extFor(b []byte) string {
	switch http.DetectContentType(b) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".jpg"
	}
}

// sanitize keeps site names usable as directory names.
func sanitize(site string) string {
	if site == "" {
		return "unknown"
	}
	site = strings.ToLower(strings.TrimSpace(site))
	replacer := strings.NewReplacer("/", "_", "\\", "_", " ", "_", ":", "_")
	return replacer.Replace(site)
}
