package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Capture is one line of the JSON-lines manifest a scraper writes per run:
// the captured image file plus the context observed around it.
type Capture struct {
	Image          string `json:"image"` // image file, absolute or relative to the manifest
	Site           string `json:"site"`
	Date           string `json:"date"` // YYYY-MM-DD, defaults to today
	ClickURL       string `json:"click_url"`
	AssetURL       string `json:"asset_url"`
	PageURL        string `json:"page_url"`
	IframeSrc      string `json:"iframe_src"`
	AdvertiserHint string `json:"advertiser_hint"`
}

// ReadManifest parses a JSON-lines capture manifest. Blank lines and
// #-comments are skipped; image paths are resolved against the manifest's
// directory. A malformed line is an error: a half-read manifest would
// silently undercount a run.
func ReadManifest(path string) ([]Capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	baseDir := filepath.Dir(path)

	var captures []Capture
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var c Capture
		if err := json.Unmarshal([]byte(line), &c); err != nil {
			return nil, fmt.Errorf("manifest line %d: %w", lineNo, err)
		}
		if c.Image == "" {
			return nil, fmt.Errorf("manifest line %d: missing image path", lineNo)
		}
		if !filepath.IsAbs(c.Image) {
			c.Image = filepath.Join(baseDir, c.Image)
		}
		captures = append(captures, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return captures, nil
}
