// Package ingest feeds capture manifests into the banner ledger. File reads
// run on a small worker pool; every ledger merge happens on one goroutine,
// because the ledger assumes exactly one writer at a time.
package ingest

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"adledger/internal/runlog"
	"adledger/pkg/archive"
	apperrors "adledger/pkg/errors"
	"adledger/pkg/fingerprint"
	"adledger/pkg/ledger"
	"adledger/pkg/logger"
)

// Runner drives one observe run over a capture manifest.
type Runner struct {
	ledger  *ledger.Ledger
	archive *archive.Manager
	workers int
	log     logger.Logger
}

// New creates a Runner.
func New(led *ledger.Ledger, arch *archive.Manager, workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	return &Runner{
		ledger:  led,
		archive: arch,
		workers: workers,
		log:     logger.GetLogger(),
	}
}

// loadResult carries one capture's bytes (or read failure) to the merger.
type loadResult struct {
	capture Capture
	data    []byte
	err     error
}

// Run ingests every capture in the manifest and returns the run summary.
// The ledger is left dirty; saving it is the caller's decision.
func (r *Runner) Run(ctx context.Context, manifestPath string) (*runlog.Summary, error) {
	captures, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	summary := &runlog.Summary{
		StartedAt:  time.Now(),
		Manifest:   manifestPath,
		LedgerPath: "",
	}

	r.log.InfoWithFields("observe run started", map[string]interface{}{
		"manifest": manifestPath,
		"captures": len(captures),
		"workers":  r.workers,
	})

	jobs := make(chan Capture)
	results := make(chan loadResult, r.workers)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				data, err := os.ReadFile(c.Image)
				select {
				case results <- loadResult{capture: c, data: data, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range captures {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		r.observeOne(res, summary)
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	summary.FinishedAt = time.Now()
	summary.UniqueBanners = r.ledger.Len()

	r.log.InfoWithFields("observe run finished", map[string]interface{}{
		"processed": summary.Processed,
		"skipped":   summary.Skipped,
		"new":       summary.New,
		"exact":     summary.Exact,
		"near":      summary.Near,
		"unique":    summary.UniqueBanners,
	})
	return summary, nil
}

// observeOne merges a single capture into the ledger and counts the outcome.
func (r *Runner) observeOne(res loadResult, summary *runlog.Summary) {
	if res.err != nil {
		summary.Skipped++
		r.log.WithError(res.err).WithField("image", res.capture.Image).Warn("capture unreadable, skipped")
		return
	}

	c := res.capture
	date := c.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	// Archive first so the observation carries the representative path,
	// like the scrapers that write screenshots before reporting them.
	bannerName := "bn_" + fingerprint.ExactDigest(res.data)
	examplePath, exampleRel, err := r.archive.Store(res.data, c.Site, date, bannerName)
	if err != nil {
		r.log.WithError(err).WithField("image", c.Image).Warn("capture archive failed")
		examplePath, exampleRel = "", ""
	}

	id, match, err := r.ledger.Observe(res.data, ledger.Observation{
		Site:           c.Site,
		SeenDate:       date,
		ExamplePath:    examplePath,
		ExampleRel:     exampleRel,
		ClickURL:       c.ClickURL,
		AssetURL:       c.AssetURL,
		PageURL:        c.PageURL,
		IframeSrc:      c.IframeSrc,
		AdvertiserHint: c.AdvertiserHint,
	})
	if err != nil {
		summary.Skipped++
		var appErr *apperrors.Error
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeDecode {
			r.log.WithError(err).WithField("image", c.Image).Warn("not a decodable image, skipped")
		} else {
			r.log.WithError(err).WithField("image", c.Image).Error("observation failed")
		}
		return
	}

	summary.Processed++
	switch match {
	case ledger.MatchNew:
		summary.New++
	case ledger.MatchExact:
		summary.Exact++
	case ledger.MatchNear:
		summary.Near++
	}

	r.log.DebugWithFields("capture observed", map[string]interface{}{
		"banner_id": id,
		"match":     string(match),
		"site":      c.Site,
		"date":      date,
	})
}
