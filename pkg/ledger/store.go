package ledger

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	apperrors "adledger/pkg/errors"
)

// ledgerColumns is the fixed store schema. Column order is stable within a
// file; rows loaded from older files with missing columns are backfilled
// with empty values.
var ledgerColumns = []string{
	"banner_id", "site", "first_seen_date", "last_seen_date",
	"days_seen", "seen_dates",
	"example_path", "example_rel", "example_url",
	"exact_digest", "similarity_hash", "match_type",
	"advertiser_host", "advertiser_domain",
	"source_host", "iframe_host", "page_domain",
	"advertiser_hosts_all", "advertiser_domains_all",
}

// loadRecords reads the whole CSV store. A missing file yields an empty map.
func loadRecords(path string) (map[string]*BannerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*BannerRecord{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrorTypeStore, "open ledger store", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate rows from older schemas

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return map[string]*BannerRecord{}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrorTypeStore, "read ledger header", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	field := func(row []string, name string) string {
		if i, ok := col[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	records := make(map[string]*BannerRecord)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrorTypeStore, "read ledger row", err)
		}

		id := field(row, "banner_id")
		if id == "" {
			continue
		}

		rec := &BannerRecord{
			BannerID:             id,
			Site:                 field(row, "site"),
			FirstSeenDate:        field(row, "first_seen_date"),
			LastSeenDate:         field(row, "last_seen_date"),
			SeenDates:            splitList(field(row, "seen_dates")),
			ExamplePath:          field(row, "example_path"),
			ExampleRel:           field(row, "example_rel"),
			ExampleURL:           field(row, "example_url"),
			ExactDigest:          field(row, "exact_digest"),
			SimilarityHash:       field(row, "similarity_hash"),
			MatchType:            MatchType(field(row, "match_type")),
			AdvertiserHost:       field(row, "advertiser_host"),
			AdvertiserDomain:     field(row, "advertiser_domain"),
			SourceHost:           field(row, "source_host"),
			IframeHost:           field(row, "iframe_host"),
			PageDomain:           field(row, "page_domain"),
			AdvertiserHostsAll:   splitList(field(row, "advertiser_hosts_all")),
			AdvertiserDomainsAll: splitList(field(row, "advertiser_domains_all")),
		}
		// days_seen is derived; the stored count is ignored in favor of
		// the set it must equal.
		rec.DaysSeen = len(rec.SeenDates)

		records[id] = rec
	}

	return records, nil
}

// saveRecords rewrites the whole store atomically: rows land in a temp file
// that replaces the previous store only after a successful sync.
func saveRecords(path string, records []*BannerRecord) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.Wrap(apperrors.ErrorTypeStore, "create store directory", err)
		}
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeStore, "create temp store file", err)
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(ledgerColumns)
	if writeErr == nil {
		for _, rec := range records {
			if err := w.Write(recordRow(rec)); err != nil {
				writeErr = err
				break
			}
		}
	}
	if writeErr == nil {
		w.Flush()
		writeErr = w.Error()
	}
	if writeErr == nil {
		writeErr = f.Sync()
	}

	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmpPath)
		return apperrors.Wrap(apperrors.ErrorTypeStore, "write ledger store", writeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.Wrap(apperrors.ErrorTypeStore, "replace ledger store", err)
	}
	return nil
}

// recordRow normalizes a record to the fixed schema; every column is
// populated, empty when the record never saw a value for it.
func recordRow(rec *BannerRecord) []string {
	return []string{
		rec.BannerID,
		rec.Site,
		rec.FirstSeenDate,
		rec.LastSeenDate,
		strconv.Itoa(rec.DaysSeen),
		joinList(rec.SeenDates),
		rec.ExamplePath,
		rec.ExampleRel,
		rec.ExampleURL,
		rec.ExactDigest,
		rec.SimilarityHash,
		string(rec.MatchType),
		rec.AdvertiserHost,
		rec.AdvertiserDomain,
		rec.SourceHost,
		rec.IframeHost,
		rec.PageDomain,
		joinList(rec.AdvertiserHostsAll),
		joinList(rec.AdvertiserDomainsAll),
	}
}
