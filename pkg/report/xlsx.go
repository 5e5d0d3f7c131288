// Package report exports the banner ledger as an XLSX workbook with a
// clickable example_link column, for mailing around or dropping in a share.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tealeg/xlsx/v2"

	"adledger/pkg/ledger"
)

// header mirrors the ledger store schema plus the trailing link column.
var header = []string{
	"banner_id", "site", "first_seen_date", "last_seen_date",
	"days_seen", "seen_dates",
	"example_path", "example_rel", "example_url",
	"exact_digest", "similarity_hash", "match_type",
	"advertiser_host", "advertiser_domain",
	"source_host", "iframe_host", "page_domain",
	"advertiser_hosts_all", "advertiser_domains_all",
	"example_link",
}

// WriteXLSX writes all records to an XLSX file. The example_link column
// prefers the record's public URL and falls back to a file:// link to the
// local capture, which opens when the tree is on a shared drive.
func WriteXLSX(records []*ledger.BannerRecord, path, sheetName string) error {
	if sheetName == "" {
		sheetName = "banners"
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, name := range header {
		headerRow.AddCell().Value = name
	}

	for _, rec := range records {
		row := sheet.AddRow()
		for _, v := range []string{
			rec.BannerID,
			rec.Site,
			rec.FirstSeenDate,
			rec.LastSeenDate,
			strconv.Itoa(rec.DaysSeen),
			strings.Join(rec.SeenDates, ";"),
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
			strings.Join(rec.AdvertiserHostsAll, ";"),
			strings.Join(rec.AdvertiserDomainsAll, ";"),
		} {
			row.AddCell().Value = v
		}

		linkCell := row.AddCell()
		if link := exampleLink(rec); link != "" {
			linkCell.SetFormula(fmt.Sprintf("HYPERLINK(%q,%q)", link, "open"))
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := file.Save(path); err != nil {
		return fmt.Errorf("failed to save xlsx: %w", err)
	}
	return nil
}

// exampleLink picks the best clickable target for a record.
func exampleLink(rec *ledger.BannerRecord) string {
	if rec.ExampleURL != "" {
		return rec.ExampleURL
	}
	if rec.ExamplePath != "" {
		abs, err := filepath.Abs(rec.ExamplePath)
		if err != nil {
			return ""
		}
		return "file:///" + strings.TrimPrefix(filepath.ToSlash(abs), "/")
	}
	return ""
}
