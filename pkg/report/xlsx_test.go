package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"adledger/pkg/ledger"
)

func sampleRecords() []*ledger.BannerRecord {
	return []*ledger.BannerRecord{
		{
			BannerID:             "bn_0123456789",
			Site:                 "example-site",
			FirstSeenDate:        "2026-08-01",
			LastSeenDate:         "2026-08-05",
			SeenDates:            []string{"2026-08-01", "2026-08-05"},
			DaysSeen:             2,
			ExamplePath:          "/data/captures/example-site/2026-08-01/bn_0123456789.png",
			ExampleRel:           "example-site/2026-08-01/bn_0123456789.png",
			ExampleURL:           "https://captures.example.com/example-site/2026-08-01/bn_0123456789.png",
			ExactDigest:          "0123456789",
			SimilarityHash:       "8f3c00ffa1b2c3d4",
			MatchType:            ledger.MatchExact,
			AdvertiserHost:       "shop.brandco.com",
			AdvertiserDomain:     "brandco.com",
			AdvertiserHostsAll:   []string{"shop.brandco.com", "deals.otherbrand.com"},
			AdvertiserDomainsAll: []string{"brandco.com", "otherbrand.com"},
		},
		{
			BannerID:    "bn_fedcba9876",
			Site:        "other-site",
			ExamplePath: "/data/captures/other-site/2026-08-03/bn_fedcba9876.png",
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "banner_tracking.xlsx")
	require.NoError(t, WriteXLSX(sampleRecords(), path, "banners"))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)

	sheet := wb.Sheets[0]
	assert.Equal(t, "banners", sheet.Name)
	require.Len(t, sheet.Rows, 3)

	headerRow := sheet.Rows[0]
	require.Len(t, headerRow.Cells, len(header))
	assert.Equal(t, "banner_id", headerRow.Cells[0].Value)
	assert.Equal(t, "example_link", headerRow.Cells[len(header)-1].Value)

	row := sheet.Rows[1]
	assert.Equal(t, "bn_0123456789", row.Cells[0].Value)
	assert.Equal(t, "2", row.Cells[4].Value)
	assert.Equal(t, "2026-08-01;2026-08-05", row.Cells[5].Value)
	assert.Equal(t, "shop.brandco.com;deals.otherbrand.com", row.Cells[17].Value)

	// Public URL wins for the link cell.
	link := row.Cells[len(header)-1]
	assert.Contains(t, link.Formula(), "https://captures.example.com/")

	// Without a public URL the local capture path is linked instead.
	local := sheet.Rows[2].Cells[len(header)-1]
	assert.Contains(t, local.Formula(), "file:///")
	assert.Contains(t, local.Formula(), "bn_fedcba9876.png")
}

func TestWriteXLSXEmptyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner_tracking.xlsx")
	require.NoError(t, WriteXLSX(nil, path, ""))

	wb, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "banners", wb.Sheets[0].Name, "sheet name falls back to the default")
	assert.Len(t, wb.Sheets[0].Rows, 1)
}

func TestExampleLink(t *testing.T) {
	assert.Equal(t, "https://x.example.com/a.png",
		exampleLink(&ledger.BannerRecord{ExampleURL: "https://x.example.com/a.png", ExamplePath: "/d/a.png"}))

	link := exampleLink(&ledger.BannerRecord{ExamplePath: "/d/a.png"})
	assert.Equal(t, "file:///d/a.png", link)

	assert.Empty(t, exampleLink(&ledger.BannerRecord{}))
}
