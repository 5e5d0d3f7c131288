package ledger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "adledger/pkg/errors"
)

func TestLoadRecordsMissingFile(t *testing.T) {
	records, err := loadRecords(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "banner_master.csv")
	in := []*BannerRecord{
		{
			BannerID:             "bn_0123456789",
			Site:                 "example-site",
			FirstSeenDate:        "2026-08-01",
			LastSeenDate:         "2026-08-05",
			SeenDates:            []string{"2026-08-01", "2026-08-03", "2026-08-05"},
			DaysSeen:             3,
			ExamplePath:          "/data/example-site/2026-08-01/bn_0123456789.png",
			ExampleRel:           "example-site/2026-08-01/bn_0123456789.png",
			ExampleURL:           "https://captures.example.com/example-site/2026-08-01/bn_0123456789.png",
			ExactDigest:          "0123456789",
			SimilarityHash:       "8f3c00ffa1b2c3d4",
			MatchType:            MatchNear,
			AdvertiserHost:       "shop.brandco.com",
			AdvertiserDomain:     "brandco.com",
			SourceHost:           "cdn.adnetwork.com",
			IframeHost:           "frames.adnetwork.com",
			PageDomain:           "sitepub.com",
			AdvertiserHostsAll:   []string{"shop.brandco.com", "deals.otherbrand.com"},
			AdvertiserDomainsAll: []string{"brandco.com", "otherbrand.com"},
		},
		{
			BannerID: "bn_fedcba9876",
			Site:     "other-site",
		},
	}

	require.NoError(t, saveRecords(path, in))

	out, err := loadRecords(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0], out["bn_0123456789"])

	// A record with no dates stays empty rather than turning into zeroes.
	sparse := out["bn_fedcba9876"]
	require.NotNil(t, sparse)
	assert.Empty(t, sparse.SeenDates)
	assert.Zero(t, sparse.DaysSeen)
	assert.Empty(t, sparse.AdvertiserHostsAll)
}

func TestLoadRecordsOlderSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.csv")
	legacy := "banner_id,site,first_seen_date,days_seen,seen_dates\n" +
		"bn_aaaaaaaaaa,example-site,2026-07-01,99,2026-07-01;2026-07-02\n" +
		",orphan-row,2026-07-01,1,2026-07-01\n"
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	records, err := loadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1, "rows without a banner_id are dropped")

	rec := records["bn_aaaaaaaaaa"]
	require.NotNil(t, rec)
	assert.Equal(t, "example-site", rec.Site)
	assert.Empty(t, rec.LastSeenDate, "columns the file never had load empty")
	assert.Equal(t, 2, rec.DaysSeen, "day count is derived from the date set, not the stored number")
}

func TestLoadRecordsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	records, err := loadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveRecordsLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banner_master.csv")
	require.NoError(t, saveRecords(path, []*BannerRecord{{BannerID: "bn_0000000000"}}))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadRecordsUnreadableStore(t *testing.T) {
	dir := t.TempDir()
	// A directory at the store path fails open-for-read in a non-NotExist way
	// once reading starts.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "store.csv"), 0755))

	_, err := loadRecords(filepath.Join(dir, "store.csv"))
	require.Error(t, err)

	var appErr *apperrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrorTypeStore, appErr.Type)
}
