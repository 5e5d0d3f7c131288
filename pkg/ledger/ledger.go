// Package ledger tracks unique ad banners across scraping runs. Incoming
// images are classified as exact duplicates, near duplicates, or new unique
// creatives, and their context is merged into a persistent record with
// first/last-seen tracking and advertiser attribution.
package ledger

import (
	"sort"
	"strings"
	"time"

	"adledger/pkg/advertiser"
	"adledger/pkg/fingerprint"
	"adledger/pkg/logger"
	"adledger/pkg/urlhost"
)

// Options tunes the ledger engine. Passed at construction so multiple
// ledgers with different thresholds can coexist in one process.
type Options struct {
	// MaxHashDistance is the perceptual-hash distance at or below which an
	// observation merges into an existing record as a near duplicate.
	MaxHashDistance int
	// PublicBaseURL turns example_rel into a clickable URL when set.
	PublicBaseURL string
	// DenylistExtra extends the advertiser infrastructure denylist.
	DenylistExtra []string
}

// Ledger owns the full record collection and its two lookup indexes. It is
// the sole mutator of records and assumes exactly one writer at a time:
// concurrent callers must serialize Observe and Save externally.
type Ledger struct {
	csvPath string
	opts    Options

	records  map[string]*BannerRecord
	order    []string // banner ids, ascending; fixes near-match tie-breaks
	byDigest map[string]string
	byHash   map[string]string

	chooser *advertiser.Chooser
	log     logger.Logger
}

// New loads the ledger from its CSV store. A missing or unreadable store is
// tolerated: the ledger starts empty, equivalent to having no history.
func New(csvPath string, opts Options) *Ledger {
	l := &Ledger{
		csvPath:  csvPath,
		opts:     opts,
		records:  map[string]*BannerRecord{},
		byDigest: map[string]string{},
		byHash:   map[string]string{},
		chooser:  advertiser.NewChooser(opts.DenylistExtra),
		log:      logger.GetLogger(),
	}

	records, err := loadRecords(csvPath)
	if err != nil {
		l.log.WithError(err).WithField("path", csvPath).Warn("ledger store unreadable, starting empty")
		return l
	}

	for id, rec := range records {
		l.records[id] = rec
		l.order = append(l.order, id)
		if rec.ExactDigest != "" {
			l.byDigest[rec.ExactDigest] = id
		}
		if rec.SimilarityHash != "" {
			l.byHash[rec.SimilarityHash] = id
		}
	}
	sort.Strings(l.order)

	l.log.InfoWithFields("ledger loaded", map[string]interface{}{
		"path":    csvPath,
		"records": len(l.records),
	})
	return l
}

// Len returns the number of unique banners tracked.
func (l *Ledger) Len() int {
	return len(l.records)
}

// Get returns the record for a banner id.
func (l *Ledger) Get(id string) (*BannerRecord, bool) {
	rec, ok := l.records[id]
	return rec, ok
}

// Records returns all records in ascending banner_id order.
func (l *Ledger) Records() []*BannerRecord {
	out := make([]*BannerRecord, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.records[id])
	}
	return out
}

// Observe classifies an image and merges its context into the matched or
// newly created record. Returns the banner id and how it matched. A
// fingerprinting failure aborts the observation without touching any record.
func (l *Ledger) Observe(imageBytes []byte, obs Observation) (string, MatchType, error) {
	digest, simHash, err := fingerprint.Fingerprint(imageBytes)
	if err != nil {
		return "", "", err
	}

	seenDate := obs.SeenDate
	if seenDate == "" {
		seenDate = time.Now().Format("2006-01-02")
	}

	var (
		id    string
		match MatchType
	)
	if existing, ok := l.byDigest[digest]; ok {
		id, match = existing, MatchExact
	} else if nearID, ok := l.findNear(simHash); ok {
		id, match = nearID, MatchNear
	} else {
		id, match = "bn_"+digest, MatchNew
		l.insert(&BannerRecord{
			BannerID:    id,
			Site:        obs.Site,
			ExamplePath: obs.ExamplePath,
		})
	}

	rec := l.records[id]
	l.merge(rec, obs, seenDate)

	// Refresh prints and indexes to the latest observation. Previous keys
	// stay behind but keep resolving to the same record.
	rec.ExactDigest = digest
	rec.SimilarityHash = simHash
	rec.MatchType = match
	l.byDigest[digest] = id
	l.byHash[simHash] = id

	return id, match, nil
}

// Save rewrites the entire collection to the CSV store. I/O failures
// propagate; the previous store is left intact when the write fails.
func (l *Ledger) Save() error {
	if err := saveRecords(l.csvPath, l.Records()); err != nil {
		return err
	}
	l.log.InfoWithFields("ledger saved", map[string]interface{}{
		"path":    l.csvPath,
		"records": len(l.records),
	})
	return nil
}

// findNear locates an existing record within MaxHashDistance of the hash.
// An exact hash hit wins outright; otherwise every record is scanned in
// ascending banner_id order, so the lowest id wins distance ties.
func (l *Ledger) findNear(simHash string) (string, bool) {
	if id, ok := l.byHash[simHash]; ok {
		return id, true
	}

	bestID, bestDist := "", -1
	for _, id := range l.order {
		rec := l.records[id]
		if rec.SimilarityHash == "" {
			continue
		}
		d, err := fingerprint.Distance(simHash, rec.SimilarityHash)
		if err != nil {
			continue
		}
		if bestDist < 0 || d < bestDist {
			bestID, bestDist = id, d
		}
	}

	if bestID != "" && bestDist <= l.opts.MaxHashDistance {
		return bestID, true
	}
	return "", false
}

// merge applies the per-field rules: site and contextual hosts first-wins,
// dates min/max plus set union, example path first-wins with rel/url
// refresh, attribution best-wins with append-only history.
func (l *Ledger) merge(rec *BannerRecord, obs Observation, seenDate string) {
	if rec.Site == "" {
		rec.Site = obs.Site
	}

	rec.FirstSeenDate = minDate(rec.FirstSeenDate, seenDate)
	rec.LastSeenDate = maxDate(rec.LastSeenDate, seenDate)
	rec.addSeenDate(seenDate)

	if rec.ExamplePath == "" {
		rec.ExamplePath = obs.ExamplePath
	}
	if obs.ExampleRel != "" {
		rec.ExampleRel = obs.ExampleRel
		rec.ExampleURL = l.publicURL(obs.ExampleRel)
	}

	advHost, advDomain := l.chooser.Choose(obs.AdvertiserHint, obs.ClickURL, obs.PageURL)
	if advHost != "" {
		rec.AdvertiserHost = advHost
	}
	if advDomain != "" {
		rec.AdvertiserDomain = advDomain
	}
	rec.AdvertiserHostsAll = appendUnique(rec.AdvertiserHostsAll, advHost)
	rec.AdvertiserDomainsAll = appendUnique(rec.AdvertiserDomainsAll, advDomain)

	if rec.SourceHost == "" {
		rec.SourceHost = urlhost.HostOf(obs.AssetURL)
	}
	if rec.IframeHost == "" {
		rec.IframeHost = urlhost.HostOf(obs.IframeSrc)
	}
	if rec.PageDomain == "" {
		if pageHost := urlhost.HostOf(obs.PageURL); pageHost != "" {
			rec.PageDomain = urlhost.RegistrableDomain(pageHost)
		}
	}
}

// insert adds a record keeping the id order sorted.
func (l *Ledger) insert(rec *BannerRecord) {
	l.records[rec.BannerID] = rec
	i := sort.SearchStrings(l.order, rec.BannerID)
	l.order = append(l.order, "")
	copy(l.order[i+1:], l.order[i:])
	l.order[i] = rec.BannerID
}

// publicURL builds a shareable URL from a root-relative example path.
func (l *Ledger) publicURL(rel string) string {
	base := strings.TrimSpace(l.opts.PublicBaseURL)
	if base == "" || rel == "" {
		return ""
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + strings.ReplaceAll(rel, "\\", "/")
}
