package ledger

import (
	"sort"
	"strings"
)

// MatchType classifies how an observation related to the ledger.
type MatchType string

const (
	// MatchExact means the raw bytes were already known.
	MatchExact MatchType = "exact"
	// MatchNear means a visually near-identical banner was already known.
	MatchNear MatchType = "near"
	// MatchNew means a fresh record was created.
	MatchNew MatchType = "new"
)

// Observation is the context bundle a caller supplies alongside image bytes.
// All fields are optional; empty strings mean "not known for this capture".
type Observation struct {
	Site           string // page/property name, first-wins on the record
	SeenDate       string // YYYY-MM-DD, defaults to today
	ExamplePath    string // representative capture on disk, first-wins
	ExampleRel     string // path relative to the output root, refreshed each run
	ClickURL       string // banner click-through target
	AssetURL       string // origin the image bytes were served from
	PageURL        string // hosting page
	IframeSrc      string // embedding iframe, if the banner lived in one
	AdvertiserHint string // free-text advertiser signal from the scraper
}

// BannerRecord tracks one visually-unique creative across runs. Only the
// Ledger mutates records; everything else reads them.
type BannerRecord struct {
	BannerID      string
	Site          string
	FirstSeenDate string
	LastSeenDate  string
	// SeenDates is the sorted set of distinct capture dates. DaysSeen is
	// always recomputed as len(SeenDates), never mutated independently.
	SeenDates []string
	DaysSeen  int

	ExamplePath string
	ExampleRel  string
	ExampleURL  string

	// ExactDigest and SimilarityHash follow the most recent observation
	// and serve as the record's current index keys.
	ExactDigest    string
	SimilarityHash string
	MatchType      MatchType

	AdvertiserHost   string
	AdvertiserDomain string
	SourceHost       string
	IframeHost       string
	PageDomain       string

	// Append-only ordered sets of every attribution ever resolved.
	AdvertiserHostsAll   []string
	AdvertiserDomainsAll []string
}

// listDelimiter joins multi-valued fields in the CSV store. Values that
// contain it are rejected on append rather than escaped.
const listDelimiter = ";"

// addSeenDate inserts a date into the sorted set and recomputes DaysSeen.
func (r *BannerRecord) addSeenDate(date string) {
	if date == "" || strings.Contains(date, listDelimiter) {
		return
	}
	i := sort.SearchStrings(r.SeenDates, date)
	if i == len(r.SeenDates) || r.SeenDates[i] != date {
		r.SeenDates = append(r.SeenDates, "")
		copy(r.SeenDates[i+1:], r.SeenDates[i:])
		r.SeenDates[i] = date
	}
	r.DaysSeen = len(r.SeenDates)
}

// appendUnique appends value to an ordered set, preserving first-seen order.
func appendUnique(set []string, value string) []string {
	if value == "" || strings.Contains(value, listDelimiter) {
		return set
	}
	for _, v := range set {
		if v == value {
			return set
		}
	}
	return append(set, value)
}

// minDate and maxDate compare ISO dates lexically; an empty side loses.

func minDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" || a < b {
		return a
	}
	return b
}

func maxDate(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" || a > b {
		return a
	}
	return b
}

func joinList(values []string) string {
	return strings.Join(values, listDelimiter)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, listDelimiter) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
