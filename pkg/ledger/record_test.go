package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddSeenDateKeepsSortedSet(t *testing.T) {
	r := &BannerRecord{}
	for _, d := range []string{"2026-08-03", "2026-08-01", "2026-08-03", "2026-08-02"} {
		r.addSeenDate(d)
	}
	assert.Equal(t, []string{"2026-08-01", "2026-08-02", "2026-08-03"}, r.SeenDates)
	assert.Equal(t, 3, r.DaysSeen)

	r.addSeenDate("")
	r.addSeenDate("2026;08")
	assert.Equal(t, 3, r.DaysSeen, "empty and delimiter-bearing values are rejected")
}

func TestAppendUnique(t *testing.T) {
	set := appendUnique(nil, "a.com")
	set = appendUnique(set, "b.com")
	set = appendUnique(set, "a.com")
	set = appendUnique(set, "")
	set = appendUnique(set, "bad;value")
	assert.Equal(t, []string{"a.com", "b.com"}, set)
}

func TestDateBounds(t *testing.T) {
	assert.Equal(t, "2026-08-01", minDate("2026-08-01", "2026-08-05"))
	assert.Equal(t, "2026-08-05", maxDate("2026-08-01", "2026-08-05"))
	assert.Equal(t, "2026-08-05", minDate("", "2026-08-05"))
	assert.Equal(t, "2026-08-05", maxDate("2026-08-05", ""))
	assert.Equal(t, "", minDate("", ""))
}

func TestListJoinSplit(t *testing.T) {
	assert.Equal(t, "a;b", joinList([]string{"a", "b"}))
	assert.Equal(t, []string{"a", "b"}, splitList("a;b"))
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a"}, splitList(";a;"))
}
