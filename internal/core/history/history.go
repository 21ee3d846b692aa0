package history

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// History is the time-ordered sequence of revisions for one title.
// It is read-only after construction.
type History struct {
	title      string
	revs       []Revision
	timestamps []time.Time // parallel to revs, for range lookup
}

// LoadStats summarizes how records were parsed into a History.
type LoadStats struct {
	Records           int
	CommentsDefaulted int
}

// New builds a History from revisions in any order.
// Sorting is stable: revisions with equal timestamps keep their input order.
func New(title string, revs []Revision) *History {
	sorted := slices.Clone(revs)
	slices.SortStableFunc(sorted, func(a, b Revision) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	timestamps := make([]time.Time, len(sorted))
	for i, r := range sorted {
		timestamps[i] = r.Timestamp
	}

	return &History{
		title:      title,
		revs:       sorted,
		timestamps: timestamps,
	}
}

// FromRecords parses persisted records and builds a History.
// Returns ErrEmptyHistory when records is empty.
func FromRecords(title string, records []Record) (*History, LoadStats, error) {
	stats := LoadStats{Records: len(records)}
	if len(records) == 0 {
		return nil, stats, fmt.Errorf("%s: %w", title, ErrEmptyHistory)
	}

	revs := make([]Revision, 0, len(records))
	for i, rec := range records {
		parsed, err := ParseRecord(rec)
		if err != nil {
			return nil, stats, fmt.Errorf("%s: record %d: %w", title, i, err)
		}
		if parsed.Outcome == OutcomeCommentDefaulted {
			stats.CommentsDefaulted++
		}
		revs = append(revs, parsed.Revision)
	}

	return New(title, revs), stats, nil
}

// Title returns the title this history belongs to.
func (h *History) Title() string { return h.title }

// Len returns the number of revisions.
func (h *History) Len() int { return len(h.revs) }

// Revisions returns all revisions in ascending timestamp order.
// The returned slice must not be modified.
func (h *History) Revisions() []Revision {
	return h.revs[:len(h.revs):len(h.revs)]
}

// First returns the earliest revision.
func (h *History) First() (Revision, bool) {
	if len(h.revs) == 0 {
		return Revision{}, false
	}
	return h.revs[0], true
}

// Last returns the latest revision.
func (h *History) Last() (Revision, bool) {
	if len(h.revs) == 0 {
		return Revision{}, false
	}
	return h.revs[len(h.revs)-1], true
}

// RevisionsInRange returns every revision with a timestamp in [start, end),
// preceded by the last revision before start when one exists (the carry-in
// holding the article's size at start). When start is at or before the first
// revision there is no carry-in.
func (h *History) RevisionsInRange(start, end time.Time) []Revision {
	n := len(h.timestamps)
	a := sort.Search(n, func(i int) bool {
		return !h.timestamps[i].Before(start)
	})
	b := a + sort.Search(n-a, func(i int) bool {
		return !h.timestamps[a+i].Before(end)
	})
	lo := max(0, a-1)
	return h.revs[lo:b:b]
}
