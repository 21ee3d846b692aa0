package storage

import (
	"context"
	"errors"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/series"
)

// ErrNotFound is returned when a store holds nothing for a title.
var ErrNotFound = errors.New("title not found in store")

// Locator maps a title to the handle of its resource in a store
// (a file path for the filesystem stores).
type Locator interface {
	Locate(title string) string
}

// RevisionStore persists the fetched revision list of each title.
// Titles are keyed by their normalized form.
type RevisionStore interface {
	// HasRevisions reports whether revisions are already stored for title.
	HasRevisions(ctx context.Context, title string) (bool, error)

	// SaveRevisions replaces the stored revisions of title, preserving order.
	SaveRevisions(ctx context.Context, title string, records []history.Record) error

	// LoadRevisions returns the stored revisions in stored order.
	// Returns ErrNotFound when nothing is stored.
	LoadRevisions(ctx context.Context, title string) ([]history.Record, error)
}

// SeriesStore persists the monthly average-size series of each title.
type SeriesStore interface {
	// SaveSeries replaces the stored series of s.Title. Sizes are rounded on write.
	SaveSeries(ctx context.Context, s *series.Series) error

	// LoadSeries returns the stored series ascending by month.
	// Returns ErrNotFound when nothing is stored.
	LoadSeries(ctx context.Context, title string) ([]series.Rounded, error)
}
