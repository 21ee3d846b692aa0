package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/storage"
	"github.com/groan-lab/groan/internal/groups"
	"github.com/groan-lab/groan/internal/mediawiki"
)

// RevisionSource returns the complete, ordered revision list of a title.
// Implemented by *mediawiki.RevisionSource.
type RevisionSource interface {
	Fetch(ctx context.Context, title string) ([]history.Record, error)
}

// Result describes the outcome of fetching one title.
type Result struct {
	Title     string
	Skipped   bool
	Revisions int
}

// Summary counts per-title outcomes of a group run.
type Summary struct {
	Fetched int
	Skipped int
	Failed  int
}

// Service downloads revision histories and writes them to a revision store.
type Service struct {
	source RevisionSource
	store  storage.RevisionStore
}

func NewService(source RevisionSource, store storage.RevisionStore) *Service {
	return &Service{source: source, store: store}
}

// FetchTitle fetches every revision of title and stores it. When the store
// already holds the title it is skipped unless force is set.
func (s *Service) FetchTitle(ctx context.Context, title string, force bool) (Result, error) {
	res := Result{Title: title}

	if !force {
		exists, err := s.store.HasRevisions(ctx, title)
		if err != nil {
			return res, fmt.Errorf("check stored revisions for %q: %w", title, err)
		}
		if exists {
			slog.Info("[Fetcher] SKIPPING, revisions already stored", "title", title)
			res.Skipped = true
			return res, nil
		}
	}

	start := time.Now()
	records, err := s.source.Fetch(ctx, title)
	if err != nil {
		return res, fmt.Errorf("fetch %q: %w", title, err)
	}

	if err := s.store.SaveRevisions(ctx, title, records); err != nil {
		return res, fmt.Errorf("save revisions for %q: %w", title, err)
	}

	res.Revisions = len(records)
	slog.Info("[Fetcher] Stored revisions",
		"title", title,
		"revisions", len(records),
		"elapsed", time.Since(start))
	return res, nil
}

// FetchGroups fetches every title of every group in order.
// A protocol violation or a cancelled context aborts the run. Any other
// failure is logged, counted and joined into the returned error while the
// run carries on with the next title.
func (s *Service) FetchGroups(ctx context.Context, gs []groups.Group, force bool) (Summary, error) {
	var (
		sum  Summary
		errs []error
	)

	for _, t := range groups.Titles(gs) {
		if err := ctx.Err(); err != nil {
			return sum, errors.Join(append(errs, err)...)
		}

		res, err := s.FetchTitle(ctx, t, force)
		switch {
		case err == nil && res.Skipped:
			sum.Skipped++
		case err == nil:
			sum.Fetched++
		case errors.Is(err, mediawiki.ErrProtocolViolation):
			sum.Failed++
			slog.Error("[Fetcher] Upstream protocol violation, aborting run", "title", t, "error", err)
			return sum, errors.Join(append(errs, err)...)
		case ctx.Err() != nil:
			sum.Failed++
			return sum, errors.Join(append(errs, err)...)
		default:
			sum.Failed++
			slog.Warn("[Fetcher] Failed to fetch title", "title", t, "error", err)
			errs = append(errs, err)
		}
	}

	slog.Info("[Fetcher] Run complete",
		"fetched", sum.Fetched,
		"skipped", sum.Skipped,
		"failed", sum.Failed)
	return sum, errors.Join(errs...)
}
