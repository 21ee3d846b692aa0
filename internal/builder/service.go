package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/series"
	"github.com/groan-lab/groan/internal/core/storage"
	"github.com/groan-lab/groan/internal/groups"
	"golang.org/x/sync/errgroup"
)

// Summary counts per-title outcomes of a group build.
type Summary struct {
	Built  int
	Failed int
}

// Service turns stored revision histories into stored monthly series.
type Service struct {
	revisions storage.RevisionStore
	series    storage.SeriesStore
	workers   int
}

// NewService creates a builder running up to workers titles at once.
// Values below 1 build sequentially.
func NewService(revisions storage.RevisionStore, seriesStore storage.SeriesStore, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{revisions: revisions, series: seriesStore, workers: workers}
}

// BuildTitle loads the stored revisions of title, computes its monthly
// series and stores it.
func (s *Service) BuildTitle(ctx context.Context, title string) (*series.Series, error) {
	records, err := s.revisions.LoadRevisions(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("load revisions for %q: %w", title, err)
	}

	h, stats, err := history.FromRecords(title, records)
	if err != nil {
		return nil, fmt.Errorf("parse revisions for %q: %w", title, err)
	}
	if stats.CommentsDefaulted > 0 {
		slog.Debug("[Builder] Defaulted missing comments",
			"title", title,
			"count", stats.CommentsDefaulted)
	}

	ser, err := series.Monthly(h)
	if err != nil {
		return nil, fmt.Errorf("build series for %q: %w", title, err)
	}

	if err := s.series.SaveSeries(ctx, ser); err != nil {
		return nil, fmt.Errorf("save series for %q: %w", title, err)
	}
	return ser, nil
}

// BuildGroups builds every title of gs through a bounded worker pool.
// A failing title does not stop the others; all failures are joined into
// the returned error.
func (s *Service) BuildGroups(ctx context.Context, gs []groups.Group) (Summary, error) {
	var (
		mu   sync.Mutex
		sum  Summary
		errs []error
	)

	start := time.Now()
	grp := errgroup.Group{}
	grp.SetLimit(s.workers)

	for _, t := range groups.Titles(gs) {
		if ctx.Err() != nil {
			break
		}

		grp.Go(func() error {
			ser, err := s.BuildTitle(ctx, t)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				sum.Failed++
				errs = append(errs, err)
				slog.Warn("[Builder] Failed to build title", "title", t, "error", err)
				return nil
			}
			sum.Built++
			slog.Info("[Builder] Stored monthly series", "title", t, "months", len(ser.Points))
			return nil
		})
	}
	_ = grp.Wait()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	slog.Info("[Builder] Run complete",
		"built", sum.Built,
		"failed", sum.Failed,
		"workers", s.workers,
		"elapsed", time.Since(start))
	return sum, errors.Join(errs...)
}
