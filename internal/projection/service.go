package projection

import (
	"context"
	"errors"
	"fmt"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/series"
	"github.com/groan-lab/groan/internal/core/storage"
	"github.com/groan-lab/groan/internal/groups"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid query")

// Service implements the read path over the revision and series stores.
type Service struct {
	revisions storage.RevisionStore
	series    storage.SeriesStore
	groups    []groups.Group
}

// NewService creates a new projection service.
func NewService(revisions storage.RevisionStore, seriesStore storage.SeriesStore, gs []groups.Group) *Service {
	return &Service{
		revisions: revisions,
		series:    seriesStore,
		groups:    gs,
	}
}

func (s *Service) Groups() GroupsResponse {
	out := make([][]string, len(s.groups))
	for i, g := range s.groups {
		out[i] = []string(g)
	}
	return GroupsResponse{Groups: out}
}

func (s *Service) loadHistory(ctx context.Context, title string) (*history.History, error) {
	records, err := s.revisions.LoadRevisions(ctx, title)
	if err != nil {
		return nil, err
	}
	h, _, err := history.FromRecords(title, records)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Revisions returns the stored revisions of title in ascending order.
// A zero window returns all of them; otherwise the result is the window's
// revisions including the carry-in revision before it.
func (s *Service) Revisions(ctx context.Context, title string, w WindowQuery) (*RevisionsResponse, error) {
	if w.Start.IsZero() != w.End.IsZero() {
		return nil, fmt.Errorf("%w: start and end must be given together", ErrInvalidQuery)
	}
	if !w.Start.IsZero() && !w.Start.Before(w.End) {
		return nil, fmt.Errorf("%w: start must be before end", ErrInvalidQuery)
	}

	h, err := s.loadHistory(ctx, title)
	if err != nil {
		return nil, err
	}

	revs := h.Revisions()
	if !w.Start.IsZero() {
		revs = h.RevisionsInRange(w.Start, w.End)
	}

	resp := &RevisionsResponse{
		Title:     title,
		Count:     len(revs),
		Revisions: make([]RevisionValue, len(revs)),
	}
	for i, rev := range revs {
		resp.Revisions[i] = RevisionValue{Timestamp: rev.Timestamp, Size: rev.Size, Comment: rev.Comment}
	}
	return resp, nil
}

// Series returns the stored monthly series of title.
func (s *Service) Series(ctx context.Context, title string) (*SeriesResponse, error) {
	points, err := s.series.LoadSeries(ctx, title)
	if err != nil {
		return nil, err
	}

	resp := &SeriesResponse{Title: title, Points: make([]SeriesPoint, len(points))}
	for i, p := range points {
		resp.Points[i] = SeriesPoint{Month: p.Month.Format("2006-01"), Size: p.Size}
	}
	return resp, nil
}

// Average computes the time-weighted average size of a title over an
// arbitrary window from its stored revisions.
func (s *Service) Average(ctx context.Context, req AverageQueryRequest) (*AverageResponse, error) {
	if !req.Start.Before(req.End) {
		return nil, fmt.Errorf("%w: start must be before end", ErrInvalidQuery)
	}

	h, err := s.loadHistory(ctx, req.Title)
	if err != nil {
		return nil, err
	}

	weights, err := h.Weights(req.Start, req.End)
	if err != nil {
		return nil, err
	}
	avg, err := h.AverageSize(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	resp := &AverageResponse{
		Title:         req.Title,
		Start:         req.Start,
		End:           req.End,
		AverageSize:   avg,
		RoundedSize:   series.Round(avg),
		Contributions: make([]Contribution, len(weights)),
	}
	for i, w := range weights {
		resp.Contributions[i] = Contribution{
			Timestamp: w.Timestamp,
			Size:      w.Size,
			From:      w.Start,
			To:        w.End,
			Weight:    w.Weight,
		}
	}
	return resp, nil
}
