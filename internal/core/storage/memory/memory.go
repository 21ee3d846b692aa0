package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/series"
	"github.com/groan-lab/groan/internal/core/storage"
	"github.com/groan-lab/groan/internal/core/title"
)

// Store is an in-memory implementation of storage.RevisionStore and storage.SeriesStore.
// Useful for testing and development.
type Store struct {
	mu        sync.RWMutex
	revisions map[string][]history.Record
	series    map[string][]series.Rounded
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		revisions: make(map[string][]history.Record),
		series:    make(map[string][]series.Rounded),
	}
}

func (s *Store) HasRevisions(_ context.Context, t string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.revisions[title.Normalize(t)]
	return ok, nil
}

func (s *Store) SaveRevisions(_ context.Context, t string, records []history.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external modification
	s.revisions[title.Normalize(t)] = slices.Clone(records)
	return nil
}

func (s *Store) LoadRevisions(_ context.Context, t string) ([]history.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.revisions[title.Normalize(t)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", t, storage.ErrNotFound)
	}
	return slices.Clone(records), nil
}

func (s *Store) SaveSeries(_ context.Context, ser *series.Series) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series[title.Normalize(ser.Title)] = ser.Rounded()
	return nil
}

func (s *Store) LoadSeries(_ context.Context, t string) ([]series.Rounded, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	points, ok := s.series[title.Normalize(t)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", t, storage.ErrNotFound)
	}
	return slices.Clone(points), nil
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}
