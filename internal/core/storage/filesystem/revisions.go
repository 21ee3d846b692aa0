package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/storage"
)

// RevisionRepository implements storage.RevisionStore with one JSON file per title.
// Each file holds the revision list as an indented JSON array.
type RevisionRepository struct {
	root    string
	locator storage.Locator
}

// NewRevisionRepository stores revisions as dir/{normalized_title}.json.
func NewRevisionRepository(dir string) *RevisionRepository {
	return &RevisionRepository{
		root:    dir,
		locator: PathLocator{Dir: dir, Ext: ".json"},
	}
}

// NewRevisionRepositoryWithLocator stores revisions wherever locator points.
func NewRevisionRepositoryWithLocator(locator storage.Locator) *RevisionRepository {
	return &RevisionRepository{locator: locator}
}

// HasRevisions reports whether the title's file exists.
func (r *RevisionRepository) HasRevisions(_ context.Context, title string) (bool, error) {
	_, err := os.Stat(r.locator.Locate(title))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat revisions for %q: %w", title, err)
}

// SaveRevisions writes the title's file, replacing any previous content.
func (r *RevisionRepository) SaveRevisions(_ context.Context, title string, records []history.Record) error {
	if records == nil {
		records = []history.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal revisions: %w", err)
	}

	path := r.locator.Locate(title)
	if err := writeFileAtomic(path, append(data, '\n')); err != nil {
		return fmt.Errorf("write revisions for %q: %w", title, err)
	}

	slog.Debug("[FileSystem] Saved revisions", "title", title, "path", path, "count", len(records))
	return nil
}

// LoadRevisions reads the title's file.
func (r *RevisionRepository) LoadRevisions(_ context.Context, title string) ([]history.Record, error) {
	path := r.locator.Locate(title)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", title, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read revisions for %q: %w", title, err)
	}

	var records []history.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal revisions in %s: %w", path, err)
	}
	return records, nil
}

// Ping checks that the root directory is reachable, when one is known.
func (r *RevisionRepository) Ping(_ context.Context) error {
	return pingDir(r.root)
}
