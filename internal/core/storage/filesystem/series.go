package filesystem

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/groan-lab/groan/internal/core/series"
	"github.com/groan-lab/groan/internal/core/storage"
)

// SeriesRepository implements storage.SeriesStore with one text file per title,
// one YEAR-MONTH,SIZE line per month.
type SeriesRepository struct {
	root    string
	locator storage.Locator
}

// NewSeriesRepository stores series as dir/{normalized_title}.csv.
func NewSeriesRepository(dir string) *SeriesRepository {
	return &SeriesRepository{
		root:    dir,
		locator: PathLocator{Dir: dir, Ext: ".csv"},
	}
}

// NewSeriesRepositoryWithLocator stores series wherever locator points.
func NewSeriesRepositoryWithLocator(locator storage.Locator) *SeriesRepository {
	return &SeriesRepository{locator: locator}
}

// SaveSeries writes the series file for s.Title, rounding each month.
func (r *SeriesRepository) SaveSeries(_ context.Context, s *series.Series) error {
	var buf bytes.Buffer
	for _, line := range s.Rounded() {
		buf.WriteString(series.FormatLine(line))
		buf.WriteByte('\n')
	}

	path := r.locator.Locate(s.Title)
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write series for %q: %w", s.Title, err)
	}

	slog.Debug("[FileSystem] Saved series", "title", s.Title, "path", path, "months", len(s.Points))
	return nil
}

// LoadSeries reads and parses the series file of title.
func (r *SeriesRepository) LoadSeries(_ context.Context, title string) ([]series.Rounded, error) {
	path := r.locator.Locate(title)
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", title, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open series for %q: %w", title, err)
	}
	defer f.Close()

	out := []series.Rounded{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		point, err := series.ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		out = append(out, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read series for %q: %w", title, err)
	}
	return out, nil
}

// Ping checks that the root directory is reachable, when one is known.
func (r *SeriesRepository) Ping(_ context.Context) error {
	return pingDir(r.root)
}
