package series

import (
	"fmt"
	"time"

	"github.com/groan-lab/groan/internal/core/history"
)

// Point is the unrounded average size for one month.
type Point struct {
	Month time.Time // first instant of the month, UTC
	Size  float64
}

// Series is the monthly average-size series of one title, ascending by month.
type Series struct {
	Title  string
	Points []Point
}

// MonthStart returns the first instant (UTC) of the month containing t.
// Example: MonthStart(2020-02-15T08:30:00-05:00) → 2020-02-01T00:00:00Z
func MonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonth returns the first instant of the month after the one starting at m.
// December rolls over to January of the next year.
func NextMonth(m time.Time) time.Time {
	year, month := m.Year(), m.Month()
	if month == time.December {
		return time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
}

// Monthly computes the time-weighted average size of every month from the month
// of the first revision up to the last month starting strictly before the last
// revision. A history whose last revision falls exactly on its first month
// start therefore yields no points.
func Monthly(h *history.History) (*Series, error) {
	first, ok := h.First()
	if !ok {
		return nil, fmt.Errorf("%s: %w", h.Title(), history.ErrEmptyHistory)
	}
	last, _ := h.Last()

	s := &Series{Title: h.Title()}
	for start := MonthStart(first.Timestamp); start.Before(last.Timestamp); {
		end := NextMonth(start)
		size, err := h.AverageSize(start, end)
		if err != nil {
			return nil, fmt.Errorf("average for %s: %w", start.Format("2006-01"), err)
		}
		s.Points = append(s.Points, Point{Month: start, Size: size})
		start = end
	}
	return s, nil
}
