package series

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rounded is a month with its average size rounded for output.
type Rounded struct {
	Month time.Time
	Size  int64
}

// Round rounds an average size to the nearest integer, ties to even.
func Round(size float64) int64 {
	return decimal.NewFromFloat(size).RoundBank(0).IntPart()
}

// Rounded returns the series with every size rounded for output.
func (s *Series) Rounded() []Rounded {
	out := make([]Rounded, len(s.Points))
	for i, p := range s.Points {
		out[i] = Rounded{Month: p.Month, Size: Round(p.Size)}
	}
	return out
}

// FormatLine renders one output line as YEAR-MONTH,SIZE with an unpadded month.
// Example: {2020-02-01, 203} → "2020-2,203"
func FormatLine(r Rounded) string {
	return fmt.Sprintf("%d-%d,%d", r.Month.Year(), int(r.Month.Month()), r.Size)
}

// ParseLine parses a line produced by FormatLine.
func ParseLine(line string) (Rounded, error) {
	datePart, sizePart, ok := strings.Cut(strings.TrimSpace(line), ",")
	if !ok {
		return Rounded{}, fmt.Errorf("invalid series line %q: missing size", line)
	}
	yearStr, monthStr, ok := strings.Cut(datePart, "-")
	if !ok {
		return Rounded{}, fmt.Errorf("invalid series line %q: missing month", line)
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return Rounded{}, fmt.Errorf("invalid series year %q: %w", yearStr, err)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return Rounded{}, fmt.Errorf("invalid series month %q", monthStr)
	}
	size, err := strconv.ParseInt(sizePart, 10, 64)
	if err != nil {
		return Rounded{}, fmt.Errorf("invalid series size %q: %w", sizePart, err)
	}

	return Rounded{
		Month: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Size:  size,
	}, nil
}
