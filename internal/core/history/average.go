package history

import "time"

// WeightedRevision is one revision's share of a window.
// [Start, End) is the part of the window during which Size held.
type WeightedRevision struct {
	Revision
	Start  time.Time
	End    time.Time
	Weight float64 // (End-Start) / covered width of the window
}

// Weights computes the per-revision weights of the window [start, end).
//
// Integration begins at the later of start and the first revision in range,
// so a window that opens before the first-ever revision is averaged only over
// the part the history covers. Weights sum to 1.
func (h *History) Weights(start, end time.Time) ([]WeightedRevision, error) {
	revs := h.RevisionsInRange(start, end)
	if len(revs) == 0 {
		return nil, &RangeError{Title: h.title, Start: start, End: end, Err: ErrEmptyRange}
	}

	actualStart := later(start, revs[0].Timestamp)
	totalWidth := end.Sub(actualStart).Seconds()
	if totalWidth <= 0 {
		return nil, &RangeError{Title: h.title, Start: start, End: end, Err: ErrDegenerateRange}
	}

	out := make([]WeightedRevision, 0, len(revs))
	for i, rev := range revs {
		a := later(start, rev.Timestamp)
		b := end
		if i+1 < len(revs) {
			b = revs[i+1].Timestamp
		}
		out = append(out, WeightedRevision{
			Revision: rev,
			Start:    a,
			End:      b,
			Weight:   b.Sub(a).Seconds() / totalWidth,
		})
	}
	return out, nil
}

// AverageSize returns the time-weighted mean article size over [start, end).
// Fails with a *RangeError wrapping ErrEmptyRange when no revision is in range,
// or ErrDegenerateRange when the covered width is not positive.
func (h *History) AverageSize(start, end time.Time) (float64, error) {
	weights, err := h.Weights(start, end)
	if err != nil {
		return 0, err
	}

	var avg float64
	for _, w := range weights {
		avg += w.Weight * float64(w.Size)
	}
	return avg, nil
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
