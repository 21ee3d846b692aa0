package history

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHistory_AverageSize_TwoRevisions(t *testing.T) {
	h := New("Example", []Revision{
		{Timestamp: day(2020, 1, 10), Size: 100},
		{Timestamp: day(2020, 2, 15), Size: 300},
	})

	jan, err := h.AverageSize(day(2020, 1, 1), day(2020, 2, 1))
	require.NoError(t, err)
	require.InDelta(t, 100.0, jan, 1e-9)

	// Feb 2020 has 29 days: size 100 for Feb 1..15 (14 days), 300 for Feb 15..Mar 1 (15 days).
	feb, err := h.AverageSize(day(2020, 2, 1), day(2020, 3, 1))
	require.NoError(t, err)
	require.InDelta(t, (14*100.0+15*300.0)/29, feb, 1e-9)
}

func TestHistory_AverageSize_SingleRevision(t *testing.T) {
	ts := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)
	h := New("Single", []Revision{{Timestamp: ts, Size: 42}})

	deltas := []time.Duration{
		time.Millisecond,
		time.Second,
		time.Hour,
		40 * 24 * time.Hour,
		3 * 365 * 24 * time.Hour,
	}
	for _, d := range deltas {
		t.Run(d.String(), func(t *testing.T) {
			got, err := h.AverageSize(ts, ts.Add(d))
			require.NoError(t, err)
			require.Equal(t, 42.0, got)
		})
	}

	t.Run("window opening before the revision", func(t *testing.T) {
		got, err := h.AverageSize(ts.Add(-24*time.Hour), ts.Add(24*time.Hour))
		require.NoError(t, err)
		require.Equal(t, 42.0, got)
	})

	t.Run("window entirely before the revision", func(t *testing.T) {
		_, err := h.AverageSize(ts.Add(-48*time.Hour), ts.Add(-24*time.Hour))
		require.ErrorIs(t, err, ErrEmptyRange)

		var rangeErr *RangeError
		require.ErrorAs(t, err, &rangeErr)
		require.Equal(t, "Single", rangeErr.Title)
	})

	t.Run("window ending exactly at the revision", func(t *testing.T) {
		_, err := h.AverageSize(ts.Add(-time.Hour), ts)
		require.ErrorIs(t, err, ErrEmptyRange)
	})
}

func TestHistory_AverageSize_Degenerate(t *testing.T) {
	h := sampleHistory()

	_, err := h.AverageSize(day(2020, 2, 1), day(2020, 2, 1))
	require.ErrorIs(t, err, ErrDegenerateRange)

	_, err = h.AverageSize(day(2020, 3, 1), day(2020, 2, 1))
	require.ErrorIs(t, err, ErrDegenerateRange)
}

func TestHistory_AverageSize_SubSecond(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	h := New("Fast", []Revision{
		{Timestamp: base, Size: 0},
		{Timestamp: base.Add(250 * time.Millisecond), Size: 1000},
	})

	got, err := h.AverageSize(base, base.Add(time.Second))
	require.NoError(t, err)
	require.InDelta(t, 750.0, got, 1e-9)
}

func TestHistory_WeightsSumToOne(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2015, 6, 3, 4, 5, 6, 0, time.UTC)

	revs := make([]Revision, 0, 200)
	ts := base
	for i := 0; i < 200; i++ {
		ts = ts.Add(time.Duration(rng.Int63n(int64(20*24*time.Hour))) + time.Second)
		revs = append(revs, Revision{Timestamp: ts, Size: rng.Int63n(50000)})
	}
	h := New("Random", revs)

	for i := 0; i < 100; i++ {
		start := base.Add(time.Duration(rng.Int63n(int64(ts.Sub(base)))))
		end := start.Add(time.Duration(rng.Int63n(int64(90*24*time.Hour))) + time.Minute)

		weights, err := h.Weights(start, end)
		if err != nil {
			require.ErrorIs(t, err, ErrEmptyRange)
			continue
		}

		var sum float64
		for _, w := range weights {
			require.GreaterOrEqual(t, w.Weight, 0.0)
			require.False(t, w.End.Before(w.Start))
			sum += w.Weight
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestHistory_Weights_Intervals(t *testing.T) {
	h := sampleHistory()

	weights, err := h.Weights(day(2020, 2, 1), day(2020, 3, 1))
	require.NoError(t, err)
	require.Len(t, weights, 2)

	require.Equal(t, day(2020, 2, 1), weights[0].Start)
	require.Equal(t, day(2020, 2, 15), weights[0].End)
	require.Equal(t, int64(100), weights[0].Size)

	require.Equal(t, day(2020, 2, 15), weights[1].Start)
	require.Equal(t, day(2020, 3, 1), weights[1].End)
	require.Equal(t, int64(300), weights[1].Size)
}
