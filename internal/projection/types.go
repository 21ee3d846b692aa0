package projection

import (
	"time"
)

// WindowQuery is an optional [start, end) filter on revisions.
type WindowQuery struct {
	Start time.Time `form:"start" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" time_format:"2006-01-02T15:04:05Z07:00"`
}

// AverageQueryRequest holds the parameters of a live average query.
type AverageQueryRequest struct {
	Title string
	Start time.Time `form:"start" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	End   time.Time `form:"end" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

type GroupsResponse struct {
	Groups [][]string `json:"groups"`
}

type RevisionValue struct {
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
	Comment   string    `json:"comment"`
}

type RevisionsResponse struct {
	Title     string          `json:"title"`
	Count     int             `json:"count"`
	Revisions []RevisionValue `json:"revisions"`
}

type SeriesPoint struct {
	Month string `json:"month"` // YYYY-MM
	Size  int64  `json:"size"`
}

type SeriesResponse struct {
	Title  string        `json:"title"`
	Points []SeriesPoint `json:"points"`
}

// Contribution is one revision's weighted share of an average.
type Contribution struct {
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`
	Weight    float64   `json:"weight"`
}

type AverageResponse struct {
	Title         string         `json:"title"`
	Start         time.Time      `json:"start"`
	End           time.Time      `json:"end"`
	AverageSize   float64        `json:"average_size"`
	RoundedSize   int64          `json:"rounded_size"`
	Contributions []Contribution `json:"contributions"`
}
