package mediawiki

import "github.com/groan-lab/groan/internal/core/history"

// APIError is the "error" object MediaWiki returns instead of a query result.
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

type Normalization struct {
	FromEncoded bool   `json:"fromencoded"`
	From        string `json:"from"`
	To          string `json:"to"`
}

// Page is one page entity of a revisions query (formatversion=2).
type Page struct {
	PageID    int              `json:"pageid"`
	NameSpace int              `json:"ns"`
	Title     string           `json:"title"`
	Missing   bool             `json:"missing"`
	Invalid   bool             `json:"invalid"`
	Revisions []history.Record `json:"revisions"`
}

type Query struct {
	Normalized []*Normalization `json:"normalized"`
	Pages      []*Page          `json:"pages"`
}

// RevisionsResponse is one page of a prop=revisions query.
// Continue carries every continuation parameter to send back (rvcontinue, continue).
type RevisionsResponse struct {
	BatchComplete bool              `json:"batchcomplete"`
	Continue      map[string]string `json:"continue"`
	Query         *Query            `json:"query"`
	Error         *APIError         `json:"error"`
}
