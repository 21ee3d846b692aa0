package mediawiki

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/groan-lab/groan/internal/core/history"
	"golang.org/x/time/rate"
)

// PageQuerier fetches one page of revisions. Implemented by *Client.
type PageQuerier interface {
	QueryRevisions(ctx context.Context, title string, cont map[string]string) (*Page, map[string]string, error)
}

// NewThrottle returns a limiter allowing one request per delay.
// A non-positive delay disables throttling.
func NewThrottle(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

// Pager is a lazy, throttled iterator over the revision pages of one title.
// It can be restarted from any continuation returned by Token.
//
//	p := NewPager(client, limiter, "Ada Lovelace", nil)
//	for p.Next(ctx) {
//		use(p.Page())
//	}
//	if err := p.Err(); err != nil { ... }
type Pager struct {
	querier PageQuerier
	limiter *rate.Limiter
	title   string

	token   map[string]string
	started bool
	page    *Page
	pages   int
	err     error
}

// NewPager creates a pager for title. from is a continuation to resume at,
// or nil to start at the first page. A nil limiter disables throttling.
func NewPager(querier PageQuerier, limiter *rate.Limiter, title string, from map[string]string) *Pager {
	return &Pager{
		querier: querier,
		limiter: limiter,
		title:   title,
		token:   maps.Clone(from),
	}
}

// Next fetches the next page, waiting on the throttle first.
// It returns false when no continuation remains or on error.
func (p *Pager) Next(ctx context.Context) bool {
	if p.err != nil {
		return false
	}
	if p.started && len(p.token) == 0 {
		return false
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			p.err = fmt.Errorf("throttle: %w", err)
			return false
		}
	}

	page, next, err := p.querier.QueryRevisions(ctx, p.title, p.token)
	if err != nil {
		p.err = err
		return false
	}

	p.started = true
	p.page = page
	p.token = next
	p.pages++
	return true
}

// Page returns the page fetched by the last successful Next.
func (p *Pager) Page() *Page { return p.page }

// Err returns the error that stopped iteration, if any.
func (p *Pager) Err() error { return p.err }

// Pages returns the number of pages fetched so far.
func (p *Pager) Pages() int { return p.pages }

// Token returns the continuation for the page after the current one.
// Empty once the last page has been fetched.
func (p *Pager) Token() map[string]string { return maps.Clone(p.token) }

// RevisionSource fetches the complete revision list of a title, one throttled
// page at a time. The throttle is shared by every title it fetches.
type RevisionSource struct {
	querier PageQuerier
	limiter *rate.Limiter
}

// NewRevisionSource creates a source spacing requests by requestDelay.
func NewRevisionSource(querier PageQuerier, requestDelay time.Duration) *RevisionSource {
	return &RevisionSource{
		querier: querier,
		limiter: NewThrottle(requestDelay),
	}
}

// Fetch paginates until no continuation remains and concatenates every page's
// revisions in the order received.
func (s *RevisionSource) Fetch(ctx context.Context, title string) ([]history.Record, error) {
	var records []history.Record

	p := NewPager(s.querier, s.limiter, title, nil)
	for p.Next(ctx) {
		records = append(records, p.Page().Revisions...)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	slog.Debug("[MediaWiki] Fetched all revisions", "title", title, "pages", p.Pages(), "revisions", len(records))
	return records, nil
}
