package mediawiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/groan-lab/groan/internal/core/title"
)

const (
	DefaultAPIURL    = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent = "groan/1.0 (article size history; https://github.com/groan-lab/groan)"
	DefaultPageLimit = 500
	DefaultTimeout   = 30 * time.Second

	revisionProps = "size|timestamp|comment"
)

var (
	// ErrProtocolViolation marks upstream responses that break the query contract.
	// These are fatal for the whole run and never retried.
	ErrProtocolViolation = errors.New("upstream protocol violation")

	// ErrMalformedResponse is a protocol violation caused by an unreadable or
	// incomplete response body.
	ErrMalformedResponse = fmt.Errorf("%w: malformed response", ErrProtocolViolation)

	// ErrUnexpectedStatus is returned for non-200 HTTP responses.
	// It fails the current title only.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
)

// ClientConfig configures a Client. Zero fields take the package defaults.
type ClientConfig struct {
	APIURL     string
	UserAgent  string
	PageLimit  int
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client queries a MediaWiki-compatible api.php endpoint for revision metadata.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	pageLimit  int
}

// NewClient creates a Client for cfg.APIURL.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = DefaultPageLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", cfg.APIURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", cfg.APIURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:    u,
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		pageLimit:  cfg.PageLimit,
	}, nil
}

// revisionsURL builds the query URL for one page of title's revisions.
// Every key of cont is sent back verbatim.
func (c *Client) revisionsURL(t string, cont map[string]string) string {
	u := *c.baseURL
	params := u.Query()
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("prop", "revisions")
	params.Set("rvprop", revisionProps)
	params.Set("rvlimit", strconv.Itoa(c.pageLimit))
	params.Set("titles", title.Normalize(t))
	for key, val := range cont {
		params.Set(key, val)
	}
	u.RawQuery = params.Encode()
	return u.String()
}

// QueryRevisions fetches one page of revisions for title, resuming from cont
// (nil for the first page). It returns the single page entity and the
// continuation to send next, which is empty on the last page.
func (c *Client) QueryRevisions(ctx context.Context, t string, cont map[string]string) (*Page, map[string]string, error) {
	pageURL := c.revisionsURL(t, cont)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("query revisions for %q: %w", t, err)
	}
	defer resp.Body.Close()

	slog.Debug("[MediaWiki] Fetched revisions page",
		"title", t,
		"url", pageURL,
		"status", resp.StatusCode,
		"elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("query revisions for %q: %w: %d", t, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read revisions body for %q: %w", t, err)
	}

	page, next, err := decodeRevisions(body)
	if err != nil {
		return nil, nil, fmt.Errorf("query revisions for %q: %w", t, err)
	}
	return page, next, nil
}

// decodeRevisions validates one response body: exactly one page entity,
// present and with revisions.
func decodeRevisions(body []byte) (*Page, map[string]string, error) {
	var res RevisionsResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if res.Error != nil {
		return nil, nil, fmt.Errorf("%w: api error %s: %s", ErrProtocolViolation, res.Error.Code, res.Error.Info)
	}
	if res.Query == nil {
		return nil, nil, fmt.Errorf("%w: missing query", ErrMalformedResponse)
	}
	if len(res.Query.Pages) != 1 {
		return nil, nil, fmt.Errorf("%w: expected exactly one page, got %d", ErrProtocolViolation, len(res.Query.Pages))
	}

	page := res.Query.Pages[0]
	switch {
	case page == nil:
		return nil, nil, fmt.Errorf("%w: null page", ErrMalformedResponse)
	case page.Missing:
		return nil, nil, fmt.Errorf("%w: page %q is missing", ErrMalformedResponse, page.Title)
	case page.Invalid:
		return nil, nil, fmt.Errorf("%w: page %q is invalid", ErrMalformedResponse, page.Title)
	case len(page.Revisions) == 0:
		return nil, nil, fmt.Errorf("%w: page %q has no revisions", ErrMalformedResponse, page.Title)
	}

	for i, rec := range page.Revisions {
		if strings.TrimSpace(rec.Timestamp) == "" {
			return nil, nil, fmt.Errorf("%w: revision %d of %q has no timestamp", ErrMalformedResponse, i, page.Title)
		}
	}

	return page, res.Continue, nil
}
