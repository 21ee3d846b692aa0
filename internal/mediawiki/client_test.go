package mediawiki

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	userAgent string
	params    map[string]string
}

// fakeWiki serves canned bodies in order and records the requests it saw.
type fakeWiki struct {
	mu       sync.Mutex
	bodies   []string
	status   int
	requests []recordedRequest
}

func (f *fakeWiki) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	params := map[string]string{}
	for key := range r.URL.Query() {
		params[key] = r.URL.Query().Get(key)
	}
	f.requests = append(f.requests, recordedRequest{userAgent: r.UserAgent(), params: params})

	if f.status != 0 {
		w.WriteHeader(f.status)
		return
	}

	idx := len(f.requests) - 1
	if idx >= len(f.bodies) {
		http.Error(w, "no more pages", http.StatusGone)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, f.bodies[idx])
}

func newTestClient(t *testing.T, wiki *fakeWiki) *Client {
	t.Helper()
	srv := httptest.NewServer(wiki)
	t.Cleanup(srv.Close)

	client, err := NewClient(ClientConfig{APIURL: srv.URL + "/w/api.php", UserAgent: "groan-test/0.1", PageLimit: 2})
	require.NoError(t, err)
	return client
}

const (
	firstPage = `{
		"continue": {"rvcontinue": "20200215000000|42", "continue": "||"},
		"query": {"pages": [{"pageid": 1, "ns": 0, "title": "Ada Lovelace", "revisions": [
			{"size": 300, "timestamp": "2020-02-15T00:00:00Z", "comment": "expand"},
			{"size": 100, "timestamp": "2020-01-01T00:00:00Z", "comment": "create"}
		]}]}
	}`
	lastPage = `{
		"batchcomplete": true,
		"query": {"pages": [{"pageid": 1, "ns": 0, "title": "Ada Lovelace", "revisions": [
			{"size": 50, "timestamp": "2019-12-01T00:00:00Z", "commenthidden": true}
		]}]}
	}`
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(ClientConfig{})
	require.NoError(t, err)
	require.Equal(t, DefaultAPIURL, client.baseURL.String())
	require.Equal(t, DefaultUserAgent, client.userAgent)
	require.Equal(t, DefaultPageLimit, client.pageLimit)
	require.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(ClientConfig{APIURL: "not a url"})
	require.Error(t, err)

	_, err = NewClient(ClientConfig{APIURL: "://bad"})
	require.Error(t, err)
}

func TestQueryRevisions_FirstPageParams(t *testing.T) {
	wiki := &fakeWiki{bodies: []string{firstPage}}
	client := newTestClient(t, wiki)

	page, next, err := client.QueryRevisions(context.Background(), "Ada Lovelace", nil)
	require.NoError(t, err)
	require.Len(t, page.Revisions, 2)
	require.Equal(t, map[string]string{"rvcontinue": "20200215000000|42", "continue": "||"}, next)

	require.Len(t, wiki.requests, 1)
	req := wiki.requests[0]
	require.Equal(t, "groan-test/0.1", req.userAgent)
	require.Equal(t, map[string]string{
		"action":        "query",
		"format":        "json",
		"formatversion": "2",
		"prop":          "revisions",
		"rvprop":        "size|timestamp|comment",
		"rvlimit":       "2",
		"titles":        "Ada_Lovelace",
	}, req.params)
}

func TestQueryRevisions_SendsContinuationBack(t *testing.T) {
	wiki := &fakeWiki{bodies: []string{lastPage}}
	client := newTestClient(t, wiki)

	cont := map[string]string{"rvcontinue": "20200215000000|42", "continue": "||"}
	_, next, err := client.QueryRevisions(context.Background(), "Ada Lovelace", cont)
	require.NoError(t, err)
	require.Empty(t, next)

	params := wiki.requests[0].params
	require.Equal(t, "20200215000000|42", params["rvcontinue"])
	require.Equal(t, "||", params["continue"])
}

func TestQueryRevisions_HiddenCommentDecodes(t *testing.T) {
	wiki := &fakeWiki{bodies: []string{lastPage}}
	client := newTestClient(t, wiki)

	page, _, err := client.QueryRevisions(context.Background(), "Ada Lovelace", nil)
	require.NoError(t, err)
	require.Nil(t, page.Revisions[0].Comment)
	require.True(t, page.Revisions[0].CommentHidden)
}

func TestQueryRevisions_ProtocolViolations(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		malformed bool
	}{
		{name: "invalid json", body: `{"query":`, malformed: true},
		{name: "missing query", body: `{"batchcomplete": true}`, malformed: true},
		{name: "missing page", body: `{"query":{"pages":[{"ns":0,"title":"Nope","missing":true}]}}`, malformed: true},
		{name: "invalid page", body: `{"query":{"pages":[{"title":"<>","invalid":true}]}}`, malformed: true},
		{name: "no revisions", body: `{"query":{"pages":[{"pageid":1,"title":"Ada"}]}}`, malformed: true},
		{name: "missing timestamp", body: `{"query":{"pages":[{"pageid":1,"title":"Ada","revisions":[{"size":1}]}]}}`, malformed: true},
		{name: "two pages", body: `{"query":{"pages":[{"pageid":1,"title":"A","revisions":[]},{"pageid":2,"title":"B","revisions":[]}]}}`},
		{name: "no pages", body: `{"query":{"pages":[]}}`},
		{name: "api error", body: `{"error":{"code":"badvalue","info":"Unrecognized value"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, &fakeWiki{bodies: []string{tt.body}})

			_, _, err := client.QueryRevisions(context.Background(), "Ada", nil)
			require.ErrorIs(t, err, ErrProtocolViolation)
			if tt.malformed {
				require.ErrorIs(t, err, ErrMalformedResponse)
			}
		})
	}
}

func TestQueryRevisions_UnexpectedStatusIsNotProtocolViolation(t *testing.T) {
	client := newTestClient(t, &fakeWiki{status: http.StatusServiceUnavailable})

	_, _, err := client.QueryRevisions(context.Background(), "Ada", nil)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.NotErrorIs(t, err, ErrProtocolViolation)
	require.Contains(t, err.Error(), "503")
}

func TestQueryRevisions_CanceledContext(t *testing.T) {
	client := newTestClient(t, &fakeWiki{bodies: []string{firstPage}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := client.QueryRevisions(ctx, "Ada", nil)
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrProtocolViolation)
}
