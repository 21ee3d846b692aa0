package fetcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/groan-lab/groan/internal/core/history"
	"github.com/groan-lab/groan/internal/core/storage/filesystem"
	"github.com/groan-lab/groan/internal/core/storage/memory"
	"github.com/groan-lab/groan/internal/groups"
	"github.com/groan-lab/groan/internal/mediawiki"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Fetch(ctx context.Context, title string) ([]history.Record, error) {
	args := m.Called(ctx, title)
	if recs := args.Get(0); recs != nil {
		return recs.([]history.Record), args.Error(1)
	}
	return nil, args.Error(1)
}

type failingStore struct {
	*memory.Store
	hasErr error
}

func (f *failingStore) HasRevisions(context.Context, string) (bool, error) {
	return false, f.hasErr
}

func strPtr(s string) *string { return &s }

var adaRecords = []history.Record{
	{Size: 300, Timestamp: "2020-02-15T00:00:00Z", Comment: strPtr("expand")},
	{Size: 100, Timestamp: "2020-01-10T00:00:00Z", Comment: strPtr("create")},
}

func TestFetchTitle_StoresRecords(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("Fetch", ctx, "Ada Lovelace").Return(adaRecords, nil).Once()
	store := memory.NewStore()

	res, err := NewService(src, store).FetchTitle(ctx, "Ada Lovelace", false)
	require.NoError(t, err)
	require.Equal(t, Result{Title: "Ada Lovelace", Revisions: 2}, res)

	got, err := store.LoadRevisions(ctx, "Ada_Lovelace")
	require.NoError(t, err)
	require.Equal(t, adaRecords, got)
	src.AssertExpectations(t)
}

func TestFetchTitle_SkipsExisting(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("Fetch", ctx, "Ada Lovelace").Return(adaRecords, nil).Once()
	svc := NewService(src, filesystem.NewRevisionRepository(t.TempDir()))

	_, err := svc.FetchTitle(ctx, "Ada Lovelace", false)
	require.NoError(t, err)

	res, err := svc.FetchTitle(ctx, "Ada Lovelace", false)
	require.NoError(t, err)
	require.True(t, res.Skipped)

	// The source must only be hit once.
	src.AssertNumberOfCalls(t, "Fetch", 1)
}

func TestFetchTitle_ForceRefetches(t *testing.T) {
	ctx := context.Background()
	updated := append([]history.Record{{Size: 400, Timestamp: "2020-03-01T00:00:00Z"}}, adaRecords...)

	src := &mockSource{}
	src.On("Fetch", ctx, "Ada").Return(adaRecords, nil).Once()
	src.On("Fetch", ctx, "Ada").Return(updated, nil).Once()
	store := memory.NewStore()
	svc := NewService(src, store)

	_, err := svc.FetchTitle(ctx, "Ada", false)
	require.NoError(t, err)
	res, err := svc.FetchTitle(ctx, "Ada", true)
	require.NoError(t, err)
	require.False(t, res.Skipped)
	require.Equal(t, 3, res.Revisions)

	got, err := store.LoadRevisions(ctx, "Ada")
	require.NoError(t, err)
	require.Equal(t, updated, got)
	src.AssertExpectations(t)
}

func TestFetchTitle_SourceErrorStoresNothing(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("Fetch", ctx, "Ada").Return(nil, mediawiki.ErrMalformedResponse).Once()
	store := memory.NewStore()

	_, err := NewService(src, store).FetchTitle(ctx, "Ada", false)
	require.ErrorIs(t, err, mediawiki.ErrProtocolViolation)

	has, err := store.HasRevisions(ctx, "Ada")
	require.NoError(t, err)
	require.False(t, has)
}

func TestFetchTitle_StoreCheckError(t *testing.T) {
	src := &mockSource{}
	store := &failingStore{Store: memory.NewStore(), hasErr: errors.New("disk gone")}

	_, err := NewService(src, store).FetchTitle(context.Background(), "Ada", false)
	require.ErrorContains(t, err, "disk gone")
	src.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestFetchGroups_CountsOutcomes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.SaveRevisions(ctx, "Charles Babbage", adaRecords))

	transport := fmt.Errorf("get: %w", mediawiki.ErrUnexpectedStatus)
	src := &mockSource{}
	src.On("Fetch", ctx, "Ada Lovelace").Return(adaRecords, nil).Once()
	src.On("Fetch", ctx, "Augusta Ada King").Return(nil, transport).Once()
	src.On("Fetch", ctx, "Analytical Engine").Return(adaRecords, nil).Once()

	gs := []groups.Group{
		{"Ada Lovelace", "Augusta Ada King"},
		{"Charles Babbage"},
		{"Analytical Engine"},
	}
	sum, err := NewService(src, store).FetchGroups(ctx, gs, false)
	require.ErrorIs(t, err, mediawiki.ErrUnexpectedStatus)
	require.Equal(t, Summary{Fetched: 2, Skipped: 1, Failed: 1}, sum)
	src.AssertExpectations(t)
}

func TestFetchGroups_ProtocolViolationAborts(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("Fetch", ctx, "A").Return(nil, mediawiki.ErrMalformedResponse).Once()

	gs := []groups.Group{{"A", "B"}, {"C"}}
	sum, err := NewService(src, memory.NewStore()).FetchGroups(ctx, gs, false)
	require.ErrorIs(t, err, mediawiki.ErrProtocolViolation)
	require.Equal(t, Summary{Failed: 1}, sum)
	src.AssertNotCalled(t, "Fetch", ctx, "B")
	src.AssertNotCalled(t, "Fetch", ctx, "C")
}

func TestFetchGroups_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &mockSource{}

	_, err := NewService(src, memory.NewStore()).FetchGroups(ctx, []groups.Group{{"A"}}, false)
	require.ErrorIs(t, err, context.Canceled)
	src.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}
