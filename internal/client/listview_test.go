package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursework-api/pkg/listing"
)

type row struct{ ID string }

func page(ids ...string) listing.Result[row] {
	items := make([]row, 0, len(ids))
	for _, id := range ids {
		items = append(items, row{ID: id})
	}
	return listing.Result[row]{Items: items, TotalCount: len(ids), Page: 1, PageSize: 20, TotalPages: 1}
}

func TestDispatchUpdatesQueryAndShowsServerResult(t *testing.T) {
	var seen []listing.Query
	fetch := func(ctx context.Context, q listing.Query) (listing.Result[row], error) {
		seen = append(seen, q)
		return page("a", "b"), nil
	}
	v := NewListView[row](fetch, listing.NewQuery(20))

	require.NoError(t, v.Dispatch(context.Background(), listing.SetSearch{Search: "essay"}))

	st := v.State()
	require.Len(t, seen, 1)
	assert.Equal(t, "essay", seen[0].Filter.Search)
	assert.Equal(t, "essay", st.Query.Filter.Search)
	assert.False(t, st.Loading)
	assert.True(t, st.Loaded)
	assert.NoError(t, st.Err)
	assert.Len(t, st.Result.Items, 2)
	assert.Equal(t, uint64(1), st.RequestID)
}

func TestFailureKeepsPreviousResult(t *testing.T) {
	fail := false
	boom := errors.New("server unavailable")
	fetch := func(ctx context.Context, q listing.Query) (listing.Result[row], error) {
		if fail {
			return listing.Result[row]{}, boom
		}
		return page("a"), nil
	}
	v := NewListView[row](fetch, listing.NewQuery(20))
	require.NoError(t, v.Retry(context.Background()))

	fail = true
	err := v.Dispatch(context.Background(), listing.SetPage{Page: 2})
	require.ErrorIs(t, err, boom)

	st := v.State()
	assert.ErrorIs(t, st.Err, boom)
	assert.False(t, st.Loading)
	assert.Equal(t, 2, st.Query.Page)
	require.Len(t, st.Result.Items, 1)
	assert.Equal(t, "a", st.Result.Items[0].ID)

	fail = false
	require.NoError(t, v.Retry(context.Background()))
	assert.NoError(t, v.State().Err)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	releaseFirst := make(chan struct{})
	firstStarted := make(chan struct{})
	fetch := func(ctx context.Context, q listing.Query) (listing.Result[row], error) {
		if q.Filter.Search == "old" {
			close(firstStarted)
			// answer late and ignore cancellation
			<-releaseFirst
			return page("old-1"), nil
		}
		return page("new-1"), nil
	}
	v := NewListView[row](fetch, listing.NewQuery(20))

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		firstErr = v.Dispatch(context.Background(), listing.SetSearch{Search: "old"})
	}()
	<-firstStarted

	require.NoError(t, v.Dispatch(context.Background(), listing.SetSearch{Search: "new"}))
	close(releaseFirst)
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrSuperseded)
	st := v.State()
	require.Len(t, st.Result.Items, 1)
	assert.Equal(t, "new-1", st.Result.Items[0].ID)
	assert.Equal(t, "new", st.Query.Filter.Search)
	assert.Equal(t, uint64(2), st.RequestID)
	assert.False(t, st.Loading)
}

func TestNewerRequestCancelsInFlightFetch(t *testing.T) {
	started := make(chan struct{})
	fetch := func(ctx context.Context, q listing.Query) (listing.Result[row], error) {
		if q.Page == 1 {
			close(started)
			<-ctx.Done()
			return listing.Result[row]{}, ctx.Err()
		}
		return page("p2"), nil
	}
	v := NewListView[row](fetch, listing.NewQuery(20))

	done := make(chan error, 1)
	go func() { done <- v.Retry(context.Background()) }()
	<-started

	require.NoError(t, v.Dispatch(context.Background(), listing.SetPage{Page: 2}))
	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.NoError(t, v.State().Err)
}

func TestOnChangeReportsLoadingTransitions(t *testing.T) {
	var mu sync.Mutex
	var loading []bool
	fetch := func(ctx context.Context, q listing.Query) (listing.Result[row], error) {
		return page("a"), nil
	}
	v := NewListView[row](fetch, listing.NewQuery(20), OnChange(func(s State[row]) {
		mu.Lock()
		loading = append(loading, s.Loading)
		mu.Unlock()
	}))

	require.NoError(t, v.Retry(context.Background()))
	assert.Equal(t, []bool{true, false}, loading)
}
