package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/pkg/listing"
)

// ErrSuperseded is returned by a fetch whose response arrived after a newer request was issued.
var ErrSuperseded = errors.New("list request superseded by a newer one")

// Fetcher loads one page for a query.
type Fetcher[T any] func(ctx context.Context, q listing.Query) (listing.Result[T], error)

// State is what a list view displays.
type State[T any] struct {
	Query     listing.Query
	Result    listing.Result[T]
	Loading   bool
	Loaded    bool
	Err       error
	RequestID uint64
}

// ListView owns a query and shows whatever the server answered for the latest request.
// It never filters locally and never retries unless asked.
type ListView[T any] struct {
	fetch    Fetcher[T]
	onChange func(State[T])

	mu     sync.Mutex
	state  State[T]
	seq    uint64
	cancel context.CancelFunc
}

// ViewOption customises a ListView.
type ViewOption[T any] func(*ListView[T])

// OnChange registers a callback invoked with a snapshot after every state change.
func OnChange[T any](fn func(State[T])) ViewOption[T] {
	return func(v *ListView[T]) { v.onChange = fn }
}

// NewListView builds a view starting from initial. Nothing is fetched until Dispatch or Retry.
func NewListView[T any](fetch Fetcher[T], initial listing.Query, opts ...ViewOption[T]) *ListView[T] {
	v := &ListView[T]{fetch: fetch, state: State[T]{Query: initial.Normalize()}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewAssignmentView builds a ListView backed by c.ListAssignments.
func NewAssignmentView(c *Client, initial listing.Query, opts ...ViewOption[models.Assignment]) *ListView[models.Assignment] {
	return NewListView(c.ListAssignments, initial, opts...)
}

// NewSubmissionView builds a ListView backed by c.ListSubmissions with fixed options.
func NewSubmissionView(c *Client, initial listing.Query, sopts listing.SubmissionOptions, opts ...ViewOption[models.Submission]) *ListView[models.Submission] {
	fetch := func(ctx context.Context, q listing.Query) (listing.Result[models.Submission], error) {
		return c.ListSubmissions(ctx, q, sopts)
	}
	return NewListView(fetch, initial, opts...)
}

// Dispatch applies a to the query and fetches the new page.
func (v *ListView[T]) Dispatch(ctx context.Context, a listing.Action) error {
	v.mu.Lock()
	v.state.Query = v.state.Query.Update(a)
	id, fctx, q, snap := v.begin(ctx)
	v.mu.Unlock()

	v.notify(snap)
	return v.run(fctx, id, q)
}

// Retry re-issues the current query.
func (v *ListView[T]) Retry(ctx context.Context) error {
	v.mu.Lock()
	id, fctx, q, snap := v.begin(ctx)
	v.mu.Unlock()

	v.notify(snap)
	return v.run(fctx, id, q)
}

// State returns a snapshot of the view.
func (v *ListView[T]) State() State[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

// begin cancels the in-flight request and starts a new one. Callers hold mu.
func (v *ListView[T]) begin(ctx context.Context) (uint64, context.Context, listing.Query, State[T]) {
	if v.cancel != nil {
		v.cancel()
	}
	v.seq++
	fctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.state.Loading = true
	v.state.RequestID = v.seq
	return v.seq, fctx, v.state.Query, v.snapshot()
}

func (v *ListView[T]) run(ctx context.Context, id uint64, q listing.Query) error {
	res, err := v.fetch(ctx, q)

	v.mu.Lock()
	if id != v.seq {
		v.mu.Unlock()
		return ErrSuperseded
	}
	v.cancel()
	v.cancel = nil
	v.state.Loading = false
	if err != nil {
		// keep the previous result on screen
		v.state.Err = err
	} else {
		v.state.Err = nil
		v.state.Result = res
		v.state.Loaded = true
	}
	snap := v.snapshot()
	v.mu.Unlock()

	v.notify(snap)
	return err
}

func (v *ListView[T]) snapshot() State[T] {
	s := v.state
	s.Result.Items = slices.Clone(v.state.Result.Items)
	s.Query.Filter.Statuses = slices.Clone(v.state.Query.Filter.Statuses)
	return s
}

func (v *ListView[T]) notify(s State[T]) {
	if v.onChange != nil {
		v.onChange(s)
	}
}
