// Package batch coalesces nested filtered-relation fetches. During one
// resolution pass, each parent row registers its (key, filter tree) pair
// with Load; Flush then issues one fetch per distinct filter tree and
// distributes the results back to each parent key.
package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/art1415926535/graphql-sqlfilter/internal/msgpack"
	"github.com/art1415926535/graphql-sqlfilter/metrics"
)

// ErrNotFlushed is returned by Thunk.Value before the loader has flushed.
var ErrNotFlushed = errors.New("batch: loader not flushed")

// Key is the canonical representation of a filter tree, usable as a map
// key. Structurally equal trees produce equal keys regardless of map
// iteration order.
type Key string

// TreeKey derives the canonical key for a filter tree value.
func TreeKey(filters any) (Key, error) {
	data, err := msgpack.Canonical(filters)
	if err != nil {
		return "", err
	}
	return Key(data), nil
}

// FetchFunc runs one coalesced fetch: given a filter tree and the parent
// keys that share it, it returns the related items grouped by parent key.
// Parents with no items may be omitted from the result map.
type FetchFunc[T any] func(ctx context.Context, filters any, parents []any) (map[any][]T, error)

// Loader collects (parent, filter) pairs and flushes them in one fetch per
// distinct filter tree. A Loader serves one resolution pass; create a new
// one per request.
type Loader[T any] struct {
	// Metrics enables instrumentation when non-nil. Set before first use.
	Metrics *metrics.Metrics

	mu     sync.Mutex
	fetch  FetchFunc[T]
	groups map[Key]*group[T]
}

type group[T any] struct {
	filters any
	order   []any
	seen    map[any]struct{}
	results map[any][]T
	err     error
	done    bool
}

// NewLoader creates a loader around the given fetch function.
func NewLoader[T any](fetch FetchFunc[T]) *Loader[T] {
	return &Loader[T]{
		fetch:  fetch,
		groups: make(map[Key]*group[T]),
	}
}

// Load registers a parent key for the given filter tree and returns a
// thunk whose value becomes available after Flush. Parent keys must be
// comparable (primary key values or tuples thereof as strings).
func (l *Loader[T]) Load(parent any, filters any) (*Thunk[T], error) {
	key, err := TreeKey(filters)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.groups[key]
	if !ok {
		g = &group[T]{filters: filters, seen: make(map[any]struct{})}
		l.groups[key] = g
	}
	if g.done {
		return nil, fmt.Errorf("batch: load after flush for the same filter tree")
	}
	if _, ok := g.seen[parent]; !ok {
		g.seen[parent] = struct{}{}
		g.order = append(g.order, parent)
	}
	return &Thunk[T]{g: g, parent: parent}, nil
}

// Flush runs one fetch per distinct filter tree collected so far. The
// first fetch error aborts the flush and is returned; thunks of flushed
// groups become usable, thunks of a failed group return the group error.
func (l *Loader[T]) Flush(ctx context.Context) error {
	l.mu.Lock()
	pending := make([]*group[T], 0, len(l.groups))
	for _, g := range l.groups {
		if !g.done {
			pending = append(pending, g)
		}
	}
	l.mu.Unlock()

	if l.Metrics != nil {
		l.Metrics.BatchFlushesTotal.Inc()
		l.Metrics.BatchGroupsPerFlush.Observe(float64(len(pending)))
	}

	for _, g := range pending {
		results, err := l.fetch(ctx, g.filters, g.order)

		l.mu.Lock()
		g.done = true
		g.results = results
		g.err = err
		l.mu.Unlock()

		if err != nil {
			return fmt.Errorf("batch: fetch failed: %w", err)
		}
	}
	return nil
}

// Thunk is a deferred per-parent result.
type Thunk[T any] struct {
	g      *group[T]
	parent any
}

// Value returns the items loaded for this thunk's parent key. It returns
// ErrNotFlushed before the loader has flushed, and the fetch error if the
// thunk's group failed.
func (t *Thunk[T]) Value() ([]T, error) {
	if !t.g.done {
		return nil, ErrNotFlushed
	}
	if t.g.err != nil {
		return nil, t.g.err
	}
	return t.g.results[t.parent], nil
}
