// Package dfs provides the linearization of the reference graph.
//
// TopologicalSort computes the page order of a card collection: every entry
// appears after all entries it (transitively) references, so a reader meets
// a concept's dependencies before the concept itself. The order is the DFS
// post-order of the forest walk, which makes it a pure function of the
// collection order and the tag declarations.
// If the graph contains a cycle, a *CycleError (ErrCycleDetected) is returned.
//
// Complexity:
//
//   - Time:   O(V + E log d)
//   - Memory: O(V)     (work stack and state slice)
package dfs

import (
	"context"

	"github.com/katalvlaran/cardbook/core"
)

// TopoOption configures optional behavior for TopologicalSort.
type TopoOption func(*topoOptions)

// topoOptions holds settings for TopologicalSort, currently only cancellation.
type topoOptions struct {
	ctx context.Context // allows cancellation; defaults to Background
}

// defaultTopoOptions returns the default options (Background context).
func defaultTopoOptions() topoOptions {
	return topoOptions{ctx: context.Background()}
}

// WithCancelContext returns a TopoOption that sets the cancellation context.
// Passing a nil context has no effect.
func WithCancelContext(ctx context.Context) TopoOption {
	return func(o *topoOptions) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// TopologicalSort returns all entries of s such that for every entry A and
// every B in A.References, B comes strictly before A.
//
// Roots are tried in collection order; each entry's references are visited
// in ascending collection order, regardless of tag order. Reaching an entry
// that is still in progress aborts with *CycleError naming it; no partial
// order is returned.
func TopologicalSort(s *core.Store, options ...TopoOption) ([]*core.Entry, error) {
	// 1. Validate store
	if s == nil {
		return nil, ErrStoreNil
	}

	// 2. Apply optional settings
	opts := defaultTopoOptions()
	for _, opt := range options {
		opt(&opts)
	}

	// 3. Forest walk that fails on the first back edge
	res, err := DFS(s, "",
		WithContext(opts.ctx),
		WithFullTraversal(),
		WithOnBackEdge(func(path []string, to string) error {
			return &CycleError{ID: to, Path: closeCycle(path, to)}
		}),
	)
	if err != nil {
		return nil, err
	}

	// 4. Map post-order IDs back to entries
	order := make([]*core.Entry, len(res.Order))
	for i, id := range res.Order {
		order[i] = s.At(s.Index(id))
	}

	return order, nil
}

// closeCycle cuts path at the first occurrence of to and closes the loop.
func closeCycle(path []string, to string) []string {
	idx := IndexOf(path, to)
	if idx < 0 {
		idx = 0
	}
	seq := append([]string(nil), path[idx:]...)

	return append(seq, to)
}
