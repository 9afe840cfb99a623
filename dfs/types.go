// Package dfs defines types and options for depth-first traversal of the
// reference graph, including cancellation, pre-/post-order hooks, depth
// limiting, neighbor filtering, full-graph (forest) traversal and back-edge
// reporting.
package dfs

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// VertexState represents the DFS visitation state of an entry.
const (
	White = iota // White: the entry has not been visited yet.
	Gray         // Gray: the entry is on the work stack (in progress).
	Black        // Black: the entry and all its references have been emitted.
)

var (
	// ErrStoreNil is returned when a nil *core.Store is passed to DFS,
	// TopologicalSort, or DetectCycles.
	ErrStoreNil = errors.New("dfs: store is nil")

	// ErrStoreNotLinked is returned when traversal is attempted before
	// Store.Link resolved the tags.
	ErrStoreNotLinked = errors.New("dfs: store is not linked")

	// ErrStartVertexNotFound indicates that the specified start entry ID
	// does not exist in the store.
	ErrStartVertexNotFound = errors.New("dfs: start entry not found")

	// ErrCycleDetected indicates that a cycle was encountered during
	// TopologicalSort. The concrete error is a *CycleError.
	ErrCycleDetected = errors.New("dfs: cycle detected")
)

// CycleError reports the entry that was reached twice while still in
// progress. Path runs from ID through the in-progress chain back to ID.
type CycleError struct {
	// ID is the repeated entry.
	ID string
	// Path is the closed cycle, e.g. [a b c a].
	Path []string
}

// Error implements error.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dfs: not a DAG: %q visited twice (cycle %s)", e.ID, strings.Join(e.Path, " → "))
}

// Unwrap lets errors.Is(err, ErrCycleDetected) match.
func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// Option configures optional behavior of DFS traversal.
// Use with DFS(s, startID, opts...).
type Option func(*DFSOptions)

// DFSOptions holds configurable parameters for DFS traversal.
// Complexity remains O(V+E log E) when filters and hooks are O(1); the log
// factor comes from ordering each entry's references by collection index.
type DFSOptions struct {
	// Ctx allows cancellation or timeouts; defaults to context.Background().
	// It is checked once per discovered entry.
	Ctx context.Context

	// OnVisit, if non-nil, is invoked when an entry is discovered (pre-order).
	// Returning an error aborts traversal with that error.
	OnVisit func(id string) error

	// OnBackEdge, if non-nil, is invoked when a reference leads to an entry
	// that is still in progress (Gray). path is the current work stack from
	// the root to the referencing entry; to is the Gray entry. Returning an
	// error aborts traversal.
	OnBackEdge func(path []string, to string) error

	// MaxDepth, if non-negative, limits descent to the given depth.
	// A depth of 0 visits only the start entry. Default is -1 (no limit).
	MaxDepth int

	// FilterNeighbor, if non-nil, is called for each reference before descent.
	// Return true to traverse into that entry, false to skip it.
	FilterNeighbor func(id string) bool

	// FullTraversal, if true, runs DFS from every unvisited entry in
	// collection order (forest traversal). Default is false.
	FullTraversal bool

	// SkippedNeighbors counts references skipped by FilterNeighbor.
	SkippedNeighbors int
}

// DefaultOptions returns a DFSOptions struct with:
//   - Background context
//   - No hooks
//   - No depth limit (MaxDepth = -1)
//   - No neighbor filtering
//   - Single-source traversal (FullTraversal = false)
func DefaultOptions() DFSOptions {
	return DFSOptions{
		Ctx:      context.Background(),
		MaxDepth: -1,
	}
}

// WithContext returns an Option that sets the Context for DFS traversal.
// Passing a nil context has no effect (Background is retained).
func WithContext(ctx context.Context) Option {
	return func(o *DFSOptions) {
		if ctx != nil {
			o.Ctx = ctx // use provided context for cancellation
		}
	}
}

// WithOnVisit returns an Option that installs fn as a pre-order hook.
func WithOnVisit(fn func(id string) error) Option {
	return func(o *DFSOptions) {
		o.OnVisit = fn
	}
}

// WithOnBackEdge returns an Option that installs fn as the back-edge hook.
func WithOnBackEdge(fn func(path []string, to string) error) Option {
	return func(o *DFSOptions) {
		o.OnBackEdge = fn
	}
}

// WithMaxDepth returns an Option that limits traversal depth to limit.
func WithMaxDepth(limit int) Option {
	return func(o *DFSOptions) {
		o.MaxDepth = limit
	}
}

// WithFilterNeighbor returns an Option that filters reference IDs.
// If fn(id) == false, that reference is skipped and counted in SkippedNeighbors.
func WithFilterNeighbor(fn func(id string) bool) Option {
	return func(o *DFSOptions) {
		o.FilterNeighbor = fn
	}
}

// WithFullTraversal returns an Option that enables full-graph traversal.
func WithFullTraversal() Option {
	return func(o *DFSOptions) {
		o.FullTraversal = true
	}
}

// DFSResult captures the outcome of a depth-first traversal.
type DFSResult struct {
	// Order records entry IDs in the sequence they finished (post-order).
	Order []string

	// Depth maps each entry ID to its distance (#edges) from its tree root.
	Depth map[string]int

	// Visited flags which entries were reached during the traversal.
	Visited map[string]bool

	// SkippedNeighbors reports how many references were skipped
	// due to FilterNeighbor returning false, aggregated across all trees.
	SkippedNeighbors int
}
