// Package dfs implements depth-first search (single-source and forest) on a
// linked core.Store. The walk uses an explicit work stack, so reference
// chains of any length are safe, and a three-state mark slice indexed by
// each entry's collection position.
//
// Key features:
//   - DFS(s, startID, opts...): traverse from a root or the full forest via WithFullTraversal
//   - Deterministic: roots in collection order, references of each entry in
//     ascending collection order (not tag order)
//   - Hooks: OnVisit (pre-order), OnBackEdge (Gray hit)
//   - Limits: MaxDepth, FilterNeighbor, SkippedNeighbors diagnostic count
//   - Cancellation via context.Context
//
// Complexity:
//
//   - Time:   O(V + E log d) where d is the largest out-degree (child ordering).
//   - Memory: O(V) for marks, stack and result maps.
//
// Errors:
//
//   - ErrStoreNil               if s is nil.
//   - ErrStoreNotLinked         if s.Link has not run.
//   - ErrStartVertexNotFound    if startID is missing.
//   - context.Canceled          if ctx is done.
//   - any error returned by OnVisit or OnBackEdge.
package dfs

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/cardbook/core"
)

// frame is one entry on the work stack.
type frame struct {
	idx      int   // collection index of the entry
	children []int // references as collection indices, ascending, deduplicated
	next     int   // next child to examine
	depth    int   // distance from the tree root
}

// walker encapsulates state during DFS.
type walker struct {
	store *core.Store
	opts  DFSOptions
	state []uint8 // White/Gray/Black per collection index
	stack []frame
	res   *DFSResult
}

// DFS performs depth-first search on store s. If opts include
// WithFullTraversal, it covers every entry, starting trees in collection
// order; otherwise it starts only from startID.
// Returns DFSResult or error if aborted by context or hook.
func DFS(s *core.Store, startID string, opts ...Option) (*DFSResult, error) {
	// 1. Validate input store
	if s == nil {
		return nil, ErrStoreNil
	}
	if !s.Linked() {
		return nil, ErrStoreNotLinked
	}

	// 2. Apply options
	dopts := DefaultOptions()
	for _, fn := range opts {
		fn(&dopts)
	}

	// 3. Single-source mode: verify startID
	start := s.Index(startID)
	if !dopts.FullTraversal && start < 0 {
		return nil, ErrStartVertexNotFound
	}

	// 4. Traverse: forest or single tree
	w := newWalker(s, dopts)
	if dopts.FullTraversal {
		for i := 0; i < s.Len(); i++ {
			if w.state[i] == White {
				if err := w.walk(i); err != nil {
					return w.res, err
				}
			}
		}
	} else if err := w.walk(start); err != nil {
		return w.res, err
	}

	// 5. Expose diagnostics
	w.res.SkippedNeighbors = w.opts.SkippedNeighbors

	return w.res, nil
}

// newWalker allocates marks and result maps sized to the store.
func newWalker(s *core.Store, opts DFSOptions) *walker {
	n := s.Len()

	return &walker{
		store: s,
		opts:  opts,
		state: make([]uint8, n),
		stack: make([]frame, 0, 16),
		res: &DFSResult{
			Order:   make([]string, 0, n),
			Depth:   make(map[string]int, n),
			Visited: make(map[string]bool, n),
		},
	}
}

// walk runs one DFS tree rooted at collection index root.
func (w *walker) walk(root int) error {
	if err := w.discover(root, 0); err != nil {
		return err
	}

	for len(w.stack) > 0 {
		top := &w.stack[len(w.stack)-1]

		// 1. Next unexplored reference of the top entry
		if top.next < len(top.children) {
			child := top.children[top.next]
			top.next++
			childID := w.store.At(child).ID

			// 1a. Neighbor filtering
			if w.opts.FilterNeighbor != nil && !w.opts.FilterNeighbor(childID) {
				w.opts.SkippedNeighbors++
				continue
			}

			switch w.state[child] {
			case White:
				// 1b. Depth limit: leave the child undiscovered
				if w.opts.MaxDepth >= 0 && top.depth+1 > w.opts.MaxDepth {
					continue
				}
				if err := w.discover(child, top.depth+1); err != nil {
					return err
				}
			case Gray:
				// 1c. Back edge: the child is still in progress
				if w.opts.OnBackEdge != nil {
					if err := w.opts.OnBackEdge(w.path(), childID); err != nil {
						w.res.Order = nil

						return err
					}
				}
			}
			// Black children are done; memoized, never re-emitted.
			continue
		}

		// 2. All references explored: post-order
		w.state[top.idx] = Black
		w.res.Order = append(w.res.Order, w.store.At(top.idx).ID)
		w.stack = w.stack[:len(w.stack)-1]
	}

	return nil
}

// discover marks idx Gray, runs the pre-order hook and pushes its frame.
func (w *walker) discover(idx, depth int) error {
	// 1. Cancellation check
	select {
	case <-w.opts.Ctx.Done():
		w.res.Order = nil

		return w.opts.Ctx.Err()
	default:
	}

	// 2. Mark in progress and record depth
	e := w.store.At(idx)
	w.state[idx] = Gray
	w.res.Visited[e.ID] = true
	w.res.Depth[e.ID] = depth

	// 3. Pre-order hook
	if w.opts.OnVisit != nil {
		if err := w.opts.OnVisit(e.ID); err != nil {
			w.res.Order = nil

			return fmt.Errorf("dfs: OnVisit hook for %q: %w", e.ID, err)
		}
	}

	// 4. Push with references in collection order
	w.stack = append(w.stack, frame{idx: idx, children: childrenOf(e), depth: depth})

	return nil
}

// path returns the IDs on the work stack, root first.
func (w *walker) path() []string {
	out := make([]string, len(w.stack))
	for i, f := range w.stack {
		out[i] = w.store.At(f.idx).ID
	}

	return out
}

// childrenOf returns e.References as ascending, distinct collection indices.
func childrenOf(e *core.Entry) []int {
	out := make([]int, 0, len(e.References))
	for _, r := range e.References {
		out = append(out, r.Index())
	}
	slices.Sort(out)

	return slices.Compact(out)
}
