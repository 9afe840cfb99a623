// Package bfs provides breadth-first search over a linked core.Store,
// returning reference-count distances, parent links, and visit order.
//
// BFS explores entries in increasing distance from a start entry,
// with optional hooks, depth limiting, direction and neighbor filtering.
package bfs

import (
	"context"
	"fmt"

	"github.com/katalvlaran/cardbook/core"
)

// queueItem pairs an entry ID with its BFS depth.
type queueItem struct {
	id    string
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	store   *core.Store
	opts    BFSOptions
	ctx     context.Context
	queue   []queueItem
	visited map[string]bool
	res     *BFSResult
}

// BFS runs breadth-first search on s starting from startID,
// applying any number of functional Options.
// Returns ErrStoreNil, ErrStoreNotLinked or ErrStartVertexNotFound for
// invalid input, ErrOptionViolation for bad options, or any user-supplied
// hook error.
func BFS(s *core.Store, startID string, opts ...Option) (*BFSResult, error) {
	if s == nil {
		return nil, ErrStoreNil
	}
	// Build options and catch any invalid ones immediately
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if !s.Linked() {
		return nil, ErrStoreNotLinked
	}
	if !s.Has(startID) {
		return nil, fmt.Errorf("%w: %q", ErrStartVertexNotFound, startID)
	}

	n := s.Len()
	w := &walker{
		store:   s,
		opts:    o,
		ctx:     o.Ctx,
		queue:   make([]queueItem, 0, n),
		visited: make(map[string]bool, n),
		res: &BFSResult{
			Order:  make([]string, 0, n),
			Depth:  make(map[string]int, n),
			Parent: make(map[string]string, n),
		},
	}

	w.enqueue(startID, 0, "")

	return w.res, w.loop()
}

// enqueue marks id visited at depth d, records its parent and adds it to the queue.
func (w *walker) enqueue(id string, d int, parent string) {
	w.visited[id] = true
	w.res.Depth[id] = d
	if parent != "" {
		w.res.Parent[id] = parent
	}
	w.queue = append(w.queue, queueItem{id: id, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]

		w.res.Order = append(w.res.Order, item.id)
		if err := w.opts.OnVisit(item.id, item.depth); err != nil {
			return fmt.Errorf("bfs: OnVisit error at %q: %w", item.id, err)
		}
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueNeighbors applies direction, filtering and MaxDepth, and enqueues
// each unseen neighbor.
func (w *walker) enqueueNeighbors(item queueItem) error {
	nextDepth := item.depth + 1
	if w.opts.MaxDepth > 0 && nextDepth > w.opts.MaxDepth {
		return nil
	}
	neighbors, err := w.neighbors(item.id)
	if err != nil {
		return err
	}
	for _, nbr := range neighbors {
		if !w.opts.FilterNeighbor(item.id, nbr) {
			continue
		}
		if !w.visited[nbr] {
			w.enqueue(nbr, nextDepth, item.id)
		}
	}

	return nil
}

// neighbors lists the adjacent IDs of id for the configured direction,
// deduplicated, in the order core.Store.Neighbors uses.
func (w *walker) neighbors(id string) ([]string, error) {
	if w.opts.Direction == Both {
		return w.store.Neighbors(id)
	}
	e, err := w.store.Get(id)
	if err != nil {
		return nil, err
	}
	side := e.References
	if w.opts.Direction == Dependents {
		side = e.ReferencedBy
	}
	out := make([]string, 0, len(side))
	seen := make(map[string]bool, len(side))
	for _, r := range side {
		if !seen[r.ID] {
			seen[r.ID] = true
			out = append(out, r.ID)
		}
	}

	return out, nil
}
