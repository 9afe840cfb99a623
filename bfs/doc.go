// Package bfs provides breadth-first search over a linked core.Store,
// returning reference-count distances, parent links, and visit order.
//
// What
//
//   - Explore entries in non-decreasing distance (reference count) from a start entry.
//   - Returns a BFSResult containing:
//   - Order: visit sequence
//   - Depth: map from entry → distance from start
//   - Parent: map from entry → its predecessor in the BFS tree
//   - Follows tags (Prerequisites), back-references (Dependents) or both.
//   - Allows filtering of individual steps via WithFilterNeighbor.
//   - Honors MaxDepth limit (d>0) or explicit "no limit" (d==0).
//
// Why
//
//   - Focus a graph export on the neighborhood of one card.
//   - Answer "what do I need to read before X" (Prerequisites) and
//     "what relies on X" (Dependents) with the fewest hops.
//
// Determinism
//
//	Neighbors are taken in the order core.Store.Neighbors reports them
//	(back-references in collection order, then tags in declaration order),
//	so the visit sequence is fully reproducible.
//
// Complexity (V = entries, E = resolved references)
//
//   - Time:   O(V + E)
//   - Memory: O(V)       (for queue, Depth map, Parent map, visited set)
//
// Usage
//
//	res, err := bfs.BFS(store, "group",
//	    bfs.WithDirection(bfs.Prerequisites),
//	    bfs.WithMaxDepth(2),
//	)
//
// Errors
//
//   - ErrStoreNil             if the store pointer is nil.
//   - ErrStoreNotLinked       if Store.Link has not run.
//   - ErrStartVertexNotFound  if the start entry does not exist.
//   - ErrOptionViolation      if invalid Option (e.g. negative MaxDepth).
//   - Wrapped user-supplied hook errors from OnVisit.
package bfs
