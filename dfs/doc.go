// Package dfs implements depth-first traversal, cycle reporting and
// topological linearization on a linked core.Store.
//
// What:
//
//   - DFS: explores as far as possible along each reference chain before
//     backtracking. Supports:
//   - Pre-order, post-order and back-edge hooks
//   - Cancellation via context.Context
//   - Depth limiting
//   - Neighbor filtering
//   - TopologicalSort: the page order of a card collection. Post-order of the
//     forest walk, so every entry follows everything it references. Fails
//     fast with *CycleError (ErrCycleDetected) naming the repeated entry.
//   - DetectCycles: lists every cycle closed by a back edge, canonicalized
//     and deduplicated, for diagnostics after TopologicalSort refused a graph.
//
// Why:
//   - Render dependencies before dependents
//   - Keep the page order bit-for-bit stable across runs
//   - Tell authors exactly which tags form a loop
//
// Determinism:
//
//	Trees start at entries in collection order; inside an entry, references
//	are visited in ascending collection order (not tag order). The walk uses
//	an explicit stack and a mark slice indexed by collection position, so
//	there is no recursion depth limit and no map iteration anywhere.
//
// Key Types & Constants:
//
//   - VertexState: White, Gray, Black (visitation markers)
//   - Option: functional options for DFS behavior
//   - DFSOptions: holds Context, hooks, MaxDepth, FilterNeighbor
//   - DFSResult: collects post-order, Depth and Visited maps
//   - CycleError: repeated entry ID and the closed cycle path
//
// Errors:
//
//   - ErrStoreNil             store pointer is nil
//   - ErrStoreNotLinked       Store.Link has not run
//   - ErrStartVertexNotFound  start entry ID not in store
//   - ErrCycleDetected        cycle discovered by TopologicalSort (*CycleError)
//   - context.Canceled        traversal canceled via context
//   - hook errors             propagated from OnVisit or OnBackEdge
package dfs
