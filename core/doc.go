// Package core provides the in-memory model of a card collection: the
// authored entries, the synthesized colloquium questions, and the ordered
// Store that turns one-directional tag declarations into a bidirectional
// reference graph.
//
// The graph G = (V,E) built by Store.Link has:
//
//   - V: every Entry added to the Store, in collection (insertion) order
//   - E: one edge per resolved tag, A.References ∋ B ⟺ B.ReferencedBy ∋ A
//   - Missing tags reported as values (MissingTag), never as errors
//
// Why a dedicated Store instead of a generic graph?
//
//   - Collection order is part of the contract: it is the tie-breaker for
//     linearization and the order of ReferencedBy lists.
//   - Entries carry their own edge lists, so renderers walk pointers and
//     never look anything up by ID.
//   - Linking is single-shot; a linked Store is frozen and read-only.
//
// Core Methods:
//
//	// Entry lifecycle
//	Add(e *Entry) error              // O(1)
//	Has(id string) bool              // O(1)
//	Get(id string) (*Entry, error)   // O(1)
//	Index(id string) int             // O(1)
//	Entries() []*Entry               // O(V), collection order
//
//	// Graph
//	Link() ([]MissingTag, error)     // O(V + T)
//	Edges() []Edge                   // O(E)
//	Neighbors(id string) ([]string, error)
//
// Variants:
//
//	Node is implemented by *Entry (KindCard) and *Question (KindQuestion).
//	Questions are terminal: they point at their tips and are never tag targets.
//
// Duplicate IDs fail with ErrDuplicateID.
package core
