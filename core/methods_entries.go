// File: methods_entries.go
// Role: Entry lifecycle & queries: Add/Has/Get/Index/At/Entries/Len.
//
// Determinism:
//   - Entries() and At() follow collection (insertion) order.
//
// Concurrency:
//   - None. A Store is populated by one goroutine and read-only after Link.
package core

import "fmt"

// Add appends e to the collection and records its position.
//
// Implementation:
//   - Stage 1: Validate the entry (nil, empty ID) and the store state (not linked).
//   - Stage 2: Reject a known ID with ErrDuplicateID.
//   - Stage 3: Append and index.
//
// Errors:
//   - ErrNilEntry, ErrEmptyID, ErrFrozen, ErrDuplicateID (wrapped with the ID).
//
// Complexity:
//   - Time O(1) amortized, Space O(1) amortized.
func (s *Store) Add(e *Entry) error {
	// 1) Input validation
	if e == nil {
		return ErrNilEntry
	}
	if e.ID == "" {
		return ErrEmptyID
	}
	if s.linked {
		return ErrFrozen
	}

	// 2) IDs are unique
	if _, ok := s.byID[e.ID]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, e.ID)
	}

	// 3) Append in collection order
	e.index = len(s.entries)
	s.byID[e.ID] = e.index
	s.entries = append(s.entries, e)

	return nil
}

// Has reports whether an entry with the given ID exists.
func (s *Store) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the entry with the given ID or ErrEntryNotFound.
func (s *Store) Get(id string) (*Entry, error) {
	pos, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, id)
	}

	return s.entries[pos], nil
}

// Index returns the collection position of id, or -1 when unknown.
// Linearization sorts children by this value.
func (s *Store) Index(id string) int {
	if pos, ok := s.byID[id]; ok {
		return pos
	}

	return -1
}

// At returns the entry at collection position i. It panics if i is out of range,
// like a slice index.
func (s *Store) At(i int) *Entry { return s.entries[i] }

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }

// Entries returns the entries in collection order. The slice is a copy; the
// entries are shared.
func (s *Store) Entries() []*Entry {
	out := make([]*Entry, len(s.entries))
	copy(out, s.entries)

	return out
}

// IDs returns entry IDs in collection order.
func (s *Store) IDs() []string {
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.ID
	}

	return out
}
