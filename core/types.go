// SPDX-License-Identifier: MIT
//
// File: types.go
// Role: Entry, Question, Store, MissingTag, StoreOption and sentinel errors.
//
// Package core owns the records of one compilation run: the authored cards
// (Entry), the synthesized colloquium questions (Question), and the ordered
// Store that resolves tags into the bidirectional reference graph.
//
// Errors:
//
//	ErrNilEntry        - entry pointer is nil.
//	ErrEmptyID         - entry ID is the empty string.
//	ErrDuplicateID     - an entry with the same ID is already stored.
//	ErrEntryNotFound   - requested entry does not exist.
//	ErrAlreadyLinked   - Link was called a second time.
//	ErrFrozen          - Add was called after Link.
package core

import "errors"

// Sentinel errors for core store operations.
var (
	// ErrNilEntry indicates that a nil *Entry was passed to the store.
	ErrNilEntry = errors.New("core: entry is nil")

	// ErrEmptyID indicates that the provided Entry has an empty ID.
	ErrEmptyID = errors.New("core: entry ID is empty")

	// ErrDuplicateID indicates an entry ID was declared twice in one run.
	ErrDuplicateID = errors.New("core: duplicate entry ID")

	// ErrEntryNotFound indicates an operation referenced a non-existent entry.
	ErrEntryNotFound = errors.New("core: entry not found")

	// ErrAlreadyLinked indicates Link was invoked on an already linked store.
	ErrAlreadyLinked = errors.New("core: store already linked")

	// ErrFrozen indicates an attempt to add entries after the graph was linked.
	ErrFrozen = errors.New("core: store is linked; no more entries may be added")
)

// Entry is an authored card and a node of the reference graph.
//
// Tags are the IDs the entry declares a dependency on, in authored order
// (duplicates are kept). References and ReferencedBy are derived by
// Store.Link and must not be edited by callers.
type Entry struct {
	// ID is the unique, source-declared key.
	ID string

	// Title is the short display label.
	Title string

	// Text is the long-form body. It is meaningful only when Placeholder is false.
	Text string

	// Placeholder marks an entry declared without a body (work in progress).
	// It still participates in the graph but is not rendered on its own.
	Placeholder bool

	// Proof is an optional secondary body; empty means absent.
	Proof string

	// Source is an optional URL to supplementary material; empty means absent.
	Source string

	// Tags lists referenced entry IDs in declaration order.
	Tags []string

	// Colloq holds the colloquium numbers this entry belongs to.
	Colloq []float64

	// References holds the resolved targets of Tags, in tag declaration order.
	References []*Entry

	// ReferencedBy holds the entries whose tags resolve to this entry,
	// in the collection order of those entries.
	ReferencedBy []*Entry

	// index is the position in the owning Store; -1 when not stored.
	index int
}

// NewEntry returns an Entry with the given ID and title and no body.
// The result is a placeholder until Text is assigned through WithText.
func NewEntry(id, title string) *Entry {
	return &Entry{ID: id, Title: title, Placeholder: true, index: -1}
}

// WithText sets the body and clears the placeholder flag. It returns e
// so fixtures can be written inline.
func (e *Entry) WithText(text string) *Entry {
	e.Text = text
	e.Placeholder = false

	return e
}

// Index returns the entry's position in its Store, or -1 if not stored.
func (e *Entry) Index() int { return e.index }

// Question is a synthesized colloquium question. It is never a tag target,
// so it has no ReferencedBy, and it carries no proof or source link.
type Question struct {
	// Number is the two-decimal display form of Key/100 (e.g. "1.05").
	Number string

	// Key is section*100 + subindex; entries join the question by
	// rounding their colloq numbers to the same key.
	Key int

	// Text is the question prompt.
	Text string

	// Tips are the entries tagged with this question, in discovery order.
	Tips []*Entry
}

// MissingTag records a tag that resolved to no entry. It is a diagnostic
// value only and never enters the graph.
type MissingTag struct {
	// Tag is the unresolved identifier.
	Tag string

	// DeclaredBy lists the IDs of entries carrying the tag, in collection order.
	DeclaredBy []string
}

// Edge is one resolved tag, oriented from the referenced entry (From) to the
// entry that declared the tag (To), i.e. in reading order.
type Edge struct {
	// ID is From + EdgeSeparator + To.
	ID   string
	From string
	To   string
}

// EdgeSeparator joins endpoint IDs into an Edge.ID.
const EdgeSeparator = "___"

// StoreOption configures a Store before use.
type StoreOption func(s *Store)

// WithCapacity pre-sizes the store for n entries.
func WithCapacity(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.entries = make([]*Entry, 0, n)
			s.byID = make(map[string]int, n)
		}
	}
}

// Store is the ordered entry collection of one compilation run.
//
// Collection order is insertion order and is the tie-breaker for every
// deterministic traversal in this module. A Store is built and linked by a
// single goroutine; after Link it is read-only and safe to share.
type Store struct {
	entries []*Entry       // collection order
	byID    map[string]int // entry ID → position in entries
	linked  bool           // Link has run; entries are frozen
	missing []MissingTag   // result of Link
}

// NewStore creates an empty Store.
// Complexity: O(1) plus any WithCapacity allocation.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		entries: make([]*Entry, 0),
		byID:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}
