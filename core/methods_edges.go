// File: methods_edges.go
// Role: Graph building (Link) and edge queries (Edges, Neighbors, Missing).
//
// Determinism:
//   - Link walks entries in collection order and tags in declaration order,
//     so References, ReferencedBy and the missing-tag list are reproducible.
//   - Edges() lists edges by referenced entry in collection order, then by
//     ReferencedBy order.
package core

// Link resolves every entry's Tags into bidirectional edges.
//
// Implementation:
//   - Stage 1: Refuse a second run (ErrAlreadyLinked) so edge lists never double.
//   - Stage 2: For each entry v (collection order) and tag t (declaration order):
//     known t → append v to t.ReferencedBy and t to v.References;
//     unknown t → remember t once, with every declaring entry.
//   - Stage 3: Freeze the store.
//
// Behavior highlights:
//   - A missing tag degrades to "no edge"; it never aborts the build and never
//     causes another entry to be skipped.
//   - Duplicate tags produce duplicate edges, exactly as declared, so that
//     B ∈ A.References ⟺ A ∈ B.ReferencedBy holds with multiplicity.
//
// Returns:
//   - []MissingTag: unresolved tags, deduplicated, in first-seen order.
//
// Complexity:
//   - Time O(V + T) where T = total tags, Space O(M) for M missing tags.
func (s *Store) Link() ([]MissingTag, error) {
	// 1) Single-shot
	if s.linked {
		return nil, ErrAlreadyLinked
	}

	// 2) Resolve tags
	missingAt := make(map[string]int) // tag → position in s.missing
	var v, target *Entry
	var tag string
	for _, v = range s.entries {
		for _, tag = range v.Tags {
			pos, ok := s.byID[tag]
			if !ok {
				if at, seen := missingAt[tag]; seen {
					s.missing[at].DeclaredBy = appendOnce(s.missing[at].DeclaredBy, v.ID)
				} else {
					missingAt[tag] = len(s.missing)
					s.missing = append(s.missing, MissingTag{Tag: tag, DeclaredBy: []string{v.ID}})
				}
				continue
			}
			target = s.entries[pos]
			target.ReferencedBy = append(target.ReferencedBy, v)
			v.References = append(v.References, target)
		}
	}

	// 3) Freeze
	s.linked = true

	return s.Missing(), nil
}

// Linked reports whether Link has run.
func (s *Store) Linked() bool { return s.linked }

// Missing returns a copy of the unresolved tags found by Link.
func (s *Store) Missing() []MissingTag {
	out := make([]MissingTag, len(s.missing))
	for i, m := range s.missing {
		out[i] = MissingTag{Tag: m.Tag, DeclaredBy: append([]string(nil), m.DeclaredBy...)}
	}

	return out
}

// Edges returns every distinct resolved edge, oriented from the referenced
// entry to the referencing one. Repeated tags yield a single Edge.
//
// Complexity: O(E).
func (s *Store) Edges() []Edge {
	out := make([]Edge, 0)
	seen := make(map[string]struct{})
	for _, from := range s.entries {
		for _, to := range from.ReferencedBy {
			id := from.ID + EdgeSeparator + to.ID
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, Edge{ID: id, From: from.ID, To: to.ID})
		}
	}

	return out
}

// Neighbors returns the IDs an entry is connected to in either direction:
// ReferencedBy first, then References, each deduplicated, preserving order.
// It returns ErrEntryNotFound for an unknown ID.
func (s *Store) Neighbors(id string) ([]string, error) {
	e, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(e.ReferencedBy)+len(e.References))
	for _, n := range e.ReferencedBy {
		out = appendOnce(out, n.ID)
	}
	for _, n := range e.References {
		out = appendOnce(out, n.ID)
	}

	return out, nil
}

// appendOnce appends id unless ids already contains it.
func appendOnce(ids []string, id string) []string {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}

	return append(ids, id)
}
