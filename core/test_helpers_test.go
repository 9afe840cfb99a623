// SPDX-License-Identifier: MIT
// Package core_test contains test helpers for cardbook/core.
//
// Purpose:
//   - Provide small, deterministic fixtures for core.Store.
//   - Keep assertions about graph symmetry in one place.

package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/cardbook/core"
)

// Common entry IDs used across core tests.
const (
	IDSet      = "set"
	IDFunction = "function"
	IDGroup    = "group"
	IDRing     = "ring"
	IDField    = "field"
	IDGhost    = "ghost"
)

// card builds a bodied entry tagging the given IDs.
func card(id string, tags ...string) *core.Entry {
	e := core.NewEntry(id, "Title of "+id).WithText("body of " + id)
	e.Tags = tags

	return e
}

// mustStore adds entries in order and fails the test on any error.
func mustStore(t testing.TB, entries ...*core.Entry) *core.Store {
	t.Helper()
	s := core.NewStore(core.WithCapacity(len(entries)))
	for _, e := range entries {
		require.NoError(t, s.Add(e))
	}

	return s
}

// ids maps entries to their IDs.
func ids(entries []*core.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}

	return out
}

// count returns how many times e appears in list.
func count(list []*core.Entry, e *core.Entry) int {
	n := 0
	for _, x := range list {
		if x == e {
			n++
		}
	}

	return n
}

// requireSymmetric asserts B ∈ A.References ⟺ A ∈ B.ReferencedBy, with multiplicity.
func requireSymmetric(t *testing.T, s *core.Store) {
	t.Helper()
	for _, a := range s.Entries() {
		for _, b := range a.References {
			require.Equal(t, count(a.References, b), count(b.ReferencedBy, a),
				"edge %s→%s is not mirrored", a.ID, b.ID)
		}
		for _, b := range a.ReferencedBy {
			require.Equal(t, count(a.ReferencedBy, b), count(b.References, a),
				"back-edge %s←%s is not mirrored", a.ID, b.ID)
		}
	}
}
