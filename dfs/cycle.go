// Package dfs implements cycle reporting for the reference graph.
// DetectCycles walks the whole forest and records the cycle closed by every
// back edge it meets, instead of stopping at the first one as
// TopologicalSort does. Each cycle is canonicalized to its lexicographically
// minimal rotation (Booth's algorithm) so the same loop found from
// different roots is listed once. The final list is sorted for deterministic
// output.
//
// Complexity:
//
//   - Time:   O(V + E log d + C·L)   (C=#cycles, L=avg cycle length)
//   - Memory: O(V + L_max)
package dfs

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/cardbook/core"
)

// DetectCycles inspects s for cycles closed by DFS back edges.
// Returns (true, cycles, nil) if any are found, (false, nil, nil) otherwise.
// Each cycle is closed: [a b c a].
func DetectCycles(s *core.Store) (bool, [][]string, error) {
	// 1) Nil store is treated as cycle-free
	if s == nil {
		return false, nil, nil
	}

	// 2) Forest walk recording every back edge
	seen := make(map[string]struct{}) // canonical signatures
	var cycles [][]string
	_, err := DFS(s, "",
		WithFullTraversal(),
		WithOnBackEdge(func(path []string, to string) error {
			recordCycle(closeCycle(path, to), seen, &cycles)
			return nil
		}),
	)
	if err != nil {
		return false, nil, fmt.Errorf("dfs: DetectCycles: %w", err)
	}

	// 3) Sort by signature for deterministic output
	sort.Slice(cycles, func(i, j int) bool {
		return JoinSig(cycles[i]) < JoinSig(cycles[j])
	})

	if len(cycles) == 0 {
		return false, nil, nil
	}

	return true, cycles, nil
}

// recordCycle canonicalizes the closed cycle seq and appends it to cycles
// unless its signature was seen before.
func recordCycle(seq []string, seen map[string]struct{}, cycles *[][]string) {
	sig, canon := canonical(seq)
	if _, exists := seen[sig]; !exists {
		seen[sig] = struct{}{}
		*cycles = append(*cycles, canon)
	}
}

// canonical computes the minimal rotation of the closed cycle and its
// comma-joined signature. Direction is preserved: a→b→a and b→a→b are the
// same cycle, but a→b→c→a and a→c→b→a are not.
func canonical(cycle []string) (string, []string) {
	base := cycle[:len(cycle)-1] // drop the closing repeat
	rot := MinimalRotation(base)
	closed := append(append([]string(nil), rot...), rot[0])

	return JoinSig(closed), closed
}
