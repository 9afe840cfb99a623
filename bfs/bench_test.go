package bfs_test

import (
	"strconv"
	"testing"

	"github.com/katalvlaran/cardbook/bfs"
)

// BenchmarkBFS_Chain measures BFS on a chain of N cards, each tagging the previous one.
func BenchmarkBFS_Chain(b *testing.B) {
	const N = 10000
	cards := make([]card, N)
	cards[0] = c("v0")
	for i := 1; i < N; i++ {
		cards[i] = c("v"+strconv.Itoa(i), "v"+strconv.Itoa(i-1))
	}
	s := linked(b, cards...)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bfs.BFS(s, "v0")
	}
}

// BenchmarkBFS_BinaryTree runs BFS on a complete binary tree of 2^10-1 cards.
func BenchmarkBFS_BinaryTree(b *testing.B) {
	const depth = 10
	n := (1 << depth) - 1
	cards := make([]card, n)
	cards[0] = c("1")
	for i := 2; i <= n; i++ {
		cards[i-1] = c(strconv.Itoa(i), strconv.Itoa(i/2))
	}
	s := linked(b, cards...)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = bfs.BFS(s, "1", bfs.WithDirection(bfs.Dependents))
	}
}
