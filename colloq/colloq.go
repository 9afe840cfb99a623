// Package colloq groups cards into numbered colloquium questions and checks
// that the numbering of each question bucket has no holes.
//
// A colloquium number is a rational like 3.05: the integer part is the
// section, the fraction orders questions inside it. Questions are declared
// separately as a section → subindex → prompt table; card i joins question
// (section, subindex) when one of its numbers rounds to section*100+subindex.
package colloq

import (
	"fmt"
	"math"

	"github.com/katalvlaran/cardbook/core"
)

// Scale is the number of bucket keys per integer section (two decimals).
const Scale = 100

// Key returns the bucket key of a colloquium number: x rounded to the
// nearest 1/Scale, expressed in 1/Scale units. Exact ties round to even
// (0.125 → 12). Values authored with finer precision than 1/Scale can
// therefore merge into one bucket.
func Key(x float64) int {
	return int(math.RoundToEven(x * Scale))
}

// Item is one question prompt inside a section.
type Item struct {
	Index int
	Text  string
}

// Section is a numbered group of question prompts, in authored order.
type Section struct {
	Number int
	Items  []Item
}

// Table is the question configuration, sections in authored order.
type Table struct {
	Sections []Section
}

// Len returns the number of question prompts in t.
func (t Table) Len() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Items)
	}

	return n
}

// Number formats a bucket key as the question's display number ("1.05").
func Number(key int) string {
	return fmt.Sprintf("%.2f", float64(key)/Scale)
}

// Questions synthesizes one Question per prompt of t, in table order.
// Each question's Tips are the entries of s whose colloquium numbers include
// its key, in discovery order (collection order, then each entry's number
// order); an entry appears at most once per question.
//
// Complexity: O(V·c + Q) where c is the longest colloq list.
func Questions(t Table, s *core.Store) []*core.Question {
	// 1. Bucket entries by key
	tips := Buckets(s)

	// 2. One question per prompt
	out := make([]*core.Question, 0, t.Len())
	for _, sec := range t.Sections {
		for _, it := range sec.Items {
			key := sec.Number*Scale + it.Index
			out = append(out, &core.Question{
				Number: Number(key),
				Key:    key,
				Text:   it.Text,
				Tips:   tips[key],
			})
		}
	}

	return out
}

// Buckets maps every bucket key to the entries carrying it, in discovery
// order and without repeats.
func Buckets(s *core.Store) map[int][]*core.Entry {
	out := make(map[int][]*core.Entry)
	if s == nil {
		return out
	}
	for _, e := range s.Entries() {
		seen := make(map[int]struct{}, len(e.Colloq))
		for _, x := range e.Colloq {
			k := Key(x)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out[k] = append(out[k], e)
		}
	}

	return out
}
