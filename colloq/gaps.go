package colloq

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/cardbook/core"
	"github.com/katalvlaran/cardbook/diag"
)

// Bucket is the gap analysis of one integer section.
type Bucket struct {
	// N is the integer part shared by every number in the bucket.
	N int
	// Step is the smallest difference between consecutive numbers.
	Step float64
	// Start and End are the first and last numbers, snapped to Step.
	Start, End float64
	// Missing are the absent values in [Start, End), rounded to 4 decimals.
	Missing []float64
	// Truncated is set when the span exceeds MaxSpan units; Missing is then empty.
	Truncated bool
}

// MaxSpan bounds the number of step units enumerated per bucket. Numbers
// that differ by far less than the authored precision would otherwise
// produce an enormous range.
const MaxSpan = 10000

// Report is the outcome of Gaps.
type Report struct {
	// Buckets holds sections with at least two distinct numbers, ascending.
	Buckets []Bucket
	// Total is the count of distinct numbers analysed.
	Total int
}

// Numbers returns the distinct colloquium numbers present on entries of s,
// sorted ascending.
func Numbers(s *core.Store) []float64 {
	if s == nil {
		return nil
	}
	set := make(map[float64]struct{})
	for _, e := range s.Entries() {
		for _, x := range e.Colloq {
			set[x] = struct{}{}
		}
	}
	out := make([]float64, 0, len(set))
	for x := range set {
		out = append(out, x)
	}
	sort.Float64s(out)

	return out
}

// Gaps infers, per integer section n >= 1 present in numbers, the numbering step and the
// values missing from the arithmetic sequence the section appears to follow.
//
// Implementation:
//   - Stage 1: Deduplicate and sort the input.
//   - Stage 2: Split the sorted numbers into runs sharing an integer part n >= 1;
//     skip runs of fewer than two (no step to infer). Only sections that
//     occur are visited, so one huge number costs nothing extra.
//   - Stage 3: step = min consecutive difference; rescale each number to
//     round(x/step) units; every unit in [first, last) not present is missing.
//
// Gaps never fails and never mutates its input.
func Gaps(numbers []float64) Report {
	// 1. Distinct, ascending
	total := dedupSorted(numbers)
	rep := Report{Total: len(total)}
	if len(total) == 0 {
		return rep
	}

	// 2. Integer sections that occur, ascending; total is sorted, so each
	// section is a contiguous run
	for lo := 0; lo < len(total); {
		n := int(total[lo])
		hi := lo + 1
		for hi < len(total) && int(total[hi]) == n {
			hi++
		}
		group := total[lo:hi]
		lo = hi
		if n < 1 || len(group) < 2 {
			continue
		}

		// 3. Step and rescale
		step := group[1] - group[0]
		for i := 2; i < len(group); i++ {
			if d := group[i] - group[i-1]; d < step {
				step = d
			}
		}
		units := make(map[int]struct{}, len(group))
		first := int(math.Round(group[0] / step))
		last := int(math.Round(group[len(group)-1] / step))
		for _, x := range group {
			units[int(math.Round(x/step))] = struct{}{}
		}

		b := Bucket{N: n, Step: step, Start: float64(first) * step, End: float64(last) * step}
		if last-first > MaxSpan {
			b.Truncated = true
			rep.Buckets = append(rep.Buckets, b)
			continue
		}
		for u := first; u < last; u++ {
			if _, ok := units[u]; !ok {
				b.Missing = append(b.Missing, round4(float64(u)*step))
			}
		}
		rep.Buckets = append(rep.Buckets, b)
	}

	return rep
}

// Diagnostics renders r as one diagnostic per bucket plus a total line.
// Buckets with holes are warnings, complete ones notices:
//
//	Colloq 1: 1 - 1.75, but missing [1.5]
//	Colloq total: 3
func (r Report) Diagnostics() diag.List {
	var out diag.List
	for _, b := range r.Buckets {
		sev := diag.Notice
		if len(b.Missing) > 0 || b.Truncated {
			sev = diag.Warning
		}
		if b.Truncated {
			out.Add(diag.Diagnostic{
				Kind:     diag.KindColloqGap,
				Severity: sev,
				Message: fmt.Sprintf("Colloq %d: %s - %s, step %s is too fine to list gaps",
					b.N, formatG(b.Start), formatG(b.End), formatG(b.Step)),
			})
			continue
		}
		out.Add(diag.Diagnostic{
			Kind:     diag.KindColloqGap,
			Severity: sev,
			Message: fmt.Sprintf("Colloq %d: %s - %s, but missing %s",
				b.N, formatG(b.Start), formatG(b.End), formatList(b.Missing)),
		})
	}
	out.Noticef(diag.KindColloqTotal, "Colloq total: %d", r.Total)

	return out
}

// dedupSorted returns a sorted copy of xs without repeats.
func dedupSorted(xs []float64) []float64 {
	out := append([]float64(nil), xs...)
	sort.Float64s(out)
	w := 0
	for i, x := range out {
		if i == 0 || x != out[w-1] {
			out[w] = x
			w++
		}
	}

	return out[:w]
}

// round4 rounds to 4 decimals, ties to even.
func round4(x float64) float64 {
	return math.RoundToEven(x*1e4) / 1e4
}

// formatG prints x with at most 4 significant digits.
func formatG(x float64) string {
	return strconv.FormatFloat(x, 'g', 4, 64)
}

func formatList(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
