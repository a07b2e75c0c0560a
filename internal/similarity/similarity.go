// Package similarity scores how alike two line sequences are and picks the
// next pair (or single candidate) for the iterative merge loop to consume
// (spec.md §4.6). It is pure value computation over a multiset of lines;
// see DESIGN.md for why that rules out a third-party dependency here.
package similarity

import (
	"cmp"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/differ"
)

// Score returns the similarity of a and b in [0, 1]: the size of their
// common line multiset divided by the larger sequence's length. Both
// empty scores 1; exactly one empty scores 0. Score is symmetric by
// construction (spec.md §4.6).
func Score(a, b core.LineSeq) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	counts := make(map[string]int, len(a))
	for _, line := range a {
		counts[line]++
	}
	var common int
	for _, line := range b {
		if counts[line] > 0 {
			counts[line]--
			common++
		}
	}

	denom := max(len(a), len(b))
	return float64(common) / float64(denom)
}

// Pair identifies two groups of a VersionSet by index, with the score
// between their representative content.
type Pair struct {
	IndexA, IndexB int
	Score          float64
}

// MostSimilarPair performs the O(K^2) pairwise scan spec.md §4.6 mandates,
// returning the highest-scoring pair of distinct groups in vs. Ties break
// by (smaller a_changed count from a diff of the pair, then lexicographic
// hash of the first group), per spec.md §4.6/§9. Returns
// core.ErrNotEnoughVersionsSentinel if vs has fewer than two groups.
func MostSimilarPair(vs core.VersionSet, lines func(core.FileGroup) core.LineSeq) (Pair, error) {
	if vs.Len() < 2 {
		return Pair{}, core.ErrNotEnoughVersionsSentinel
	}

	var best Pair
	var bestSet bool
	var bestAChanged int

	for i := 0; i < vs.Len(); i++ {
		for j := i + 1; j < vs.Len(); j++ {
			gi, gj := vs.Groups[i], vs.Groups[j]
			li, lj := lines(gi), lines(gj)
			score := Score(li, lj)

			aChanged, _ := differ.CountChanges(differ.Diff(li, lj))

			switch {
			case !bestSet, score > best.Score:
				best = Pair{IndexA: i, IndexB: j, Score: score}
				bestAChanged = aChanged
				bestSet = true
			case score == best.Score:
				if less := tieBreak(aChanged, gi.Hash, bestAChanged, vs.Groups[best.IndexA].Hash); less {
					best = Pair{IndexA: i, IndexB: j, Score: score}
					bestAChanged = aChanged
				}
			}
		}
	}
	return best, nil
}

// MostSimilarTo performs the O(K) scan comparing acc against every
// remaining group's representative content, returning the index of the
// most similar group (spec.md §4.6). Returns
// core.ErrNotEnoughVersionsSentinel if vs is empty.
func MostSimilarTo(acc core.LineSeq, vs core.VersionSet, lines func(core.FileGroup) core.LineSeq) (int, float64, error) {
	if vs.Len() == 0 {
		return 0, 0, core.ErrNotEnoughVersionsSentinel
	}

	best := -1
	var bestScore float64
	var bestAChanged int
	for i, g := range vs.Groups {
		candidate := lines(g)
		score := Score(acc, candidate)
		aChanged, _ := differ.CountChanges(differ.Diff(acc, candidate))

		switch {
		case best == -1, score > bestScore:
			best, bestScore, bestAChanged = i, score, aChanged
		case score == bestScore:
			if tieBreak(aChanged, g.Hash, bestAChanged, vs.Groups[best].Hash) {
				best, bestScore, bestAChanged = i, score, aChanged
			}
		}
	}
	return best, bestScore, nil
}

// tieBreak reports whether the candidate (aChanged, hash) sorts before the
// current best, by (smaller a_changed, then lexicographic hash).
func tieBreak(candidateAChanged int, candidateHash core.FileHash, bestAChanged int, bestHash core.FileHash) bool {
	if candidateAChanged != bestAChanged {
		return candidateAChanged < bestAChanged
	}
	return cmp.Less(candidateHash, bestHash)
}
