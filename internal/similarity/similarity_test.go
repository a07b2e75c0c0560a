package similarity

import (
	"testing"

	"github.com/ktsu-dev/blastmerge/internal/core"
)

func repr(g core.FileGroup) core.LineSeq { return groupLines[g.Hash] }

var groupLines map[core.FileHash]core.LineSeq

func TestScoreSymmetricAndBounds(t *testing.T) {
	a := core.LineSeq{"a", "b", "c"}
	b := core.LineSeq{"a", "b", "X", "c"}

	if Score(a, b) != Score(b, a) {
		t.Errorf("Score not symmetric: %v vs %v", Score(a, b), Score(b, a))
	}
	if Score(a, a) != 1 {
		t.Errorf("Score(A,A) = %v, want 1", Score(a, a))
	}
	if Score(a, nil) != 0 {
		t.Errorf("Score(A, empty) = %v, want 0", Score(a, nil))
	}
	if Score(nil, nil) != 1 {
		t.Errorf("Score(empty, empty) = %v, want 1", Score(nil, nil))
	}
}

func TestMostSimilarPairPicksClosest(t *testing.T) {
	groupLines = map[core.FileHash]core.LineSeq{
		"hA": {"1", "2", "3"},
		"hB": {"1", "2", "3", "4"},
		"hC": {"1", "2", "3", "4", "5"},
	}
	vs := core.NewVersionSet([]core.FileGroup{
		{Hash: "hA", Paths: []string{"a"}},
		{Hash: "hB", Paths: []string{"b"}},
		{Hash: "hC", Paths: []string{"c"}},
	})

	pair, err := MostSimilarPair(vs, repr)
	if err != nil {
		t.Fatalf("MostSimilarPair() error: %v", err)
	}
	got := map[core.FileHash]bool{vs.Groups[pair.IndexA].Hash: true, vs.Groups[pair.IndexB].Hash: true}
	if !got["hB"] || !got["hC"] {
		t.Errorf("most similar pair = %v, want {hB, hC}", got)
	}
}

func TestMostSimilarPairNotEnoughVersions(t *testing.T) {
	vs := core.NewVersionSet([]core.FileGroup{{Hash: "hA", Paths: []string{"a"}}})
	_, err := MostSimilarPair(vs, repr)
	if err == nil {
		t.Fatal("expected error for K < 2")
	}
}

func TestMostSimilarToScansRemaining(t *testing.T) {
	groupLines = map[core.FileHash]core.LineSeq{
		"hA": {"1", "2", "3"},
		"hC": {"1", "2", "3", "4", "5"},
	}
	vs := core.NewVersionSet([]core.FileGroup{
		{Hash: "hA", Paths: []string{"a"}},
		{Hash: "hC", Paths: []string{"c"}},
	})
	acc := core.LineSeq{"1", "2", "3", "4"}

	idx, score, err := MostSimilarTo(acc, vs, repr)
	if err != nil {
		t.Fatalf("MostSimilarTo() error: %v", err)
	}
	if score <= 0 {
		t.Errorf("score = %v, want > 0", score)
	}
	_ = idx
}
