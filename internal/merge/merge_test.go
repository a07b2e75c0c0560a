package merge

import (
	"testing"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/ports"
)

func choiceFunc(f func(core.Block, core.BlockContext, int) core.BlockChoice) ports.BlockChoicePort {
	return ports.BlockChoiceFunc(f)
}

func TestMergeIdentity(t *testing.T) {
	a := core.LineSeq{"a", "b", "c"}
	engine := New()
	result := engine.Merge(a, a, choiceFunc(func(core.Block, core.BlockContext, int) core.BlockChoice {
		t.Fatal("choose should not be called for merge(A, A, _)")
		return core.ChoiceCancel
	}))
	if result.Cancelled {
		t.Fatal("merge(A, A, _) cancelled")
	}
	if !result.Merged.Equal(a) {
		t.Errorf("merge(A, A, _) = %v, want %v", result.Merged, a)
	}
}

func TestMergeTakeAStrategy(t *testing.T) {
	a := core.LineSeq{"a", "b", "c"}
	b := core.LineSeq{"a", "X", "c"}
	engine := New()

	result := engine.Merge(a, b, choiceFunc(func(block core.Block, _ core.BlockContext, _ int) core.BlockChoice {
		switch block.Kind {
		case core.BlockReplace:
			return core.ChoiceUseA
		case core.BlockInsert:
			return core.ChoiceSkip
		case core.BlockDelete:
			return core.ChoiceKeep
		}
		return core.ChoiceCancel
	}))
	if !result.Merged.Equal(a) {
		t.Errorf("take-A merge = %v, want %v", result.Merged, a)
	}
}

func TestMergeTakeBStrategy(t *testing.T) {
	a := core.LineSeq{"a", "b", "c"}
	b := core.LineSeq{"a", "X", "c"}
	engine := New()

	result := engine.Merge(a, b, choiceFunc(func(block core.Block, _ core.BlockContext, _ int) core.BlockChoice {
		switch block.Kind {
		case core.BlockReplace:
			return core.ChoiceUseB
		case core.BlockInsert:
			return core.ChoiceInclude
		case core.BlockDelete:
			return core.ChoiceRemove
		}
		return core.ChoiceCancel
	}))
	if !result.Merged.Equal(b) {
		t.Errorf("take-B merge = %v, want %v", result.Merged, b)
	}
}

func TestMergeCancellation(t *testing.T) {
	a := core.LineSeq{"k=1"}
	b := core.LineSeq{"k=2"}
	engine := New()

	result := engine.Merge(a, b, choiceFunc(func(core.Block, core.BlockContext, int) core.BlockChoice {
		return core.ChoiceCancel
	}))
	if !result.Cancelled {
		t.Fatal("expected cancelled result")
	}
	if len(result.Merged) != 0 {
		t.Errorf("cancelled merge produced content: %v", result.Merged)
	}
}

func TestMergeWholeFastPaths(t *testing.T) {
	a := core.LineSeq{"a"}
	b := core.LineSeq{"b"}
	engine := New()

	if r := engine.MergeWhole(a, b, TakeA, nil); !r.Merged.Equal(a) {
		t.Errorf("TakeA = %v, want %v", r.Merged, a)
	}
	if r := engine.MergeWhole(a, b, TakeB, nil); !r.Merged.Equal(b) {
		t.Errorf("TakeB = %v, want %v", r.Merged, b)
	}
	if r := engine.MergeWhole(a, b, CancelWhole, nil); !r.Cancelled {
		t.Error("CancelWhole did not cancel")
	}
}
