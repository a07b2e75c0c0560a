// Package merge applies a caller-supplied per-block decision to a Differ
// block sequence, producing one merged LineSeq (spec.md §4.7). It is the
// direct generalization of the teacher's deduper.Run per-item-decision
// loop: where the teacher loops over DuplicateGroups deciding
// hardlink-or-symlink-or-skip per file using a pathPriority/nlink
// heuristic, Engine loops over Blocks deciding
// UseA/UseB/UseBoth/Include/Skip/Keep/Remove per block, driven by an
// injected BlockChoicePort instead of a hardcoded heuristic.
package merge

import (
	"fmt"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/differ"
	"github.com/ktsu-dev/blastmerge/internal/ports"
)

// Engine merges two line sequences block by block.
type Engine struct {
	// ContextLines is the number of Unchanged lines of context passed to
	// the BlockChoicePort on either side of a change block (spec.md §3).
	ContextLines int
}

// New returns an Engine using the default context window.
func New() *Engine {
	return &Engine{ContextLines: differ.DefaultContextLines}
}

// Merge diffs a against b and asks choose for a decision on every non-
// Unchanged block, appending the resulting lines per spec.md §4.7's
// choice → output mapping. If choose ever returns core.ChoiceCancel, Merge
// stops immediately and returns a cancelled MergeResult with no merged
// content.
func (e *Engine) Merge(a, b core.LineSeq, choose ports.BlockChoicePort) core.MergeResult {
	blocks := differ.Diff(a, b)

	var out core.LineSeq
	for idx, block := range blocks {
		if block.Kind == core.BlockUnchanged {
			out = append(out, block.LinesA...)
			continue
		}

		ctx := differ.BlockContext(blocks, idx, e.ContextLines)
		choice := choose.Choose(block, ctx, idx)
		if choice == core.ChoiceCancel {
			return core.MergeResult{Cancelled: true}
		}
		if !choice.LegalFor(block.Kind) {
			panic(fmt.Sprintf("merge: illegal choice %v for block kind %s at index %d", choice, block.Kind, idx))
		}

		out = append(out, appendedLines(block, choice)...)
	}
	return core.MergeResult{Merged: out}
}

// appendedLines maps a (block, choice) pair to the lines it contributes to
// the merged output, per spec.md §4.7's table.
func appendedLines(block core.Block, choice core.BlockChoice) core.LineSeq {
	switch block.Kind {
	case core.BlockInsert:
		if choice == core.ChoiceInclude {
			return block.LinesB
		}
		return nil
	case core.BlockDelete:
		if choice == core.ChoiceKeep {
			return block.LinesA
		}
		return nil
	case core.BlockReplace:
		switch choice {
		case core.ChoiceUseA:
			return block.LinesA
		case core.ChoiceUseB:
			return block.LinesB
		case core.ChoiceUseBoth:
			both := make(core.LineSeq, 0, len(block.LinesA)+len(block.LinesB))
			both = append(both, block.LinesA...)
			both = append(both, block.LinesB...)
			return both
		default: // ChoiceSkip
			return nil
		}
	default:
		return nil
	}
}

// WholeStrategy selects the fast path for merge_whole (spec.md §4.7).
type WholeStrategy int

const (
	TakeA WholeStrategy = iota
	TakeB
	CancelWhole
	Piecewise
)

// MergeWhole implements the whole-file fast path: TakeA/TakeB/CancelWhole
// skip the block loop entirely; Piecewise falls through to Merge.
func (e *Engine) MergeWhole(a, b core.LineSeq, strategy WholeStrategy, choose ports.BlockChoicePort) core.MergeResult {
	switch strategy {
	case TakeA:
		return core.MergeResult{Merged: a}
	case TakeB:
		return core.MergeResult{Merged: b}
	case CancelWhole:
		return core.MergeResult{Cancelled: true}
	default:
		return e.Merge(a, b, choose)
	}
}
