// Package ports declares the four callback capabilities the core calls out
// to (spec.md §4.11): MergePort, StatusPort, ContinuePort and
// BlockChoicePort. The core never imports a concrete UI; it is handed small
// interfaces instead, the way the teacher's dedupe pipeline is handed
// function-typed decision hooks rather than an inheritance hierarchy
// (spec.md §9's "callback ports instead of inheritance").
package ports

import "github.com/ktsu-dev/blastmerge/internal/core"

// StatusEvent mirrors core.MergeEvent for the live StatusPort call; the
// orchestrator also appends an equivalent core.MergeEvent to
// SessionState.Log so an embedder can inspect the transcript after the
// fact, not just observe it live.
type StatusEvent struct {
	Kind      core.MergeEventKind
	Iteration int
	Message   string
	Score     float64
	PairA     string
	PairB     string
}

// MergePort drives one two-way merge. left is either a representative
// path (first iteration) or empty when existing carries the accumulator's
// content in-memory; right is always a representative path. The port is
// responsible for reading both sides (via the FS port it was constructed
// with), running the Differ, soliciting a BlockChoicePort decision for
// every change block through a MergeEngine, and returning the result.
type MergePort interface {
	Merge(leftPath, rightPath string, existing *core.LineSeq) (core.MergeResult, error)
}

// StatusPort receives fire-and-forget progress notifications. Status has
// no return value; the core neither waits on nor checks the port
// (spec.md §4.11: "fire-and-forget").
type StatusPort interface {
	Status(event StatusEvent)
}

// ContinuePort is consulted after a successful merge step when versions
// remain; returning false cancels the session. Batch runs hard-wire this
// to always return true (spec.md §4.11).
type ContinuePort interface {
	Continue() bool
}

// BlockChoicePort resolves one change block's disposition. idx is the
// block's position within the full diff sequence, for ports that want to
// correlate choices with a rendered hunk list.
type BlockChoicePort interface {
	Choose(block core.Block, ctx core.BlockContext, idx int) core.BlockChoice
}

// BlockChoiceFunc adapts a plain function to a BlockChoicePort, the same
// first-class-function-value shape spec.md §9 asks for over a trait
// hierarchy.
type BlockChoiceFunc func(block core.Block, ctx core.BlockContext, idx int) core.BlockChoice

func (f BlockChoiceFunc) Choose(block core.Block, ctx core.BlockContext, idx int) core.BlockChoice {
	return f(block, ctx, idx)
}

// ContinueFunc adapts a plain function to a ContinuePort.
type ContinueFunc func() bool

func (f ContinueFunc) Continue() bool { return f() }

// StatusFunc adapts a plain function to a StatusPort.
type StatusFunc func(event StatusEvent)

func (f StatusFunc) Status(event StatusEvent) { f(event) }
