// Package orchestrator drives the per-pattern session state machine
// (spec.md §4.8): pick the most similar pair, merge, shrink the remaining
// version set, repeat until one version remains, then write it back.
// Grounded on the teacher's top-level runDedupe pipeline
// (internal/cmd/dupedog/dedupe.go), which also sequences discrete,
// testable steps (scan→screen→verify→dedupe) rather than one monolithic
// function.
package orchestrator

import (
	"cmp"
	"log/slog"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/differ"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/hash"
	"github.com/ktsu-dev/blastmerge/internal/logging"
	"github.com/ktsu-dev/blastmerge/internal/ports"
	"github.com/ktsu-dev/blastmerge/internal/similarity"
	"github.com/ktsu-dev/blastmerge/internal/writeback"
)

// Ports bundles the three callback capabilities the orchestrator calls out
// to directly; BlockChoicePort is the MergePort's own inner concern
// (spec.md §4.11) and never reaches this package.
type Ports struct {
	Merge    ports.MergePort
	Status   ports.StatusPort
	Continue ports.ContinuePort
}

// Orchestrator runs one pattern's iterative merge session.
type Orchestrator struct {
	FS      fsys.Filesystem
	Workers int
	// Logger receives non-fatal write-back failures (SPEC_FULL.md §7). New
	// sets it to logging.New(slog.LevelWarn); library embedders may replace
	// it with their own *slog.Logger before calling Run.
	Logger *slog.Logger
}

// New returns an Orchestrator backed by fs, writing back with the given
// worker pool size (min(logical_cpus, 16) if workers <= 0).
func New(fs fsys.Filesystem, workers int) *Orchestrator {
	return &Orchestrator{FS: fs, Workers: workers, Logger: logging.New(slog.LevelWarn)}
}

// Run drives vs through Idle→Running→Iterating→Done|Cancelled for one
// pattern, returning the PatternResult and the final SessionState (kept
// for post-mortem inspection, SPEC_FULL.md §3).
func (o *Orchestrator) Run(pattern string, vs core.VersionSet, p Ports) (core.PatternResult, core.SessionState) {
	state := core.SessionState{Remaining: vs}

	// Idle -> Running: K < 2 is a no-op success (spec.md §4.8, §7).
	if vs.Len() < 2 {
		return core.PatternResult{
			Pattern:        pattern,
			FilesFound:     len(vs.AllPaths()),
			UniqueVersions: vs.Len(),
			Success:        true,
			Message:        noopMessage(vs),
		}, state
	}

	wantCRLF := majorityTrue(countBool(vs, func(g core.FileGroup) bool { return g.HadCRLF }))
	wantTrailingNewline := majorityTrue(countBool(vs, func(g core.FileGroup) bool { return g.HadTrailingNewline }))

	lineCache := make(map[string]core.LineSeq)
	repLines := func(g core.FileGroup) core.LineSeq {
		path := g.Representative()
		if cached, ok := lineCache[path]; ok {
			return cached
		}
		lines, _, _, err := o.FS.ReadLines(path)
		if err != nil {
			return nil
		}
		lineCache[path] = lines
		return lines
	}

	state.Remaining = vs
	state.Iteration = 1

	for {
		var leftPath, rightPath string
		var existing *core.LineSeq
		var consumed []string
		var score float64

		if state.Accumulator == nil {
			pair, err := similarity.MostSimilarPair(state.Remaining, repLines)
			if err != nil {
				return cancelledResult(pattern, vs, "not enough versions to merge"), state
			}
			gi := state.Remaining.Groups[pair.IndexA]
			gj := state.Remaining.Groups[pair.IndexB]
			leftPath, rightPath = orderPair(gi, gj, repLines)
			consumed = []string{gi.Representative(), gj.Representative()}
			score = pair.Score
		} else {
			idx, s, err := similarity.MostSimilarTo(*state.Accumulator, state.Remaining, repLines)
			if err != nil {
				return cancelledResult(pattern, vs, "not enough versions to merge"), state
			}
			g := state.Remaining.Groups[idx]
			rightPath = g.Representative()
			existing = state.Accumulator
			consumed = []string{g.Representative()}
			score = s
		}

		emit(p.Status, core.EventIterationStarted, state.Iteration, score, "merging most similar pair")
		logEvent(&state, core.EventIterationStarted, score, "merging most similar pair")

		result, err := p.Merge.Merge(leftPath, rightPath, existing)
		if err != nil {
			return core.PatternResult{
				Pattern: pattern, FilesFound: len(vs.AllPaths()), UniqueVersions: vs.Len(),
				Success: false, Message: "merge port failed: " + err.Error(),
			}, state
		}
		if result.Cancelled {
			emit(p.Status, core.EventCancelled, state.Iteration, 0, "merge cancelled")
			logEvent(&state, core.EventCancelled, 0, "merge cancelled")
			return cancelledResult(pattern, vs, "cancelled"), state
		}

		merged := result.Merged
		state.Accumulator = &merged
		state.Remaining = state.Remaining.Without(consumed...)
		state.CompletedMerges++
		state.Iteration++

		emit(p.Status, core.EventMergeCompleted, state.Iteration, score, "merge completed")
		logEvent(&state, core.EventMergeCompleted, score, "merge completed")

		if state.Remaining.Len() == 0 {
			break
		}
		if !p.Continue.Continue() {
			emit(p.Status, core.EventCancelled, state.Iteration, 0, "continue declined")
			logEvent(&state, core.EventCancelled, 0, "continue declined")
			return cancelledResult(pattern, vs, "cancelled"), state
		}
	}

	final := *state.Accumulator
	finalBytes := fsys.Serialize(final, wantCRLF, wantTrailingNewline)
	finalHash := hash.Bytes(finalBytes)

	emit(p.Status, core.EventDone, state.Iteration, 0, "writing back final version")
	logEvent(&state, core.EventDone, 0, "writing back final version")

	writeResults := writeback.Propagate(o.FS, final, finalHash, wantCRLF, wantTrailingNewline, vs.AllPaths(), o.Workers, o.Logger)
	var writeErrors []core.PathError
	for _, wr := range writeResults {
		if wr.Err != nil {
			writeErrors = append(writeErrors, core.PathError{Path: wr.Path, Err: wr.Err})
		}
	}

	return core.PatternResult{
		Pattern:        pattern,
		FilesFound:     len(vs.AllPaths()),
		UniqueVersions: vs.Len(),
		Success:        true,
		Message:        "merged",
		FinalHash:      finalHash,
		WriteErrors:    writeErrors,
	}, state
}

// orderPair picks the left/right representative paths per spec.md §4.8(a):
// the representative with fewer a_changed lines (when the pair is diffed
// against each other) is the left side; ties break lexicographically by
// path.
func orderPair(a, b core.FileGroup, repLines func(core.FileGroup) core.LineSeq) (left, right string) {
	pathA, pathB := a.Representative(), b.Representative()
	linesA, linesB := repLines(a), repLines(b)

	aChangedIfALeft, _ := differ.CountChanges(differ.Diff(linesA, linesB))
	aChangedIfBLeft, _ := differ.CountChanges(differ.Diff(linesB, linesA))

	switch {
	case aChangedIfALeft < aChangedIfBLeft:
		return pathA, pathB
	case aChangedIfBLeft < aChangedIfALeft:
		return pathB, pathA
	case cmp.Less(pathB, pathA):
		return pathB, pathA
	default:
		return pathA, pathB
	}
}

func countBool(vs core.VersionSet, pred func(core.FileGroup) bool) (yes, no int) {
	for _, g := range vs.Groups {
		if pred(g) {
			yes++
		} else {
			no++
		}
	}
	return yes, no
}

// majorityTrue resolves the trailing-newline/CRLF policy decisions:
// strict majority wins; a tie favors true (preserving the original
// behavior), per SPEC_FULL.md §9.
func majorityTrue(yes, no int) bool {
	if yes > no {
		return true
	}
	if no > yes {
		return false
	}
	return true
}

// noopMessage mirrors the three synthesized outcomes spec.md §4.9 names
// for a pattern with fewer than two versions: "No files", "Single file"
// (exactly one file, trivially one version), and "Identical" (more than
// one file, all hashing to the same version).
func noopMessage(vs core.VersionSet) string {
	switch {
	case vs.Len() == 0:
		return "No files"
	case len(vs.AllPaths()) == 1:
		return "Single file"
	default:
		return "Identical"
	}
}

func cancelledResult(pattern string, vs core.VersionSet, message string) core.PatternResult {
	return core.PatternResult{
		Pattern:        pattern,
		FilesFound:     len(vs.AllPaths()),
		UniqueVersions: vs.Len(),
		Success:        false,
		Message:        message,
	}
}

func emit(status ports.StatusPort, kind core.MergeEventKind, iteration int, score float64, message string) {
	if status == nil {
		return
	}
	status.Status(ports.StatusEvent{Kind: kind, Iteration: iteration, Score: score, Message: message})
}

func logEvent(state *core.SessionState, kind core.MergeEventKind, score float64, message string) {
	state.Log = append(state.Log, core.MergeEvent{Kind: kind, Iteration: int(state.Iteration), Score: score, Message: message})
}
