// Package core holds the value types shared by every BlastMerge component:
// file identity, version grouping, line diffs, and the merge session state.
package core

import (
	"cmp"
	"slices"
)

// FileHash is a lower-case, zero-padded 16-hex-digit FNV-1a 64-bit digest.
type FileHash string

// LineSeq is a line-normalized view of a file: CRLF is folded to LF on read.
type LineSeq []string

// Equal reports whether two line sequences are identical, element-for-element.
func (a LineSeq) Equal(b LineSeq) bool {
	return slices.Equal(a, b)
}

// FileGroup is a set of paths sharing byte-identical content, plus the
// line-ending metadata recorded for that content the first time it was read.
type FileGroup struct {
	Hash              FileHash
	Paths             []string // sorted ascending
	HadCRLF           bool     // true if any member file used CRLF on disk
	HadTrailingNewline bool    // true if the representative content ended in "\n"
}

// NewFileGroup builds a FileGroup with its paths sorted ascending.
func NewFileGroup(hash FileHash, paths []string, hadCRLF, hadTrailingNewline bool) FileGroup {
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	return FileGroup{Hash: hash, Paths: sorted, HadCRLF: hadCRLF, HadTrailingNewline: hadTrailingNewline}
}

// Representative returns the lexicographically first path in the group,
// used whenever a single stand-in path is needed (similarity scoring,
// merge input selection).
func (g FileGroup) Representative() string {
	if len(g.Paths) == 0 {
		return ""
	}
	return g.Paths[0]
}

// VersionSet is an ordered sequence of FileGroup, one per distinct content
// (a verified hash collision yields several groups sharing one Hash),
// sorted by group size descending then by hash ascending (spec.md §4.4).
type VersionSet struct {
	Groups []FileGroup
}

// NewVersionSet sorts groups by -|paths| then lexicographic hash.
func NewVersionSet(groups []FileGroup) VersionSet {
	sorted := slices.Clone(groups)
	slices.SortFunc(sorted, func(a, b FileGroup) int {
		if len(a.Paths) != len(b.Paths) {
			return cmp.Compare(len(b.Paths), len(a.Paths))
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
	return VersionSet{Groups: sorted}
}

// Len returns the number of distinct versions.
func (vs VersionSet) Len() int { return len(vs.Groups) }

// Without returns a copy of vs with the groups whose representative path is
// in reps removed. Representative, not Hash, identifies a group here: a
// verified hash collision (the grouper's byte-compare fallback) can split
// one hash bucket into several FileGroups that all keep the bucket's
// original Hash, so matching on Hash would drop every collision sibling
// along with the one actually consumed. Every path belongs to exactly one
// group within a VersionSet, so a representative path is unique.
func (vs VersionSet) Without(reps ...string) VersionSet {
	drop := make(map[string]struct{}, len(reps))
	for _, r := range reps {
		drop[r] = struct{}{}
	}
	kept := make([]FileGroup, 0, len(vs.Groups))
	for _, g := range vs.Groups {
		if _, ok := drop[g.Representative()]; !ok {
			kept = append(kept, g)
		}
	}
	return VersionSet{Groups: kept}
}

// AllPaths returns every path across every group, in group order.
func (vs VersionSet) AllPaths() []string {
	var paths []string
	for _, g := range vs.Groups {
		paths = append(paths, g.Paths...)
	}
	return paths
}

// BlockKind tags the four possible diff block variants (spec.md §3).
type BlockKind int

const (
	BlockUnchanged BlockKind = iota
	BlockInsert
	BlockDelete
	BlockReplace
)

func (k BlockKind) String() string {
	switch k {
	case BlockUnchanged:
		return "Unchanged"
	case BlockInsert:
		return "Insert"
	case BlockDelete:
		return "Delete"
	case BlockReplace:
		return "Replace"
	default:
		return "Unknown"
	}
}

// Block is one contiguous diff region. LinesA/LinesB hold only the lines
// relevant to the block's kind (e.g. Insert populates only LinesB).
// Concatenating every block's "A side" in order reconstructs LineSeqA;
// same for B (spec.md §3 invariant).
type Block struct {
	Kind  BlockKind
	LinesA LineSeq
	LinesB LineSeq
	PosA  int
	PosB  int
}

// Len returns the number of lines on the side that kind populates, used
// for "Unchanged" length bookkeeping and change-count scoring.
func (b Block) Len() int {
	switch b.Kind {
	case BlockUnchanged:
		return len(b.LinesA)
	case BlockInsert:
		return len(b.LinesB)
	case BlockDelete:
		return len(b.LinesA)
	case BlockReplace:
		return max(len(b.LinesA), len(b.LinesB))
	default:
		return 0
	}
}

// BlockContext carries up to C lines of Unchanged context on either side of
// a change block, clamped at sequence ends (spec.md §4.5).
type BlockContext struct {
	BeforeA, BeforeB LineSeq
	AfterA, AfterB   LineSeq
}

// BlockChoice is the decision attached to a change block during a merge.
// Only the subset meaningful for a Block's Kind is legal (spec.md §4.7).
type BlockChoice int

const (
	ChoiceUseA BlockChoice = iota
	ChoiceUseB
	ChoiceUseBoth // Replace only: A then B
	ChoiceInclude // Insert only: take B
	ChoiceSkip    // Insert/Replace: take neither
	ChoiceKeep    // Delete only: keep A
	ChoiceRemove  // Delete only: drop A
	ChoiceCancel  // sentinel: abort the whole merge
)

// LegalFor reports whether a choice is a legal decision for a block kind.
func (c BlockChoice) LegalFor(kind BlockKind) bool {
	if c == ChoiceCancel {
		return true
	}
	switch kind {
	case BlockInsert:
		return c == ChoiceInclude || c == ChoiceSkip
	case BlockDelete:
		return c == ChoiceKeep || c == ChoiceRemove
	case BlockReplace:
		return c == ChoiceUseA || c == ChoiceUseB || c == ChoiceUseBoth || c == ChoiceSkip
	default:
		return false
	}
}

// MergeResult is the output of a two-way merge.
type MergeResult struct {
	Merged    LineSeq
	Cancelled bool
}

// MergeEventKind tags the kind of StatusPort notification emitted during an
// iterative session (see ports.StatusEvent, which wraps this).
type MergeEventKind int

const (
	EventIterationStarted MergeEventKind = iota
	EventMergeCompleted
	EventCancelled
	EventCollision
	EventDone
)

// MergeEvent is a retained record of one StatusPort notification, kept on
// SessionState.Log for post-mortem inspection by an embedder (SPEC_FULL.md
// §3 expansion) in addition to being fired through the StatusPort live.
type MergeEvent struct {
	Kind      MergeEventKind
	Iteration int
	Message   string
	Score     float64
}

// SessionState is the orchestrator's working state for one pattern run.
// Invariant: len(Remaining.Groups) + (Accumulator != nil ? 1 : 0) >= 1,
// and that sum decreases monotonically (spec.md §3, §4.8).
type SessionState struct {
	Remaining       VersionSet
	Accumulator     *LineSeq
	CompletedMerges uint32
	Iteration       uint32
	Log             []MergeEvent
}

// PatternResult is the outcome of resolving one file-name pattern.
type PatternResult struct {
	Pattern        string
	FilesFound     int
	UniqueVersions int
	Success        bool
	Message        string
	FinalHash      FileHash
	WriteErrors    []PathError
}

// PathError pairs a path with the error writing to it.
type PathError struct {
	Path string
	Err  error
}

// BatchResult aggregates every pattern's result for one batch run.
type BatchResult struct {
	PatternsProcessed int
	PatternResults    []PatternResult
}
