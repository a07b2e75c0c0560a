// Package writeback overwrites every original path belonging to a merged
// pattern with its final content (spec.md §4.10). It reuses the bounded
// worker pool from internal/concurrency (as grouper does, spec.md §5) and
// the teacher's "skip if already correct" optimization — the
// containsFile early-skip in deduper.Run and the mtime-verification
// safety check in dedupeFile — adapted to BlastMerge's content-overwrite
// semantics: before writing, it hashes the current on-disk content and
// skips the write if it already equals the final hash. A per-path
// failure is recorded without aborting the remaining targets, mirroring
// the teacher's sendError pattern.
package writeback

import (
	"log/slog"

	"github.com/ktsu-dev/blastmerge/internal/concurrency"
	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/hash"
	"github.com/ktsu-dev/blastmerge/internal/logging"
)

// Result is the outcome of writing one target path.
type Result struct {
	Path string
	Err  error
}

// Propagate writes final to every path in targets, skipping any target
// whose current content already hashes to finalHash. crlf and
// trailingNewline select the line-ending policy decided once per session
// (SPEC_FULL.md §9). Writes run with bounded concurrency P
// (min(logical_cpus, 16) if workers <= 0); each target is written by
// exactly one worker. A failed write is recorded in the returned Result
// and logged via internal/logging (SPEC_FULL.md §7); logger may be nil, in
// which case Propagate falls back to logging.New(slog.LevelWarn).
func Propagate(fs fsys.Filesystem, final core.LineSeq, finalHash core.FileHash, crlf, trailingNewline bool, targets []string, workers int, logger *slog.Logger) []Result {
	if logger == nil {
		logger = logging.New(slog.LevelWarn)
	}
	pool := concurrency.New[string, Result](workers)
	return pool.Run(targets, func(path string) Result {
		if alreadyWritten(fs, path, finalHash) {
			return Result{Path: path}
		}
		if err := fs.Write(path, final, crlf, trailingNewline); err != nil {
			logging.PathError(logger, "write", path, err)
			return Result{Path: path, Err: err}
		}
		return Result{Path: path}
	})
}

func alreadyWritten(fs fsys.Filesystem, path string, finalHash core.FileHash) bool {
	r, err := fs.ReadBytesStream(path)
	if err != nil {
		return false
	}
	defer func() { _ = r.Close() }()
	h, err := hash.Stream(r)
	if err != nil {
		return false
	}
	return h == finalHash
}
