// Package logging is a thin log/slog wrapper in the teacher's voice. The
// teacher drains non-fatal scan/hash/write errors with a plain
// fmt.Fprintf(os.Stderr, ...) in its single CLI binary's drainErrors;
// BlastMerge generalizes that one step to structured leveled logging,
// since the core is also consumed as a library where writing straight to
// stderr is not appropriate (SPEC_FULL.md §7).
package logging

import (
	"log/slog"
	"os"
)

// New returns a text-handler slog.Logger writing to stderr at the given
// level, the default for both the CLI and library embedders that don't
// supply their own *slog.Logger.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// PathError logs a per-path failure the way the teacher's drainErrors
// reports a non-fatal scan/hash/write error: attributed to its path,
// without aborting the surrounding batch or pattern.
func PathError(logger *slog.Logger, op, path string, err error) {
	logger.Warn("path operation failed", "op", op, "path", path, "error", err)
}

// Collision logs a verified hash collision (SPEC_FULL.md §9, Open
// Question 3): two paths sharing an FNV-1a hash but not byte content.
func Collision(logger *slog.Logger, pathA, pathB string) {
	logger.Warn("hash collision, splitting group", "path_a", pathA, "path_b", pathB)
}
