// Package grouper hashes a set of files in parallel and buckets them into a
// VersionSet (spec.md §4.4). Grounded on the teacher's worker-pool-over-
// semaphore pattern (internal/scanner's walker-fan-out/collector-fan-in
// shape, generalized into internal/concurrency): one goroutine per hash
// job, bounded by a semaphore, each writing its outcome into its own slot
// of an ordered result slice. Per-file
// hash failures are collected on a side channel exactly as the teacher
// collects non-fatal scan errors, rather than failing the whole call.
package grouper

import (
	"bytes"
	"io"
	"log/slog"
	"slices"

	"github.com/ktsu-dev/blastmerge/internal/concurrency"
	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/hash"
	"github.com/ktsu-dev/blastmerge/internal/logging"
	"github.com/ktsu-dev/blastmerge/internal/ports"
)

// HashError pairs a path with the error encountered hashing it; the path
// is dropped from the resulting VersionSet rather than failing the call.
type HashError struct {
	Path string
	Err  error
}

// Result is the output of Group: the built VersionSet plus any per-file
// hash failures.
type Result struct {
	Versions   core.VersionSet
	HashErrors []HashError
}

type hashOutcome struct {
	path string
	hash core.FileHash
	err  error
}

// Group hashes every path in paths with a bounded worker pool of size
// workers (min(logical_cpus, 16) if workers <= 0), buckets them by hash,
// and verifies every bucket with more than one path by a byte-compare
// fallback (SPEC_FULL.md §9, Open Question 3): a verified mismatch splits
// the bucket and emits a Collision event on status, if non-nil. Every
// per-file failure is both collected in Result.HashErrors and logged via
// internal/logging (SPEC_FULL.md §7); logger may be nil, in which case
// Group falls back to logging.New(slog.LevelWarn).
func Group(fs fsys.Filesystem, paths []string, workers int, status ports.StatusPort, logger *slog.Logger) Result {
	logger = resolveLogger(logger)

	pool := concurrency.New[string, hashOutcome](workers)
	outcomes := pool.Run(paths, func(path string) hashOutcome {
		h, err := hashFile(fs, path)
		return hashOutcome{path: path, hash: h, err: err}
	})

	hashes := make(map[string]core.FileHash, len(paths))
	var hashed []string
	var hashErrors []HashError
	for _, o := range outcomes {
		if o.err != nil {
			hashErrors = append(hashErrors, HashError{Path: o.path, Err: o.err})
			logging.PathError(logger, "hash", o.path, o.err)
			continue
		}
		hashes[o.path] = o.hash
		hashed = append(hashed, o.path)
	}

	result := GroupHashed(fs, hashed, hashes, status, logger)
	result.HashErrors = append(hashErrors, result.HashErrors...)
	return result
}

// GroupHashed builds a VersionSet from a precomputed path->hash memo,
// without re-hashing. This is the shape internal/batch uses: phase 2
// hashes every gathered file once, shared across patterns, and phase 3
// calls GroupHashed once per pattern against that shared memo
// (spec.md §4.9). Paths missing from hashes are treated as hash failures,
// collected in Result.HashErrors and logged via internal/logging; logger
// may be nil, in which case GroupHashed falls back to
// logging.New(slog.LevelWarn).
func GroupHashed(fs fsys.Filesystem, paths []string, hashes map[string]core.FileHash, status ports.StatusPort, logger *slog.Logger) Result {
	logger = resolveLogger(logger)

	buckets := make(map[core.FileHash][]string)
	var order []core.FileHash
	var hashErrors []HashError
	for _, path := range paths {
		h, ok := hashes[path]
		if !ok {
			err := &core.Error{Kind: core.ErrHashFailed, Path: path}
			hashErrors = append(hashErrors, HashError{Path: path, Err: err})
			logging.PathError(logger, "hash", path, err)
			continue
		}
		if _, ok := buckets[h]; !ok {
			order = append(order, h)
		}
		buckets[h] = append(buckets[h], path)
	}

	var groups []core.FileGroup
	for _, h := range order {
		members := buckets[h]
		contentGroups, err := verifyBucket(fs, members)
		if err != nil {
			for _, p := range members {
				hashErrors = append(hashErrors, HashError{Path: p, Err: err})
				logging.PathError(logger, "hash", p, err)
			}
			continue
		}
		if len(contentGroups) > 1 {
			logging.Collision(logger, contentGroups[0][0], contentGroups[1][0])
			if status != nil {
				status.Status(ports.StatusEvent{
					Kind:    core.EventCollision,
					Message: "hash collision detected; splitting group",
					PairA:   contentGroups[0][0],
					PairB:   contentGroups[1][0],
				})
			}
		}
		for _, paths := range contentGroups {
			hadCRLF, hadTrailing, err := readGroupMetadata(fs, paths[0])
			if err != nil {
				for _, p := range paths {
					hashErrors = append(hashErrors, HashError{Path: p, Err: err})
					logging.PathError(logger, "hash", p, err)
				}
				continue
			}
			groups = append(groups, core.NewFileGroup(h, paths, hadCRLF, hadTrailing))
		}
	}

	return Result{Versions: core.NewVersionSet(groups), HashErrors: hashErrors}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return logging.New(slog.LevelWarn)
	}
	return logger
}

func hashFile(fs fsys.Filesystem, path string) (core.FileHash, error) {
	r, err := fs.ReadBytesStream(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = r.Close() }()
	return hash.Stream(r)
}

// verifyBucket partitions members sharing one hash into true content-equal
// groups, reading each file in full once and comparing bytes against each
// distinct content seen so far. Singleton buckets skip the read entirely.
func verifyBucket(fs fsys.Filesystem, members []string) ([][]string, error) {
	if len(members) < 2 {
		return [][]string{slices.Clone(members)}, nil
	}

	var refs [][]byte
	var groups [][]string
	for _, p := range members {
		data, err := readAll(fs, p)
		if err != nil {
			return nil, err
		}
		placed := false
		for i, ref := range refs {
			if bytes.Equal(ref, data) {
				groups[i] = append(groups[i], p)
				placed = true
				break
			}
		}
		if !placed {
			refs = append(refs, data)
			groups = append(groups, []string{p})
		}
	}
	return groups, nil
}

func readAll(fs fsys.Filesystem, path string) ([]byte, error) {
	r, err := fs.ReadBytesStream(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}

// readGroupMetadata reads one representative member's lines to determine
// the CRLF/trailing-newline flags for the whole group: every path in a
// content-verified group is byte-identical, so one read suffices.
func readGroupMetadata(fs fsys.Filesystem, representative string) (hadCRLF, hadTrailingNewline bool, err error) {
	_, hadCRLF, hadTrailingNewline, err = fs.ReadLines(representative)
	return hadCRLF, hadTrailingNewline, err
}
