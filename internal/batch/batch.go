// Package batch runs BlastMerge's four-phase, barrier-separated pipeline
// over a list of file-name patterns (spec.md §4.9): gather, hash, group,
// resolve. Grounded on the teacher's phase-sequenced runDedupe
// (internal/cmd/dupedog/dedupe.go), generalized from a single fixed
// pipeline to an N-pattern, 4-phase barrier pipeline: phase N completes
// for every pattern before phase N+1 begins for any pattern, so
// interactive prompts surface only in phase 4 (spec.md §5).
package batch

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/ktsu-dev/blastmerge/internal/concurrency"
	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/finder"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/grouper"
	"github.com/ktsu-dev/blastmerge/internal/hash"
	"github.com/ktsu-dev/blastmerge/internal/logging"
	"github.com/ktsu-dev/blastmerge/internal/orchestrator"
	"github.com/ktsu-dev/blastmerge/internal/ports"
)

// Phase banner strings, exact per spec.md §6.
const (
	BannerGather  = "PHASE 1: Gathering files"
	BannerHash    = "PHASE 2: Hashing"
	BannerGroup   = "PHASE 3: Grouping files by content"
	BannerResolve = "PHASE 4: Resolving conflicts"
)

// Config is one batch definition (spec.md §4.9, §6).
type Config struct {
	Name               string
	Patterns           []string
	SearchPaths        []string
	Exclusions         []string
	SkipEmptyPatterns  bool
	PromptBeforeEach   bool
}

// Processor runs Config batches against a Filesystem.
type Processor struct {
	FS      fsys.Filesystem
	Workers int
	// Logger receives non-fatal hash/write failures from every phase
	// (SPEC_FULL.md §7). NewProcessor sets it to logging.New(slog.LevelWarn).
	Logger *slog.Logger
}

// NewProcessor returns a Processor backed by fs.
func NewProcessor(fs fsys.Filesystem, workers int) *Processor {
	return &Processor{FS: fs, Workers: workers, Logger: logging.New(slog.LevelWarn)}
}

// Report tallies pattern outcomes across one batch run, a spec-silent
// enrichment of "per-pattern results" into a human-scannable summary
// (SPEC_FULL.md §9). Failed also counts each file that failed to hash in
// phase 2, not only failed patterns.
type Report struct {
	Identical int
	Single    int
	Merged    int
	Cancelled int
	Failed    int
}

// String renders the report the way the teacher's phase stats types
// implement fmt.Stringer for progress descriptions.
func (r Report) String() string {
	return fmt.Sprintf("%d identical, %d single, %d merged, %d cancelled, %d failed",
		r.Identical, r.Single, r.Merged, r.Cancelled, r.Failed)
}

// PromptGate is consulted once per pattern before phase 4 runs that
// pattern's resolve step, when cfg.PromptBeforeEach is set. Returning
// false skips resolution for that pattern with a Cancelled outcome.
type PromptGate func(pattern string) bool

// Process runs the four phases over cfg against cfg.SearchPaths, resolving each
// multi-version pattern with resolvePorts. A malformed batch (no
// patterns) fails synchronously before phase 1 (spec.md §7).
func (p *Processor) Process(cfg Config, resolvePorts orchestrator.Ports, gate PromptGate) (core.BatchResult, Report, error) {
	if len(cfg.Patterns) == 0 {
		return core.BatchResult{}, Report{}, fmt.Errorf("batch %q has no patterns", cfg.Name)
	}

	emit(resolvePorts.Status, BannerGather)
	gathered := p.gather(cfg)

	emit(resolvePorts.Status, BannerHash)
	memo, hashErrors := p.hashAll(unionPaths(gathered))

	emit(resolvePorts.Status, BannerGroup)
	versionSets := make(map[string]core.VersionSet, len(cfg.Patterns))
	for _, pattern := range cfg.Patterns {
		result := grouper.GroupHashed(p.FS, gathered[pattern], memo, resolvePorts.Status, p.Logger)
		versionSets[pattern] = result.Versions
	}

	emit(resolvePorts.Status, BannerResolve)
	var results []core.PatternResult
	var report Report
	o := orchestrator.New(p.FS, p.Workers)
	if p.Logger != nil {
		o.Logger = p.Logger
	}

	for _, pattern := range cfg.Patterns {
		vs := versionSets[pattern]
		if cfg.SkipEmptyPatterns && vs.Len() == 0 {
			continue
		}

		if vs.Len() >= 2 && cfg.PromptBeforeEach && gate != nil && !gate(pattern) {
			result := core.PatternResult{
				Pattern: pattern, FilesFound: len(vs.AllPaths()), UniqueVersions: vs.Len(),
				Success: false, Message: "Cancelled",
			}
			results = append(results, result)
			report.Cancelled++
			continue
		}

		result, _ := o.Run(pattern, vs, resolvePorts)
		results = append(results, result)
		tally(&report, result)
	}

	for range hashErrors {
		report.Failed++
	}

	return core.BatchResult{PatternsProcessed: len(results), PatternResults: results}, report, nil
}

func tally(report *Report, result core.PatternResult) {
	switch {
	case !result.Success && (result.Message == "Cancelled" || result.Message == "cancelled"):
		report.Cancelled++
	case !result.Success:
		report.Failed++
	case result.Message == "Identical":
		report.Identical++
	case result.Message == "Single file":
		report.Single++
	default:
		report.Merged++
	}
}

// gather runs phase 1: Finder over every search path, for every pattern.
func (p *Processor) gather(cfg Config) map[string][]string {
	f := finder.New(p.FS, p.Workers)
	gathered := make(map[string][]string, len(cfg.Patterns))
	for _, pattern := range cfg.Patterns {
		var matches []string
		seen := make(map[string]struct{})
		for _, root := range cfg.SearchPaths {
			found, err := f.Find(root, pattern, cfg.Exclusions, nil, nil)
			if err != nil {
				continue
			}
			for _, path := range found {
				if _, ok := seen[path]; ok {
					continue
				}
				seen[path] = struct{}{}
				matches = append(matches, path)
			}
		}
		sort.Strings(matches)
		gathered[pattern] = matches
	}
	return gathered
}

// hashAll runs phase 2: hash every gathered path once into a shared memo,
// with bounded parallelism (spec.md §4.9, §5).
func (p *Processor) hashAll(paths []string) (map[string]core.FileHash, []grouper.HashError) {
	logger := p.Logger
	if logger == nil {
		logger = logging.New(slog.LevelWarn)
	}
	pool := concurrency.New[string, hashOutcome](p.Workers)
	outcomes := pool.Run(paths, func(path string) hashOutcome {
		r, err := p.FS.ReadBytesStream(path)
		if err != nil {
			return hashOutcome{path: path, err: err}
		}
		defer func() { _ = r.Close() }()
		h, err := hash.Stream(r)
		return hashOutcome{path: path, hash: h, err: err}
	})

	memo := make(map[string]core.FileHash, len(paths))
	var errs []grouper.HashError
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, grouper.HashError{Path: o.path, Err: o.err})
			logging.PathError(logger, "hash", o.path, o.err)
			continue
		}
		memo[o.path] = o.hash
	}
	return memo, errs
}

type hashOutcome struct {
	path string
	hash core.FileHash
	err  error
}

func unionPaths(gathered map[string][]string) []string {
	seen := make(map[string]struct{})
	var all []string
	for _, paths := range gathered {
		for _, path := range paths {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			all = append(all, path)
		}
	}
	return all
}

func emit(status ports.StatusPort, banner string) {
	if status == nil {
		return
	}
	status.Status(ports.StatusEvent{Message: banner})
}
