package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ktsu-dev/blastmerge/internal/core"
	"github.com/ktsu-dev/blastmerge/internal/finder"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/grouper"
	"github.com/ktsu-dev/blastmerge/internal/logging"
	"github.com/ktsu-dev/blastmerge/internal/orchestrator"
	"github.com/ktsu-dev/blastmerge/internal/ports"
	"github.com/ktsu-dev/blastmerge/internal/progress"
)

// mergeOptions holds CLI flags for the merge command.
type mergeOptions struct {
	exclusions []string
	workers    int
	noProgress bool
	yes        bool
}

// newMergeCmd creates the merge subcommand, the single-pattern analogue of
// the teacher's dedupe command: scan → group → iteratively resolve,
// instead of scan → screen → verify → dedupe.
func newMergeCmd() *cobra.Command {
	opts := &mergeOptions{workers: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "merge <pattern> <search-path...>",
		Short: "Find every version of a file name and converge them to one",
		Long: `Searches for every file whose name matches pattern under the given paths,
groups them by content, and iteratively merges the most similar pair until
a single version remains, then writes that version back to every original
path.

Each change block is shown for a decision unless --yes is given, in which
case the incoming side of every change is taken automatically.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runMerge(args[0], args[1:], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.exclusions, "exclude", "e", nil, "Glob patterns to exclude")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Resolve every change block by taking the incoming side, without prompting")

	return cmd
}

func runMerge(pattern string, searchPaths []string, opts *mergeOptions) error {
	if err := validatePatterns([]string{pattern}); err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	if err := validatePatterns(opts.exclusions); err != nil {
		return fmt.Errorf("invalid --exclude: %w", err)
	}

	fs := fsys.New()
	showProgress := !opts.noProgress
	bar := progress.New(showProgress, -1)
	status := newConsoleStatusPort(bar, os.Stderr)

	f := finder.New(fs, opts.workers)
	var matches []string
	seen := make(map[string]struct{})
	for _, root := range searchPaths {
		found, err := f.Find(root, pattern, opts.exclusions, nil, func(err error) {
			fmt.Fprintf(os.Stderr, "\rerror: %v\n", err)
		})
		if err != nil {
			return fmt.Errorf("search %s: %w", root, err)
		}
		for _, path := range found {
			if _, ok := seen[path]; ok {
				continue
			}
			seen[path] = struct{}{}
			matches = append(matches, path)
		}
	}

	if len(matches) == 0 {
		fmt.Println("No files found")
		return nil
	}

	logger := logging.New(slog.LevelWarn)
	result := grouper.Group(fs, matches, opts.workers, status, logger)
	if n := len(result.HashErrors); n > 0 {
		fmt.Fprintf(os.Stderr, "%d file(s) failed to hash, see warnings above\n", n)
	}

	o := orchestrator.New(fs, opts.workers)
	o.Logger = logger
	resolvePorts := orchestrator.Ports{
		Merge:    newConsoleMergePort(fs, os.Stdin, os.Stdout, opts.yes),
		Status:   status,
		Continue: continuePortFor(opts.yes),
	}

	patternResult, _ := o.Run(pattern, result.Versions, resolvePorts)
	summary := patternSummary{patternResult}
	bar.Finish(summary)

	fmt.Println(summary.String())
	if !patternResult.Success {
		return fmt.Errorf("merge did not complete: %s", patternResult.Message)
	}
	return nil
}

func continuePortFor(yes bool) ports.ContinuePort {
	if yes {
		return ports.ContinueFunc(func() bool { return true })
	}
	return newConsoleContinuePort(os.Stdin, os.Stdout)
}

// patternSummary renders a core.PatternResult as the one-line outcome
// shown after a merge command finishes, and as a progress.Bar's final
// message via fmt.Stringer.
type patternSummary struct {
	result core.PatternResult
}

func (s patternSummary) String() string {
	if !s.result.Success {
		return fmt.Sprintf("%s: %s", s.result.Pattern, s.result.Message)
	}
	return fmt.Sprintf("%s: %s (%d files, %d versions)", s.result.Pattern, s.result.Message,
		s.result.FilesFound, s.result.UniqueVersions)
}
