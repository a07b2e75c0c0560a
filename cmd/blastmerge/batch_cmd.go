package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ktsu-dev/blastmerge/internal/batch"
	"github.com/ktsu-dev/blastmerge/internal/fsys"
	"github.com/ktsu-dev/blastmerge/internal/orchestrator"
	"github.com/ktsu-dev/blastmerge/internal/ports"
	"github.com/ktsu-dev/blastmerge/internal/progress"
	"github.com/ktsu-dev/blastmerge/internal/store"
)

// newBatchCmd creates the batch command group: save/list/run over named
// batch configurations persisted with internal/store. The resolve phase
// never prompts per block (it always takes the incoming side); only
// --prompt-before-each asks whether to process a given pattern at all,
// per spec.md §4.9.
func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run and manage saved multi-pattern merge batches",
	}
	cmd.AddCommand(newBatchSaveCmd())
	cmd.AddCommand(newBatchListCmd())
	cmd.AddCommand(newBatchRunCmd())
	return cmd
}

func defaultStorePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "blastmerge", "store.db"), nil
}

func openStore() (*store.Store, error) {
	path, err := defaultStorePath()
	if err != nil {
		return nil, fmt.Errorf("locate store: %w", err)
	}
	return store.Open(path)
}

type batchSaveOptions struct {
	patterns         []string
	searchPaths      []string
	exclusions       []string
	skipEmpty        bool
	promptBeforeEach bool
}

func newBatchSaveCmd() *cobra.Command {
	opts := &batchSaveOptions{}

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a named batch configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBatchSave(args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.patterns, "pattern", "p", nil, "File-name pattern to include (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.searchPaths, "path", "P", nil, "Search path to include (repeatable)")
	cmd.Flags().StringSliceVarP(&opts.exclusions, "exclude", "e", nil, "Glob patterns to exclude")
	cmd.Flags().BoolVar(&opts.skipEmpty, "skip-empty", false, "Skip patterns with no matching files")
	cmd.Flags().BoolVar(&opts.promptBeforeEach, "prompt-before-each", false, "Ask before resolving each pattern")

	return cmd
}

func runBatchSave(name string, opts *batchSaveOptions) error {
	if err := validatePatterns(opts.patterns); err != nil {
		return fmt.Errorf("invalid --pattern: %w", err)
	}
	if err := validatePatterns(opts.exclusions); err != nil {
		return fmt.Errorf("invalid --exclude: %w", err)
	}
	if len(opts.patterns) == 0 {
		return fmt.Errorf("batch %q needs at least one --pattern", name)
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cfg := store.BatchConfig{
		Name:             name,
		Patterns:         opts.patterns,
		SearchPaths:      opts.searchPaths,
		Exclusions:       opts.exclusions,
		SkipEmpty:        opts.skipEmpty,
		PromptBeforeEach: opts.promptBeforeEach,
	}
	if err := s.PutBatch(cfg); err != nil {
		return fmt.Errorf("save batch %q: %w", name, err)
	}

	fmt.Printf("saved batch %q (%d patterns, %d search paths)\n", name, len(cfg.Patterns), len(cfg.SearchPaths))
	return nil
}

func newBatchListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved batches and recently run batches",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBatchList()
		},
	}
}

func runBatchList() error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	names, err := s.ListBatchNames()
	if err != nil {
		return fmt.Errorf("list batches: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No saved batches")
	} else {
		fmt.Println("Saved batches:")
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}

	recents, err := s.ListRecent()
	if err != nil {
		return fmt.Errorf("list recent batches: %w", err)
	}
	if len(recents) > 0 {
		fmt.Println("Recently run:")
		for _, r := range recents {
			fmt.Printf("  %s (last used %s)\n", r.Name, r.LastUsedUTC)
		}
	}
	return nil
}

type batchRunOptions struct {
	workers    int
	noProgress bool
}

func newBatchRunCmd() *cobra.Command {
	opts := &batchRunOptions{workers: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Run a saved batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runBatchRun(args[0], opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", opts.workers, "Number of parallel workers")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable progress output")

	return cmd
}

func runBatchRun(name string, opts *batchRunOptions) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	saved, ok, err := s.GetBatch(name)
	if err != nil {
		return fmt.Errorf("load batch %q: %w", name, err)
	}
	if !ok {
		return fmt.Errorf("no saved batch named %q", name)
	}

	fs := fsys.New()
	showProgress := !opts.noProgress
	bar := progress.New(showProgress, -1)
	status := newConsoleStatusPort(bar, os.Stderr)

	cfg := batch.Config{
		Name:              saved.Name,
		Patterns:          saved.Patterns,
		SearchPaths:       saved.SearchPaths,
		Exclusions:        saved.Exclusions,
		SkipEmptyPatterns: saved.SkipEmpty,
		PromptBeforeEach:  saved.PromptBeforeEach,
	}

	resolvePorts := orchestrator.Ports{
		Merge:    newConsoleMergePort(fs, os.Stdin, os.Stdout, true),
		Status:   status,
		Continue: ports.ContinueFunc(func() bool { return true }),
	}

	var gate batch.PromptGate
	if cfg.PromptBeforeEach {
		stdin := bufio.NewReader(os.Stdin)
		gate = func(pattern string) bool {
			fmt.Printf("resolve pattern %q now? [Y/n] ", pattern)
			line, _ := stdin.ReadString('\n')
			answer := strings.ToLower(strings.TrimSpace(line))
			return answer == "" || answer == "y" || answer == "yes"
		}
	}

	processor := batch.NewProcessor(fs, opts.workers)
	result, report, err := processor.Process(cfg, resolvePorts, gate)
	bar.Finish(reportLine{report})
	if err != nil {
		return fmt.Errorf("run batch %q: %w", name, err)
	}

	if err := s.TouchRecent(name, nowUTCISO8601()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record recent batch: %v\n", err)
	}

	fmt.Printf("%s: %s\n", name, report.String())
	for _, pr := range result.PatternResults {
		fmt.Printf("  %s: %s\n", pr.Pattern, pr.Message)
	}
	return nil
}

type reportLine struct {
	report batch.Report
}

func (r reportLine) String() string { return r.report.String() }
