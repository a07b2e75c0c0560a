package main

import (
	"fmt"
	"time"

	"github.com/ktsu-dev/blastmerge/internal/globmatch"
)

// validatePatterns checks that every pattern is syntactically well-formed
// before any phase of a run starts, the same fail-fast-on-flags shape the
// teacher's validateGlobPatterns gives --exclude.
func validatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if err := globmatch.Validate(pattern); err != nil {
			return fmt.Errorf("pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// nowUTCISO8601 is the timestamp format store.RecentBatch records expect.
func nowUTCISO8601() string {
	return time.Now().UTC().Format(time.RFC3339)
}
