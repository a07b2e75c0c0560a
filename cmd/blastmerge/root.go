package main

import (
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "blastmerge",
		Short:   "Converge every version of a file to one, block by block",
		Version: version + " (" + commit + ")",
	}

	root.AddCommand(newMergeCmd())
	root.AddCommand(newBatchCmd())

	return root
}
