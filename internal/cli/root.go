// Package cli defines the jcrsync command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand assembles the command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jcrsync",
		Short: "Transfer content between a vault checkout and a content repository",
		Long: `jcrsync moves content between a local checkout, an unzipped content package
rooted at a jcr_root directory, and a content repository server through its
package manager. Every transfer round-trips the full subtree below the given
path as a package.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)
	rootCmd.SetFlagErrorFunc(flagError)

	// Add commands
	rootCmd.AddCommand(NewCheckoutCommand())
	rootCmd.AddCommand(NewPutCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewDiffCommands()...)
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
