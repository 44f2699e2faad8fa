package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	var flags commandFlags
	var reportPath string
	var reportFormat string

	cmd := &cobra.Command{
		Use:     "status [path]",
		Aliases: []string{"st"},
		Short:   "List paths that differ between server and checkout",
		Long: `Compare the server content below path, the working directory by default, with
the checkout and list every differing path:

  M     modified
  A     only in the checkout
  D     only on the server
  ~ df  server file, local directory
  ~ fd  server directory, local file`,
		Args: optionalPath,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			sess, err := newSession(cmd, path, flags)
			if err != nil {
				return err
			}
			report, err := sess.engine.Status(cmd.Context(), path)
			if err == nil {
				err = writeReport(report, reportPath, reportFormat)
			}
			return sess.finish(err)
		},
	}

	cmd.Flags().StringVarP(&flags.Output, "output", "o", "", "output format: human, json")
	cmd.Flags().StringVar(&flags.DiffTool, "tool", "", "comparison backend: external, builtin")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a differences report to file")
	cmd.Flags().StringVar(&reportFormat, "report-format", "human", "differences report format: human, json")

	return cmd
}

// NewDiffCommands creates diff and localdiff, which show local changes,
// and serverdiff, which shows server changes
func NewDiffCommands() []*cobra.Command {
	return []*cobra.Command{
		newDiffCommand("diff", models.DirectionLocal, "Show local changes against the server"),
		newDiffCommand("localdiff", models.DirectionLocal, "Show local changes against the server"),
		newDiffCommand("serverdiff", models.DirectionServer, "Show server changes against the checkout"),
	}
}

func newDiffCommand(name string, direction models.Direction, short string) *cobra.Command {
	var flags commandFlags

	cmd := &cobra.Command{
		Use:   name + " [path]",
		Short: short,
		Long: short + ` as a unified diff of the content below path, the working
directory by default. Whitespace-only changes are ignored.`,
		Args: optionalPath,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			sess, err := newSession(cmd, path, flags)
			if err != nil {
				return err
			}
			_, err = sess.engine.Diff(cmd.Context(), path, direction)
			return sess.finish(err)
		},
	}

	cmd.Flags().BoolVar(&flags.NoColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&flags.DiffTool, "tool", "", "comparison backend: external, builtin")

	return cmd
}
