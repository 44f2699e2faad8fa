package cli

import (
	"github.com/spf13/cobra"
)

// NewCheckoutCommand creates the checkout command
func NewCheckoutCommand() *cobra.Command {
	var flags commandFlags

	cmd := &cobra.Command{
		Use:   "checkout <repository-path>",
		Short: "Check out a repository path into the local checkout",
		Long: `Download the content below a repository path, such as /apps/site, into the
jcr_root found from the working directory. A jcr_root directory is created in
the working directory when none exists.`,
		Args: requiredPath,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd, "", flags)
			if err != nil {
				return err
			}
			_, err = sess.engine.Checkout(cmd.Context(), args[0])
			return sess.finish(err)
		},
	}

	cmd.Flags().StringVar(&flags.Bandwidth, "bandwidth", "", "download bandwidth limit (e.g. \"512K\", \"10M\")")

	return cmd
}

// NewPutCommand creates the put command
func NewPutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put [path]",
		Short: "Upload local content to the server",
		Long: `Package the file or directory at path, the working directory by default, and
install it on the server, replacing the server content below the same path.`,
		Args: optionalPath,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			sess, err := newSession(cmd, path, commandFlags{})
			if err != nil {
				return err
			}
			_, err = sess.engine.Put(cmd.Context(), path)
			return sess.finish(err)
		},
	}

	return cmd
}

// NewGetCommand creates the get command
func NewGetCommand() *cobra.Command {
	var flags commandFlags

	cmd := &cobra.Command{
		Use:   "get [path]",
		Short: "Download server content into the checkout",
		Long: `Replace the local content at path, the working directory by default, with the
server content below the same path.`,
		Args: optionalPath,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := pathArg(args)
			sess, err := newSession(cmd, path, flags)
			if err != nil {
				return err
			}
			_, err = sess.engine.Get(cmd.Context(), path)
			return sess.finish(err)
		},
	}

	cmd.Flags().StringVar(&flags.Bandwidth, "bandwidth", "", "download bandwidth limit (e.g. \"512K\", \"10M\")")

	return cmd
}
