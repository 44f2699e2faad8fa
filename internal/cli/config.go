package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/jcrsync/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View the effective jcrsync configuration or create a default configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolveConfig("", commandFlags{})
			if err != nil {
				return err
			}
			cfg := res.Config
			user, _ := cfg.Credentials.Split()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Server: %s\n", cfg.ServerLabel())
			fmt.Fprintf(out, "User: %s\n", user)
			fmt.Fprintf(out, "Package Manager: %s\n", cfg.PackageManager)
			fmt.Fprintf(out, "Package Group: %s\n", cfg.PackageGroup)
			fmt.Fprintf(out, "Timeout: %s\n", cfg.Transfer.Timeout)
			fmt.Fprintf(out, "Bandwidth Limit: %d\n", cfg.Transfer.BandwidthLimit)
			fmt.Fprintf(out, "Output Format: %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "Diff Tool: %s\n", cfg.Diff.Tool)
			fmt.Fprintf(out, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(out, "Log Level: %s\n", cfg.Logging.Level)
			for _, file := range res.Files {
				fmt.Fprintf(out, "Loaded: %s\n", file)
			}
			for _, warning := range res.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", warning)
			}

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !globalFlags.Force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveToFile(config.Default(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}
}
