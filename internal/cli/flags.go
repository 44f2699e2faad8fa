package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile  string
	Server      string
	Credentials string
	Force       bool
	Quiet       bool
	LogFile     string
	LogLevel    string
	LogFormat   string
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/jcrsync/config.yaml)",
	)
	flags.StringVarP(
		&globalFlags.Server,
		"server",
		"s",
		"",
		"server base URL (default http://localhost:4502)",
	)
	flags.StringVarP(
		&globalFlags.Credentials,
		"credentials",
		"u",
		"",
		"credentials as user:password (default admin:admin)",
	)
	flags.BoolVarP(
		&globalFlags.Force,
		"force",
		"f",
		false,
		"overwrite without asking for confirmation",
	)
	flags.BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress non-error output and confirmations",
	)
	flags.StringVar(&globalFlags.LogFile, "log-file", "", "write logs to file")
	flags.StringVar(&globalFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&globalFlags.LogFormat, "log-format", "", "log file format: text, json")
}
