package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Overrides holds values given explicitly on the command line.
// Zero values mean "not given".
type Overrides struct {
	Server         string
	Credentials    string
	Force          bool
	Quiet          bool
	OutputFormat   string
	NoColor        bool
	DiffTool       string
	BandwidthLimit int64
	LogLevel       string
	LogFormat      string
	LogFile        string
}

// Sources lists every input of the configuration merge
type Sources struct {
	// UserFile is the YAML configuration file; missing is fine unless RequireUserFile is set
	UserFile        string
	RequireUserFile bool
	// WorkDir is where the .repo search starts
	WorkDir string
	// CheckoutRoot is the jcr_root directory that may hold a .vlt file
	CheckoutRoot string
	Flags        Overrides
}

// Resolution is the outcome of Resolve
type Resolution struct {
	Config Config
	// Files lists the configuration files that were applied, lowest precedence first
	Files []string
	// Warnings collects sources that were present but unusable
	Warnings []string
}

// Resolve builds the configuration by layering, lowest precedence first:
// defaults, the user YAML file, the nearest .repo file, the .vlt repository
// URL and finally explicit flags.
func Resolve(src Sources) (*Resolution, error) {
	res := &Resolution{}
	cfg := Default()

	if src.UserFile != "" {
		_, err := os.Stat(src.UserFile)
		switch {
		case err == nil:
			if err := mergeFile(cfg, src.UserFile); err != nil {
				return nil, err
			}
			res.Files = append(res.Files, src.UserFile)
		case os.IsNotExist(err) && !src.RequireUserFile:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if src.WorkDir != "" {
		if path, ok := FindRepoFile(src.WorkDir); ok {
			settings, err := ParseRepoFile(path)
			if err != nil {
				res.Warnings = append(res.Warnings, fmt.Sprintf("could not parse config file %s: %v", path, err))
			} else {
				if settings.Server != "" {
					cfg.Server = settings.Server
				}
				if settings.Credentials != "" {
					cfg.Credentials = Credentials(settings.Credentials)
				}
				res.Files = append(res.Files, path)
			}
		}
	}

	if src.CheckoutRoot != "" {
		server, ok, err := VaultServer(src.CheckoutRoot)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("could not load vault config: %v", err))
		} else if ok {
			cfg.Server = server
			res.Files = append(res.Files, filepath.Join(src.CheckoutRoot, VaultFileName))
		}
	}

	applyOverrides(cfg, src.Flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	res.Config = *cfg
	return res, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.Server != "" {
		cfg.Server = o.Server
	}
	if o.Credentials != "" {
		cfg.Credentials = Credentials(o.Credentials)
	}
	cfg.Force = o.Force
	cfg.Quiet = o.Quiet
	if o.OutputFormat != "" {
		cfg.Output.Format = o.OutputFormat
	}
	if o.NoColor {
		cfg.Output.Color = false
	}
	if o.DiffTool != "" {
		cfg.Diff.Tool = o.DiffTool
	}
	if o.BandwidthLimit > 0 {
		cfg.Transfer.BandwidthLimit = o.BandwidthLimit
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.LogFile != "" {
		cfg.Logging.File = o.LogFile
	}
}
