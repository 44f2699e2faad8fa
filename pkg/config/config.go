package config

import (
	"strings"
	"time"

	"github.com/sdejongh/jcrsync/pkg/models"
)

const (
	// DefaultServer is the package manager host used when nothing else is configured
	DefaultServer = "http://localhost:4502"
	// DefaultCredentials is the user:password pair used when nothing else is configured
	DefaultCredentials = "admin:admin"
	// DefaultPackageManager is the package manager service endpoint path
	DefaultPackageManager = "/crx/packmgr/service/.json"
	// DefaultPackageGroup is the group temporary packages are created in
	DefaultPackageGroup = "tmp/repo"
)

// Config represents the application configuration.
// It is built once per invocation by Resolve and treated as a read-only value.
type Config struct {
	Server         string         `yaml:"server"`
	Credentials    Credentials    `yaml:"credentials"`
	PackageManager string         `yaml:"package_manager"`
	PackageGroup   string         `yaml:"package_group"`
	Force          bool           `yaml:"-"`
	Quiet          bool           `yaml:"-"`
	Transfer       TransferConfig `yaml:"transfer"`
	Output         OutputConfig   `yaml:"output"`
	Diff           DiffConfig     `yaml:"diff"`
	Logging        LoggingConfig  `yaml:"logging"`
}

// TransferConfig holds HTTP transfer settings
type TransferConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	BandwidthLimit int64         `yaml:"bandwidth_limit"` // bytes per second, 0 = unlimited
	Progress       bool          `yaml:"progress"`
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Format string `yaml:"format"` // "human" or "json"
	Color  bool   `yaml:"color"`
}

// DiffConfig selects the tree comparison backend
type DiffConfig struct {
	Tool string `yaml:"tool"` // "external" or "builtin"
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	Format string `yaml:"format"` // "json" or "text"
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	File   string `yaml:"file"`   // Log file path (empty = console only)
}

// Credentials is a user:password pair
type Credentials string

// Split returns the user and password. The password is everything after the
// first colon, so it may itself contain colons.
func (c Credentials) Split() (user, password string) {
	user, password, _ = strings.Cut(string(c), ":")
	return user, password
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server:         DefaultServer,
		Credentials:    DefaultCredentials,
		PackageManager: DefaultPackageManager,
		PackageGroup:   DefaultPackageGroup,
		Transfer: TransferConfig{
			Timeout:  5 * time.Minute,
			Progress: true,
		},
		Output: OutputConfig{
			Format: "human",
			Color:  true,
		},
		Diff: DiffConfig{
			Tool: "external",
		},
		Logging: LoggingConfig{
			Format: "text",
			Level:  "warn",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server == "" {
		return &models.ValidationError{
			Field:   "server",
			Message: "must not be empty",
		}
	}

	if !strings.HasPrefix(c.Server, "http://") && !strings.HasPrefix(c.Server, "https://") {
		return &models.ValidationError{
			Field:   "server",
			Message: "must be an http:// or https:// URL",
		}
	}

	if !strings.Contains(string(c.Credentials), ":") {
		return &models.ValidationError{
			Field:   "credentials",
			Message: "must be in the form user:password",
		}
	}

	if !strings.HasPrefix(c.PackageManager, "/") {
		return &models.ValidationError{
			Field:   "package_manager",
			Message: "must be an absolute endpoint path",
		}
	}

	if c.PackageGroup == "" {
		return &models.ValidationError{
			Field:   "package_group",
			Message: "must not be empty",
		}
	}

	if c.Transfer.Timeout <= 0 {
		return &models.ValidationError{
			Field:   "transfer.timeout",
			Message: "must be positive",
		}
	}

	if c.Transfer.BandwidthLimit < 0 {
		return &models.ValidationError{
			Field:   "transfer.bandwidth_limit",
			Message: "must not be negative",
		}
	}

	validFormats := map[string]bool{"human": true, "json": true}
	if !validFormats[c.Output.Format] {
		return &models.ValidationError{
			Field:   "output.format",
			Message: "must be 'human' or 'json'",
		}
	}

	validTools := map[string]bool{"external": true, "builtin": true}
	if !validTools[c.Diff.Tool] {
		return &models.ValidationError{
			Field:   "diff.tool",
			Message: "must be 'external' or 'builtin'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	return nil
}

// ServerLabel returns the server URL without a trailing slash
func (c *Config) ServerLabel() string {
	return strings.TrimRight(c.Server, "/")
}
