package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/checks"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/flags"
)

type BaseCmd struct {
	logger      hclog.Logger
	checkLoader checks.Loader
	lookup      config.LookupFunc
}

// SetLogger updates the command's logger
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.logger = logger
}

// SetLookup replaces the environment lookup used when loading configuration.
func (c *BaseCmd) SetLookup(lookup config.LookupFunc) {
	c.lookup = lookup
}

// SetChecksLoader replaces the loader used to read checks files.
func (c *BaseCmd) SetChecksLoader(l checks.Loader) {
	c.checkLoader = l
}

// Logger returns the current logger for the command
func (c *BaseCmd) Logger() hclog.Logger {
	if c.logger != nil {
		return c.logger
	}

	// Get log level from flags first, then environment, then default
	env := c.envLookup()
	logLevel := flags.LogLevel
	if logLevel == "" {
		logLevel = strings.ToLower(strings.TrimSpace(lookupValue(env, flags.EnvVarLogLevel)))
		if logLevel == "" {
			logLevel = flags.DefaultLogLevel
		}
	}

	// Get log path from flags first, then environment
	logPath := flags.LogPath
	if logPath == "" {
		logPath = strings.TrimSpace(lookupValue(env, flags.EnvVarLogPath))
	}

	logFormat := flags.LogFormat
	if logFormat == "" {
		logFormat = strings.ToLower(strings.TrimSpace(lookupValue(env, flags.EnvVarLogFormat)))
	}

	var output io.Writer = os.Stderr
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to open log file (%s): %v, using stderr\n", logPath, err)
		} else {
			output = f
		}
	}

	c.logger = hclog.New(&hclog.LoggerOptions{
		Name:       "deploymon",
		Level:      hclog.LevelFromString(logLevel),
		Output:     output,
		JSONFormat: logFormat == flags.LogFormatJSON,
	})

	return c.logger
}

func (c *BaseCmd) envLookup() config.LookupFunc {
	if c.lookup == nil {
		return os.LookupEnv
	}
	return c.lookup
}

func lookupValue(lookup config.LookupFunc, key string) string {
	v, _ := lookup(key)
	return v
}

// LoadConfig reads the configuration from the environment, applies opts on top, and validates it.
// The global checks file flag is applied before opts.
func (c *BaseCmd) LoadConfig(opts ...config.Option) (*config.Config, error) {
	lookup := c.envLookup()

	all := append([]config.Option{config.WithChecksFile(flags.ChecksFile)}, opts...)
	cfg, err := config.Load(lookup, all...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfigLoadFailed, err)
	}

	return cfg, nil
}

// CheckDefinitions resolves the checks to run against the configured base URL,
// loading them from the checks file when one is configured.
func (c *BaseCmd) CheckDefinitions(cfg *config.Config) ([]domain.CheckDefinition, error) {
	specs := checks.Defaults()

	if cfg.ChecksFile != "" {
		loader := c.checkLoader
		if loader == nil {
			loader = &checks.FileLoader{}
		}

		loaded, err := loader.Load(cfg.ChecksFile)
		if err != nil {
			return nil, err
		}
		specs = loaded
		c.Logger().Debug("Loaded checks file", "path", cfg.ChecksFile, "checks", len(specs))
	}

	return checks.Resolve(cfg.BaseURL, specs)
}
