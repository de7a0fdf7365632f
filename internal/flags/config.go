package flags

import (
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	// Env vars
	EnvVarChecksFile = "MONITOR_CHECKS_FILE"
	EnvVarLogPath    = "MONITOR_LOG_PATH"
	EnvVarLogLevel   = "MONITOR_LOG_LEVEL"
	EnvVarLogFormat  = "MONITOR_LOG_FORMAT"

	// Defaults
	DefaultChecksFile = ""
	DefaultLogPath    = ""
	DefaultLogLevel   = "info"
	DefaultLogFormat  = LogFormatText

	// Flag names
	FlagNameChecksFile = "checks-file"
	FlagNameLogPath    = "log-path"
	FlagNameLogLevel   = "log-level"
	FlagNameLogFormat  = "log-format"

	// Log formats
	LogFormatText = "text"
	LogFormatJSON = "json"
)

var (
	ChecksFile string
	LogPath    string
	LogLevel   string
	LogFormat  string
)

// LookupFunc reads an environment variable, with the semantics of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// InitFlags registers the global flags on fs, using environment variables as defaults.
func InitFlags(fs *pflag.FlagSet) {
	InitFlagsWithLookup(fs, os.LookupEnv)
}

// InitFlagsWithLookup registers the global flags on fs, reading their defaults through lookup.
func InitFlagsWithLookup(fs *pflag.FlagSet, lookup LookupFunc) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	initChecksFile(fs, lookup)
	initLogger(fs, lookup)
}

func envValue(lookup LookupFunc, key string) string {
	v, _ := lookup(key)
	return strings.TrimSpace(v)
}

func initChecksFile(fs *pflag.FlagSet, lookup LookupFunc) {
	if ChecksFile == "" {
		if env := envValue(lookup, EnvVarChecksFile); env != "" {
			ChecksFile = env
		} else {
			ChecksFile = DefaultChecksFile
		}
	}
	fs.StringVar(
		&ChecksFile,
		FlagNameChecksFile,
		ChecksFile,
		"path to a checks file (.toml, .yaml, .yml or .json) replacing the built-in checks",
	)
}

func initLogger(fs *pflag.FlagSet, lookup LookupFunc) {
	if LogPath == "" {
		if env := envValue(lookup, EnvVarLogPath); env != "" {
			LogPath = env
		} else {
			LogPath = DefaultLogPath
		}
	}
	fs.StringVar(&LogPath, FlagNameLogPath, LogPath, "path to a log file, logs are written to stderr when empty")

	if LogLevel == "" {
		if env := envValue(lookup, EnvVarLogLevel); env != "" {
			LogLevel = strings.ToLower(env)
		} else {
			LogLevel = DefaultLogLevel
		}
	}
	fs.StringVar(&LogLevel, FlagNameLogLevel, LogLevel, "log level (trace, debug, info, warn, error, off)")

	if LogFormat == "" {
		if env := envValue(lookup, EnvVarLogFormat); env != "" {
			LogFormat = strings.ToLower(env)
		} else {
			LogFormat = DefaultLogFormat
		}
	}
	fs.StringVar(&LogFormat, FlagNameLogFormat, LogFormat, "log format (text, json)")
}
