package flags

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()

	t.Cleanup(func() {
		ChecksFile = ""
		LogPath = ""
		LogLevel = ""
		LogFormat = ""
	})
}

func TestConfig_InitChecksFile_EnvVars(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "env var value with extra white space",
			value:    "  /etc/deploymon/checks.yaml  ",
			expected: "/etc/deploymon/checks.yaml",
		},
		{
			name:     "env var empty string",
			value:    "",
			expected: DefaultChecksFile,
		},
		{
			name:     "env var only white space",
			value:    "   ",
			expected: DefaultChecksFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarChecksFile, tc.value)
			resetFlags(t)

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initChecksFile(fs, os.LookupEnv)

			require.Equal(t, tc.expected, ChecksFile)
			flag := fs.Lookup(FlagNameChecksFile)
			require.NotNil(t, flag)
			require.Equal(t, tc.expected, flag.Value.String())
		})
	}
}

func TestConfig_LoggerFlags_Precedence(t *testing.T) {
	tests := []struct {
		name           string
		envLogPath     string
		envLogLevel    string
		envLogFormat   string
		cmdLineArgs    []string
		expectedPath   string
		expectedLevel  string
		expectedFormat string
	}{
		{
			name:         "flags take precedence over env vars",
			envLogPath:   "/env/log/path.log",
			envLogLevel:  "WARN",
			envLogFormat: "text",
			cmdLineArgs: []string{
				"--" + FlagNameLogPath, "/flag/log/path.log",
				"--" + FlagNameLogLevel, "debug",
				"--" + FlagNameLogFormat, "json",
			},
			expectedPath:   "/flag/log/path.log",
			expectedLevel:  "debug",
			expectedFormat: LogFormatJSON,
		},
		{
			name:           "env vars used when flags not set",
			envLogPath:     "/env/only/path.log",
			envLogLevel:    "  INFO ",
			envLogFormat:   "JSON",
			expectedPath:   "/env/only/path.log",
			expectedLevel:  "info",
			expectedFormat: LogFormatJSON,
		},
		{
			name:           "defaults used when neither flags nor env vars set",
			expectedPath:   DefaultLogPath,
			expectedLevel:  DefaultLogLevel,
			expectedFormat: DefaultLogFormat,
		},
		{
			name:           "env var whitespace triggers default fallback",
			envLogPath:     "   ",
			envLogLevel:    "   ",
			envLogFormat:   "   ",
			expectedPath:   DefaultLogPath,
			expectedLevel:  DefaultLogLevel,
			expectedFormat: DefaultLogFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resetFlags(t)
			t.Setenv(EnvVarLogPath, tc.envLogPath)
			t.Setenv(EnvVarLogLevel, tc.envLogLevel)
			t.Setenv(EnvVarLogFormat, tc.envLogFormat)

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
			initLogger(fs, os.LookupEnv)
			require.NoError(t, fs.Parse(tc.cmdLineArgs))

			require.Equal(t, tc.expectedPath, LogPath)
			require.Equal(t, tc.expectedLevel, LogLevel)
			require.Equal(t, tc.expectedFormat, LogFormat)
		})
	}
}

func TestConfig_InitFlags(t *testing.T) {
	resetFlags(t)
	t.Setenv(EnvVarChecksFile, "")
	t.Setenv(EnvVarLogPath, "")
	t.Setenv(EnvVarLogLevel, "")
	t.Setenv(EnvVarLogFormat, "")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)

	for _, name := range []string{FlagNameChecksFile, FlagNameLogPath, FlagNameLogLevel, FlagNameLogFormat} {
		require.NotNil(t, fs.Lookup(name), name)
	}

	require.NoError(t, fs.Parse([]string{"--" + FlagNameChecksFile, "checks.toml"}))
	require.Equal(t, "checks.toml", ChecksFile)
}

func TestConfig_InitFlagsWithLookup(t *testing.T) {
	resetFlags(t)
	t.Setenv(EnvVarLogLevel, "error")

	env := map[string]string{
		EnvVarChecksFile: " checks.yaml ",
		EnvVarLogLevel:   "DEBUG",
		EnvVarLogFormat:  "json",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlagsWithLookup(fs, lookup)
	require.NoError(t, fs.Parse(nil))

	require.Equal(t, "checks.yaml", ChecksFile)
	require.Equal(t, "debug", LogLevel)
	require.Equal(t, LogFormatJSON, LogFormat)
	require.Equal(t, DefaultLogPath, LogPath)
}
