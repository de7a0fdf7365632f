package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/flags"
)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute builds the root command and runs it against the process arguments.
func Execute() error {
	rootCmd, err := NewRootCmd(&RootCmd{BaseCmd: &cmd.BaseCmd{}})
	if err != nil {
		return err
	}

	return rootCmd.Execute()
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(c *RootCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	rootCmd := &cobra.Command{
		Use:           "deploymon <command> [args]",
		Short:         "Monitors the health of a deployed web platform",
		Long:          c.longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       cmd.Version(),
	}

	// Global flags
	if opts.EnvLookup != nil {
		flags.InitFlagsWithLookup(rootCmd.PersistentFlags(), flags.LookupFunc(opts.EnvLookup))
	} else {
		flags.InitFlags(rootCmd.PersistentFlags())
	}

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewCheckCmd,
		NewMonitorCmd,
		NewChecksCmd,
		NewVersionCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(c.BaseCmd, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `'deploymon' probes the public surfaces of a deployment over HTTP, decides whether
the deployment as a whole is healthy, and alerts operators when that verdict changes.

Run 'deploymon check' once from CI or cron (exit code 1 when unhealthy), or
'deploymon monitor' to keep checking on an interval until interrupted.

Configuration is read from environment variables (MONITOR_BASE_URL, MONITOR_CHECK_INTERVAL_MS,
MONITOR_PROBE_TIMEOUT_MS, TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID, ...), command arguments take precedence.`
}
