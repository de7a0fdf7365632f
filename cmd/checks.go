package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/printer"
)

// ChecksCmd should be used to represent the 'checks' command.
type ChecksCmd struct {
	*cmd.BaseCmd
	Format cmd.OutputFormat
	opts   cmdopts.CmdOptions
}

// NewChecksCmd creates a newly configured (Cobra) command.
func NewChecksCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ChecksCmd{
		BaseCmd: baseCmd,
		Format:  cmd.FormatText,
		opts:    opts,
	}

	cobraCommand := &cobra.Command{
		Use:   "checks [base-url]",
		Short: "Lists the checks that would be run",
		Long:  "Lists the resolved check definitions, from the checks file when configured or the built-in defaults.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.run,
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	return cobraCommand, nil
}

func (c *ChecksCmd) run(cobraCmd *cobra.Command, args []string) error {
	if c.opts.EnvLookup != nil {
		c.SetLookup(c.opts.EnvLookup)
	}
	c.SetChecksLoader(c.opts.ChecksLoader)

	handler, err := cmd.FormatHandler(cobraCmd.OutOrStdout(), c.Format, printer.NewChecksListPrinter())
	if err != nil {
		return err
	}

	var cfgOpts []config.Option
	if len(args) > 0 {
		cfgOpts = append(cfgOpts, config.WithBaseURL(args[0]))
	}

	cfg, err := c.LoadConfig(cfgOpts...)
	if err != nil {
		return output.ReportError(handler, err)
	}

	defs, err := c.CheckDefinitions(cfg)
	if err != nil {
		return output.ReportError(handler, err)
	}

	return handler.HandleResults(printer.NewCheckDefinitionResults(defs)...)
}
