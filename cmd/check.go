package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/printer"
)

// CheckCmd should be used to represent the 'check' command.
type CheckCmd struct {
	*cmd.BaseCmd
	Format cmd.OutputFormat
	Alert  bool
	opts   cmdopts.CmdOptions
}

// NewCheckCmd creates a newly configured (Cobra) command.
func NewCheckCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &CheckCmd{
		BaseCmd: baseCmd,
		Format:  cmd.FormatText,
		opts:    opts,
	}

	cobraCommand := &cobra.Command{
		Use:     "check [base-url]",
		Aliases: []string{"single"},
		Short:   "Runs a single evaluation cycle and exits",
		Long: "Runs every check once against the deployment and prints the verdict. " +
			"Exits with status 0 when the deployment is healthy and 1 when it is not.",
		Args: cobra.MaximumNArgs(1),
		RunE: c.run,
	}

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format (one of: %s)", allowed.String()),
	)

	cobraCommand.Flags().BoolVar(
		&c.Alert,
		"alert",
		false,
		"Dispatch an alert when the deployment is unhealthy",
	)

	return cobraCommand, nil
}

func (c *CheckCmd) run(cobraCmd *cobra.Command, args []string) error {
	c.applyOptions()
	logger := c.Logger()

	out := cobraCmd.OutOrStdout()

	handler, err := cmd.FormatHandler(out, c.Format, &printer.VerdictPrinter{})
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

	// Only the text format carries the status line, structured formats must stay parseable.
	statusOut := io.Discard
	if c.Format == cmd.FormatText {
		statusOut = out
	}

	p, err := newPipeline(logger, cfg, defs, c.opts, statusOut, c.Alert)
	if err != nil {
		return output.ReportError(handler, err)
	}

	logger.Debug("Running single check cycle", "baseURL", cfg.BaseURL, "checks", len(defs))
	v, runErr := p.runner.RunOnce(cobraCmd.Context())

	if c.Format == cmd.FormatText {
		_, _ = fmt.Fprintln(out, "")
	}
	if err := handler.HandleResult(printer.NewVerdictResult(v, cfg.HealthyThreshold)); err != nil {
		return err
	}

	return runErr
}

func (c *CheckCmd) applyOptions() {
	if c.opts.EnvLookup != nil {
		c.SetLookup(c.opts.EnvLookup)
	}
	c.SetChecksLoader(c.opts.ChecksLoader)
}
