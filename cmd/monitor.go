package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/flags"
	"github.com/dduksang/deploymon/internal/printer"
	"github.com/dduksang/deploymon/internal/server"
)

// MonitorCmd should be used to represent the 'monitor' command.
type MonitorCmd struct {
	*cmd.BaseCmd
	Addr        string
	CORSOrigins []string
	Format      cmd.OutputFormat
	opts        cmdopts.CmdOptions
}

// NewMonitorCmd creates a newly configured (Cobra) command.
func NewMonitorCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &MonitorCmd{
		BaseCmd: baseCmd,
		Format:  cmd.FormatText,
		opts:    opts,
	}

	cobraCommand := &cobra.Command{
		Use:     "monitor [base-url] [interval-ms]",
		Aliases: []string{"start"},
		Short:   "Continuously monitors the deployment until interrupted",
		Long: "Runs an evaluation cycle immediately and then once per interval, alerting on every change " +
			"between healthy and unhealthy. Prints a summary report and exits 0 on SIGINT or SIGTERM.",
		Args: cobra.MaximumNArgs(2),
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"",
		fmt.Sprintf("Address for the status API to bind, disabled when empty (overrides %s)", config.EnvVarAPIAddr),
	)

	cobraCommand.Flags().StringArrayVar(
		&c.CORSOrigins,
		"cors-origin",
		nil,
		"Origin allowed to call the status API, can be repeated ('*' allows any origin)",
	)

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf("Specify the output format of the summary report (one of: %s)", allowed.String()),
	)

	return cobraCommand, nil
}

// run is configured (via NewMonitorCmd) to be called by the Cobra framework when the command is executed.
// It returns nil once monitoring has been stopped by a signal.
func (c *MonitorCmd) run(cobraCmd *cobra.Command, args []string) error {
	if c.opts.EnvLookup != nil {
		c.SetLookup(c.opts.EnvLookup)
	}
	c.SetChecksLoader(c.opts.ChecksLoader)
	logger := c.Logger()

	out := cobraCmd.OutOrStdout()

	// Validate the report format before any cycle runs.
	handler, err := cmd.FormatHandler(out, c.Format, printer.NewReportPrinter())
	if err != nil {
		return err
	}

	cfgOpts, err := c.configOptions(args)
	if err != nil {
		return output.ReportError(handler, err)
	}

	cfg, err := c.LoadConfig(cfgOpts...)
	if err != nil {
		return output.ReportError(handler, err)
	}

	defs, err := c.CheckDefinitions(cfg)
	if err != nil {
		return output.ReportError(handler, err)
	}

	// Status lines move to stderr when stdout carries a structured report.
	statusOut := out
	if c.Format != cmd.FormatText {
		statusOut = cobraCmd.ErrOrStderr()
	}

	p, err := newPipeline(logger, cfg, defs, c.opts, statusOut, true)
	if err != nil {
		return err
	}

	var srv *server.APIServer
	if cfg.APIEnabled() {
		if srv, err = p.apiServer(logger); err != nil {
			return err
		}
	}

	c.printBanner(cobraCmd, cfg, len(defs))

	// Create the signal handling context for the application.
	monitorCtx, monitorCtxCancel := signal.NotifyContext(
		cobraCmd.Context(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer monitorCtxCancel()

	g, gCtx := errgroup.WithContext(monitorCtx)
	g.Go(func() error {
		return p.runner.Run(gCtx)
	})

	if srv != nil {
		g.Go(func() error {
			if err := srv.Start(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("status API failed: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Monitoring stopped with error", "error", err)
		return err
	}

	logger.Info("Monitoring stopped")
	return handler.HandleResult(printer.NewReportResult(p.runner.Report()))
}

// configOptions converts positional arguments and flags into configuration overrides.
func (c *MonitorCmd) configOptions(args []string) ([]config.Option, error) {
	var opts []config.Option

	if len(args) > 0 {
		opts = append(opts, config.WithBaseURL(args[0]))
	}
	if len(args) > 1 {
		interval, err := config.ParseMillis("interval-ms", args[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrConfigLoadFailed, err)
		}
		opts = append(opts, config.WithCheckInterval(interval))
	}
	if c.Addr != "" {
		opts = append(opts, config.WithAPIAddr(c.Addr))
	}
	if len(c.CORSOrigins) > 0 {
		opts = append(opts, config.WithCORSOrigins(c.CORSOrigins...))
	}

	return opts, nil
}

func (c *MonitorCmd) printBanner(cobraCmd *cobra.Command, cfg *config.Config, checkCount int) {
	if c.Format != cmd.FormatText {
		return
	}

	banner := fmt.Sprintf("deploymon monitoring %s\n\n"+
		"  Checks:\t%d\n"+
		"  Interval:\t%s\n"+
		"  Threshold:\t%.0f%%\n",
		cfg.BaseURL, checkCount, cfg.CheckInterval, cfg.HealthyThreshold*100)

	if cfg.APIEnabled() {
		banner += fmt.Sprintf("  Status API:\thttp://%s/api/v1/health\n", cfg.APIAddr)
	}
	if cfg.ChecksFile != "" {
		banner += fmt.Sprintf("  Checks file:\t%s\n", cfg.ChecksFile)
	}
	if flags.LogPath != "" {
		banner += fmt.Sprintf("  Log file:\t%s => (%s)\n", flags.LogPath, flags.LogLevel)
	}

	banner += "\nPress Ctrl+C to stop.\n\n"
	_, _ = fmt.Fprint(cobraCmd.OutOrStdout(), banner)
}
