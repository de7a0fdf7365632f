package cmd

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/dduksang/deploymon/internal/alert"
	"github.com/dduksang/deploymon/internal/board"
	"github.com/dduksang/deploymon/internal/checks"
	"github.com/dduksang/deploymon/internal/cmd"
	cmdopts "github.com/dduksang/deploymon/internal/cmd/options"
	"github.com/dduksang/deploymon/internal/config"
	"github.com/dduksang/deploymon/internal/domain"
	"github.com/dduksang/deploymon/internal/health"
	"github.com/dduksang/deploymon/internal/metrics"
	"github.com/dduksang/deploymon/internal/probe"
	"github.com/dduksang/deploymon/internal/runner"
	"github.com/dduksang/deploymon/internal/server"
)

// pipeline holds the components behind a monitoring run.
type pipeline struct {
	cfg      *config.Config
	board    *board.Board
	recorder *metrics.Recorder
	runner   *runner.Runner
}

// newPipeline wires the prober, evaluator, recorder, board and runner for cfg.
// Status lines are written to out, alerts are only dispatched when alerts is true.
func newPipeline(
	logger hclog.Logger,
	cfg *config.Config,
	defs []domain.CheckDefinition,
	opts cmdopts.CmdOptions,
	out io.Writer,
	alerts bool,
) (*pipeline, error) {
	proberOpts := []probe.Option{probe.WithUserAgent(cmd.UserAgent())}
	if opts.HTTPClient != nil {
		proberOpts = append(proberOpts, probe.WithHTTPClient(opts.HTTPClient))
	}
	prober, err := probe.NewHTTPProber(logger, proberOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create prober: %w", err)
	}

	evaluator, err := health.NewEvaluator(
		logger,
		prober,
		health.WithProbeTimeout(cfg.ProbeTimeout),
		health.WithHealthyThreshold(cfg.HealthyThreshold),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	recorder, err := metrics.NewRecorder(cfg.MetricsCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	b := board.NewBoard(checks.Names(defs))

	runnerOpts := []runner.Option{
		runner.WithInterval(cfg.CheckInterval),
		runner.WithOutput(out),
		runner.WithBoard(b),
		runner.WithOptimisticStart(cfg.OptimisticStart),
	}

	if alerts {
		sink, err := newSink(logger, cfg, opts)
		if err != nil {
			return nil, err
		}
		dispatcher, err := alert.NewDispatcher(logger, sink, recorder, cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create alert dispatcher: %w", err)
		}
		runnerOpts = append(runnerOpts, runner.WithDispatcher(dispatcher))
	}

	r, err := runner.NewRunner(logger, evaluator, recorder, defs, runnerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}

	return &pipeline{
		cfg:      cfg,
		board:    b,
		recorder: recorder,
		runner:   r,
	}, nil
}

// apiServer creates the status API server reading from the pipeline's board and recorder.
func (p *pipeline) apiServer(logger hclog.Logger) (*server.APIServer, error) {
	deps, err := server.NewDependencies(logger, p.board, p.recorder, p.cfg.APIAddr)
	if err != nil {
		return nil, fmt.Errorf("error configuring status API dependencies: %w", err)
	}

	return server.NewAPIServer(
		deps,
		server.WithCORSAllowOrigins(p.cfg.CORSOrigins),
		server.WithShutdownTimeout(p.cfg.ShutdownTimeout),
	)
}

// newSink returns a sink for every configured alert channel.
func newSink(logger hclog.Logger, cfg *config.Config, opts cmdopts.CmdOptions) (alert.Sink, error) {
	var sinks alert.MultiSink

	if cfg.TelegramEnabled() {
		s, err := alert.NewTelegramSink(opts.HTTPClient, opts.TelegramAPI, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return nil, fmt.Errorf("failed to create telegram alert sink: %w", err)
		}
		sinks = append(sinks, s)
	}

	if cfg.WebhookURL != "" {
		s, err := alert.NewWebhookSink(opts.HTTPClient, cfg.WebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create webhook alert sink: %w", err)
		}
		sinks = append(sinks, s)
	}

	switch len(sinks) {
	case 0:
		logger.Warn("No alert channel configured, alerts will only be logged")
		return &alert.NopSink{Logger: logger.Named("alert")}, nil
	case 1:
		return sinks[0], nil
	default:
		return sinks, nil
	}
}
