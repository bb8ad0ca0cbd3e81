package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/riskibarqy/scout-pro/internal/app"
	"github.com/riskibarqy/scout-pro/internal/config"
	"github.com/riskibarqy/scout-pro/internal/observability"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
)

const shutdownTimeout = 10 * time.Second

type runnerOptions struct {
	// Output receives command results. Defaults to stdout.
	Output io.Writer
	// LogOutput receives structured logs. Defaults to stderr so results stay pipeable.
	LogOutput  io.Writer
	LoadConfig func() (config.Config, error)
}

// runner owns the command actions. Each action opens its own session.
type runner struct {
	out        io.Writer
	logOut     io.Writer
	loadConfig func() (config.Config, error)
}

func newRunner(opts runnerOptions) *runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	return &runner{out: opts.Output, logOut: opts.LogOutput, loadConfig: opts.LoadConfig}
}

type session struct {
	cfg    config.Config
	logger *logging.Logger
	app    *app.App
	close  func()
}

func (r *runner) open(ctx context.Context) (*session, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, flushLogs, err := observability.NewLogger(cfg, r.logOut)
	if err != nil {
		return nil, err
	}
	logging.SetDefault(logger)

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		_ = flushLogs(context.Background())
		return nil, err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = shutdownTracing(context.Background())
		_ = flushLogs(context.Background())
		return nil, err
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		app:    a,
		close: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			_ = a.Close()
			if err := shutdownTracing(shutdownCtx); err != nil {
				logger.Warn("shutdown tracing", "error", err)
			}
			_ = flushLogs(shutdownCtx)
		},
	}, nil
}
