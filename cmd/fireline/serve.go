package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dusk-indust/fireline/internal/analysis"
	"github.com/dusk-indust/fireline/internal/config"
	"github.com/dusk-indust/fireline/internal/ctxlog"
	"github.com/dusk-indust/fireline/internal/mcptools"
)

func runServeMCP(flags cliFlags, cfg *config.ProjectConfig) error {
	svc := newCompletionService(flags, cfg)
	runCfg := analysis.Config{
		Strategy:    analysis.Strategy(flags.Strategy),
		Budget:      flags.Budget,
		StepTimeout: flags.StepTimeout,
		MaxAttempts: flags.MaxAttempts,
		Temperature: cfg.Temperature,
	}

	ctx := ctxlog.WithLogger(context.Background(), newLogger(flags.Verbose))
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcptools.NewServer(svc, runCfg)
	return mcptools.RunStdio(ctx, server)
}
