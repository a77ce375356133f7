package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dusk-indust/fireline/internal/analysis"
	"github.com/dusk-indust/fireline/internal/completion"
	"github.com/dusk-indust/fireline/internal/config"
	"github.com/dusk-indust/fireline/internal/ctxlog"
	"github.com/dusk-indust/fireline/internal/export"
	"github.com/dusk-indust/fireline/internal/template"
	"github.com/dusk-indust/fireline/internal/templatedata"
	"github.com/dusk-indust/fireline/internal/transcript"
)

func runAnalyze(flags cliFlags, cfg *config.ProjectConfig) error {
	tpl, err := loadTemplate(flags)
	if err != nil {
		return err
	}
	tr, err := loadTranscript(flags)
	if err != nil {
		return err
	}

	svc := newCompletionService(flags, cfg)

	runCfg := analysis.Config{
		Strategy:    analysis.Strategy(flags.Strategy),
		Budget:      flags.Budget,
		StepTimeout: flags.StepTimeout,
		MaxAttempts: flags.MaxAttempts,
		Temperature: cfg.Temperature,
		OnProgress: func(current, total int, label string) {
			fmt.Fprintf(os.Stderr, "  [%d/%d] %s...\n", current+1, total, label)
		},
	}
	if cfg.MaxOutputTokens > 0 {
		runCfg.MaxOutputTokens = cfg.MaxOutputTokens
	}

	ctx := ctxlog.WithLogger(context.Background(), newLogger(flags.Verbose))
	out, err := analysis.New(svc, runCfg).Run(ctx, tpl, tr)
	if err != nil {
		return err
	}

	for _, issue := range out.ReferenceIssues {
		fmt.Fprintf(os.Stderr, "warning: %s\n", issue.Description)
	}

	ex := export.BuildRunExport(tpl, out)
	if flags.Out != "" {
		f, err := os.Create(flags.Out)
		if err != nil {
			return fmt.Errorf("create %s: %w", flags.Out, err)
		}
		defer f.Close()
		return ex.WriteJSON(f)
	}
	return ex.WriteJSON(os.Stdout)
}

// newCompletionService builds the HTTP completion client from flags and
// config.
func newCompletionService(flags cliFlags, cfg *config.ProjectConfig) completion.Service {
	baseURL := flags.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	opts := []completion.ClientOption{completion.WithAPIKey(cfg.APIKey())}
	if flags.Model != "" {
		opts = append(opts, completion.WithModel(flags.Model))
	}
	if flags.StepTimeout > 0 {
		opts = append(opts, completion.WithTimeout(flags.StepTimeout))
	}
	return completion.NewHTTPClient(baseURL, opts...)
}

// loadTemplate resolves the template for this invocation: an explicit file
// wins, then a named built-in, then the default built-in.
func loadTemplate(flags cliFlags) (*template.Template, error) {
	if flags.Template != "" {
		return template.Load(flags.Template)
	}
	name := flags.Builtin
	if name == "" {
		name = templatedata.DefaultName
	}
	return templatedata.Load(name)
}

// loadTranscript reads the transcript and optional supplemental material.
func loadTranscript(flags cliFlags) (*transcript.Transcript, error) {
	if flags.Transcript == "" {
		return nil, fmt.Errorf("a transcript is required; pass -transcript <file>")
	}
	text, err := os.ReadFile(flags.Transcript)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	tr := &transcript.Transcript{Text: string(text)}
	if flags.Supplemental != "" {
		sup, err := os.ReadFile(flags.Supplemental)
		if err != nil {
			return nil, fmt.Errorf("read supplemental material: %w", err)
		}
		tr.Supplemental = string(sup)
	}
	return tr, nil
}
