package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	ideas "github.com/vivaneiona/reddit-ideas"
	"github.com/vivaneiona/reddit-ideas/sheets"
)

// app carries flag values and output streams shared by every subcommand.
type app struct {
	stdout io.Writer
	stderr io.Writer

	cfgPath   string
	logLevel  string
	promptDir string

	// build wires the pipeline; tests swap it for a fake.
	build func(ctx context.Context, cfg *Config, promptDir string, log *slog.Logger) (*pipeline, error)
}

type pipeline struct {
	analyzer *ideas.Analyzer
	registry *prometheus.Registry
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, build: buildPipeline}
}

// setup loads configuration, installs the logger and wires the pipeline.
func (a *app) setup(ctx context.Context) (*Config, *slog.Logger, *pipeline, error) {
	cfg, err := LoadConfig(a.cfgPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	log := slog.New(tint.NewHandler(a.stderr, &tint.Options{
		Level:      cfg.SlogLevel(),
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	p, err := a.build(ctx, cfg, a.promptDir, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, p, nil
}

func buildPipeline(ctx context.Context, cfg *Config, promptDir string, log *slog.Logger) (*pipeline, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := ideas.NewMetrics(reg)

	backend, err := ideas.NewGenaiBackend(ctx, cfg.GeminiAPIKey, httpClient, cfg.GeminiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ideas.ErrExternalService, err)
	}
	invoker := ideas.NewFallbackInvoker(backend, cfg.ModelChain(), log)
	invoker.SetMetrics(metrics)
	log.Debug("Model fallback chain", "models", invoker.Models())

	var promptOpts []ideas.PromptOption
	if promptDir != "" {
		promptOpts = append(promptOpts, ideas.WithFS(os.DirFS(promptDir), "."))
	}
	prompts, err := ideas.NewStickPromptProvider(promptOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: load prompts: %v", ideas.ErrInvalidInput, err)
	}

	fetcher := ideas.NewRedditClient(httpClient, log, ideas.WithRequestRate(cfg.RedditRPS, 1))

	an := ideas.NewWithLogger(fetcher, invoker, prompts, log)
	an.SetMetrics(metrics)

	if cfg.SheetsEnabled() {
		opts := []sheets.Option{sheets.WithRange(cfg.SheetRange), sheets.WithLogger(log)}
		if cfg.SheetHeader {
			opts = append(opts, sheets.WithHeaderRow())
		}
		exp, err := sheets.New(ctx, cfg.GoogleSheetID, cfg.GoogleCredentialsPath, opts...)
		if err != nil {
			log.Warn("Sheet export disabled", "error", err)
		} else {
			an.SetExporter(exp)
			log.Debug("Sheet export enabled", "sheet_id", cfg.GoogleSheetID, "range", cfg.SheetRange)
		}
	}

	return &pipeline{analyzer: an, registry: reg}, nil
}
