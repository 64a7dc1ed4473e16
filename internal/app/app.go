package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/checkgrid/internal/config"
	"github.com/vk/checkgrid/internal/ctxlog"
	"github.com/vk/checkgrid/internal/registry"
	"github.com/vk/checkgrid/internal/report"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	model    *config.Model
	config   *Config

	// summaries holds the results of the last Run, primarily for tests.
	summaries []*report.Summary
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
// Configuration that cannot be loaded is a fatal startup error and panics;
// the entrypoint recovers it into a clean exit.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.WorkflowPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded into unified model.", "workflows", len(model.Workflows))

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All runner modules registered.", "count", len(modules))

	if err := reg.Validate(ctx); err != nil {
		// A handler/signature mismatch is a programmer error in a module.
		panic(err)
	}
	if err := reg.ValidateSteps(ctx, model); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		model:    model,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Summaries returns the results of the last Run. Primarily for testing.
func (a *App) Summaries() []*report.Summary {
	return a.summaries
}
