package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tunedrive/tunedrive/internal/config"
	"github.com/tunedrive/tunedrive/internal/ctxlog"
	"github.com/tunedrive/tunedrive/internal/invoker"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model

	invoker    *invoker.Invoker
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and a loaded
// workflow model.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.WorkflowPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load workflow configuration: %w", err))
	}
	if len(model.Workflows) == 0 {
		panic(fmt.Errorf("no workflow blocks found under %s", appConfig.WorkflowPath))
	}
	logger.Debug("Workflow configuration loaded.", "workflows", model.WorkflowNames())

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  model,
	}
}

// Model returns the loaded workflow model. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// selectWorkflow picks the workflow to run: the named one when -w was given,
// otherwise the single loaded block.
func (a *App) selectWorkflow() (*config.Workflow, error) {
	if a.config.WorkflowName != "" {
		wf, ok := a.model.Workflows[a.config.WorkflowName]
		if !ok {
			return nil, fmt.Errorf("workflow %q not found (available: %v)", a.config.WorkflowName, a.model.WorkflowNames())
		}
		return wf, nil
	}

	if len(a.model.Workflows) == 1 {
		for _, wf := range a.model.Workflows {
			return wf, nil
		}
	}

	return nil, fmt.Errorf("multiple workflows loaded, choose one with -w (available: %v)", a.model.WorkflowNames())
}
