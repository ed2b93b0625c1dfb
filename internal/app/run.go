package app

import (
	"context"
	"fmt"
	"os"

	"github.com/tunedrive/tunedrive/internal/assemble"
	"github.com/tunedrive/tunedrive/internal/ctxlog"
	"github.com/tunedrive/tunedrive/internal/invoker"
	"github.com/tunedrive/tunedrive/internal/pipeline"
	"github.com/tunedrive/tunedrive/internal/topology"
	"github.com/tunedrive/tunedrive/internal/workflow"
)

// Run executes the selected workflow's stage pipeline.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	wf, err := a.selectWorkflow()
	if err != nil {
		return err
	}

	wf.Apply(a.config.Overrides)
	assemble.ApplyEnv(wf, os.Getenv)
	if err := wf.Validate(); err != nil {
		return err
	}

	topoPath := a.config.TopologyPath
	if topoPath == "" {
		topoPath, err = topology.DefaultPath()
		if err != nil {
			return err
		}
	}
	store := topology.NewStore(topoPath)

	a.invoker = invoker.New(a.config.Launcher, topoPath, a.config.LogDir, a.outW)

	if a.config.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		defer a.stopHealthcheckServer(ctx)
	}

	deps := &workflow.Deps{
		Console:       a.outW,
		TopologyStore: store,
		Invoker:       a.invoker,
		LookupEnv:     os.Getenv,
		PrepareOnly:   a.config.PrepareOnly,
	}

	stages, err := workflow.Build(deps, wf)
	if err != nil {
		return err
	}

	a.logger.Info("🚀 Starting workflow run.", "workflow", wf.Name, "kind", wf.Kind, "stages", len(stages))
	if err := pipeline.Run(ctx, stages); err != nil {
		return fmt.Errorf("workflow %s: %w", wf.Name, err)
	}
	a.logger.Info("🏁 Workflow finished.", "workflow", wf.Name)

	a.logger.Debug("App.Run method finished.")
	return nil
}
