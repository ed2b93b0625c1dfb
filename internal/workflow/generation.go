package workflow

import (
	"context"

	"github.com/tunedrive/tunedrive/internal/assemble"
	"github.com/tunedrive/tunedrive/internal/config"
	"github.com/tunedrive/tunedrive/internal/dataset"
	"github.com/tunedrive/tunedrive/internal/pipeline"
	"github.com/tunedrive/tunedrive/internal/topology"
	"github.com/tunedrive/tunedrive/internal/tracking"
)

// buildGeneration wires the image-personalization pipeline. The generation
// workflow always runs the launcher in fp16; the base diffusion weights ship
// in half precision.
func buildGeneration(deps *Deps, wf *config.Workflow) ([]pipeline.Stage, error) {
	// runCfg flows from the assemble stage into the invoke stage.
	var runCfg *assemble.RunConfig

	stages := []pipeline.Stage{
		pipeline.NewStage("prepare-data", func(ctx context.Context) error {
			_, err := dataset.CopyInstanceImages(ctx, wf.Dataset.SourceDir, wf.Dataset.InstanceDir)
			return err
		}),

		pipeline.NewStage("configure-topology", func(ctx context.Context) error {
			t := topology.Detect(ctx, topology.PrecisionFP16)
			return deps.TopologyStore.Save(ctx, t)
		}),

		pipeline.NewStage("assemble-config", func(ctx context.Context) error {
			cfg, err := assemble.Build(wf, deps.LookupEnv)
			if err != nil {
				return err
			}
			if err := cfg.EnsurePrepared(); err != nil {
				return err
			}
			runCfg = cfg
			return nil
		}),

		pipeline.NewStage("invoke-training", func(ctx context.Context) error {
			return invokeTraining(ctx, deps, runCfg)
		}),
	}

	return stages, nil
}

// invokeTraining resolves the tracking endpoint and hands the assembled run
// configuration to the invoker. Shared by both workflow kinds.
func invokeTraining(ctx context.Context, deps *Deps, runCfg *assemble.RunConfig) error {
	uri, err := tracking.ResolveURI(deps.LookupEnv)
	if err != nil {
		return err
	}

	pretrained, _ := runCfg.Lookup("pretrained_model_name_or_path")
	if pretrained == "" {
		pretrained, _ = runCfg.Lookup("model_name_or_path")
	}
	env := tracking.ChildEnv(uri, tracking.ExperimentName(runCfg.Kind(), pretrained))

	return deps.Invoker.Run(ctx, runCfg, env)
}
