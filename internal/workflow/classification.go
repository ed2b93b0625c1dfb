package workflow

import (
	"context"

	"github.com/tunedrive/tunedrive/internal/assemble"
	"github.com/tunedrive/tunedrive/internal/config"
	"github.com/tunedrive/tunedrive/internal/dataset"
	"github.com/tunedrive/tunedrive/internal/pipeline"
	"github.com/tunedrive/tunedrive/internal/topology"
)

// buildClassification wires the document token-classification pipeline.
func buildClassification(deps *Deps, wf *config.Workflow) ([]pipeline.Stage, error) {
	var runCfg *assemble.RunConfig

	stages := []pipeline.Stage{
		pipeline.NewStage("prepare-data", func(ctx context.Context) error {
			conv := &dataset.Converter{MaxSeqLength: wf.Dataset.MaxSeqLength}
			_, err := conv.ConvertArchive(ctx, wf.Dataset.ArchiveDir, wf.Dataset.OutDir)
			return err
		}),

		pipeline.NewStage("configure-topology", func(ctx context.Context) error {
			t := topology.Detect(ctx, wf.Schedule.MixedPrecision)
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
