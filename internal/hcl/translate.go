package hcl

import "github.com/tunedrive/tunedrive/internal/config"

// translateWorkflow converts the HCL-specific workflow schema into the
// agnostic model. Absent blocks translate to zero values, which the
// assembler later fills from the kind's preset table.
func translateWorkflow(b *workflowBlock) *config.Workflow {
	wf := &config.Workflow{
		Name: b.Name,
		Kind: config.Kind(b.Kind),
	}

	if b.Model != nil {
		wf.Model = config.ModelRef{
			Pretrained: b.Model.Pretrained,
			OutputDir:  b.Model.OutputDir,
		}
	}
	if b.Dataset != nil {
		wf.Dataset = config.Dataset{
			SourceDir:    b.Dataset.SourceDir,
			InstanceDir:  b.Dataset.InstanceDir,
			ClassDir:     b.Dataset.ClassDir,
			ArchiveDir:   b.Dataset.ArchiveDir,
			OutDir:       b.Dataset.OutDir,
			MaxSeqLength: b.Dataset.MaxSeqLength,
		}
	}
	if b.Prompt != nil {
		wf.Prompt = config.Prompt{
			Instance: b.Prompt.Instance,
			Class:    b.Prompt.Class,
		}
	}
	if b.Adapter != nil {
		wf.Adapter = config.Adapter{
			Rank:             b.Adapter.Rank,
			Alpha:            b.Adapter.Alpha,
			TextEncoderRank:  b.Adapter.TextEncoderRank,
			TextEncoderAlpha: b.Adapter.TextEncoderAlpha,
		}
	}
	if b.Schedule != nil {
		wf.Schedule = config.Schedule{
			LearningRate:              b.Schedule.LearningRate,
			LRScheduler:               b.Schedule.LRScheduler,
			LRWarmupSteps:             b.Schedule.LRWarmupSteps,
			MaxTrainSteps:             b.Schedule.MaxTrainSteps,
			NumTrainEpochs:            b.Schedule.NumTrainEpochs,
			TrainBatchSize:            b.Schedule.TrainBatchSize,
			GradientAccumulationSteps: b.Schedule.GradientAccumulationSteps,
			GradientCheckpointing:     b.Schedule.GradientCheckpointing,
			Resolution:                b.Schedule.Resolution,
			NumClassImages:            b.Schedule.NumClassImages,
			PriorLossWeight:           b.Schedule.PriorLossWeight,
			MixedPrecision:            b.Schedule.MixedPrecision,
		}
	}

	return wf
}
