package assemble

import "github.com/tunedrive/tunedrive/internal/config"

// preset holds the fixed workflow-kind defaults applied wherever the
// workflow model leaves a field zero.
type preset struct {
	script string

	learningRate              float64
	lrScheduler               string
	lrWarmupSteps             int
	trainBatchSize            int
	gradientAccumulationSteps int
	resolution                int
	numClassImages            int
	priorLossWeight           float64
	maxTrainSteps             int
	numTrainEpochs            int
	maxSeqLength              int

	adapter config.Adapter
}

// presets maps each workflow kind to its defaults.
var presets = map[config.Kind]preset{
	config.KindGeneration: {
		script:                    "train_dreambooth_lora.py",
		learningRate:              1e-4,
		lrScheduler:               "constant",
		lrWarmupSteps:             0,
		trainBatchSize:            1,
		gradientAccumulationSteps: 1,
		resolution:                512,
		numClassImages:            200,
		priorLossWeight:           1.0,
		maxTrainSteps:             800,
		adapter: config.Adapter{
			Rank:             16,
			Alpha:            27,
			TextEncoderRank:  16,
			TextEncoderAlpha: 17,
		},
	},
	config.KindClassification: {
		script:                    "train_token_classification.py",
		learningRate:              5e-5,
		lrScheduler:               "linear",
		lrWarmupSteps:             0,
		trainBatchSize:            16,
		gradientAccumulationSteps: 1,
		numTrainEpochs:            100,
		maxSeqLength:              510,
		adapter: config.Adapter{
			Rank:  16,
			Alpha: 16,
		},
	},
}

// applyDefaults returns a copy of the workflow with every zero-valued field
// filled from its kind's preset.
func applyDefaults(wf *config.Workflow) config.Workflow {
	p := presets[wf.Kind]
	out := *wf

	if out.Schedule.LearningRate == 0 {
		out.Schedule.LearningRate = p.learningRate
	}
	if out.Schedule.LRScheduler == "" {
		out.Schedule.LRScheduler = p.lrScheduler
	}
	if out.Schedule.LRWarmupSteps == 0 {
		out.Schedule.LRWarmupSteps = p.lrWarmupSteps
	}
	if out.Schedule.TrainBatchSize == 0 {
		out.Schedule.TrainBatchSize = p.trainBatchSize
	}
	if out.Schedule.GradientAccumulationSteps == 0 {
		out.Schedule.GradientAccumulationSteps = p.gradientAccumulationSteps
	}
	if out.Schedule.Resolution == 0 {
		out.Schedule.Resolution = p.resolution
	}
	if out.Schedule.NumClassImages == 0 {
		out.Schedule.NumClassImages = p.numClassImages
	}
	if out.Schedule.PriorLossWeight == 0 {
		out.Schedule.PriorLossWeight = p.priorLossWeight
	}
	if out.Schedule.MaxTrainSteps == 0 {
		out.Schedule.MaxTrainSteps = p.maxTrainSteps
	}
	if out.Schedule.NumTrainEpochs == 0 {
		out.Schedule.NumTrainEpochs = p.numTrainEpochs
	}
	if out.Dataset.MaxSeqLength == 0 {
		out.Dataset.MaxSeqLength = p.maxSeqLength
	}

	if out.Adapter.Rank == 0 {
		out.Adapter.Rank = p.adapter.Rank
	}
	if out.Adapter.Alpha == 0 {
		out.Adapter.Alpha = p.adapter.Alpha
	}
	if out.Adapter.TextEncoderRank == 0 {
		out.Adapter.TextEncoderRank = p.adapter.TextEncoderRank
	}
	if out.Adapter.TextEncoderAlpha == 0 {
		out.Adapter.TextEncoderAlpha = p.adapter.TextEncoderAlpha
	}

	return out
}
