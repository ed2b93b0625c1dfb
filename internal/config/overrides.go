package config

// Overrides captures CLI supplied values. Every field maps 1:1 onto a
// workflow field; only non-zero values are applied, so an untouched flag
// never clobbers a configured value.
type Overrides struct {
	Pretrained  string
	OutputDir   string
	InstanceDir string
	ClassDir    string
	DataDir     string

	InstancePrompt string
	ClassPrompt    string

	Resolution                int
	TrainBatchSize            int
	LearningRate              float64
	LRScheduler               string
	LRWarmupSteps             int
	NumClassImages            int
	MaxTrainSteps             int
	NumTrainEpochs            int
	GradientAccumulationSteps int
	GradientCheckpointing     bool

	LoraR                int
	LoraAlpha            int
	LoraTextEncoderR     int
	LoraTextEncoderAlpha int

	MaxSeqLength int
}

// Apply updates the workflow in place using any non-zero override.
func (w *Workflow) Apply(o Overrides) {
	if o.Pretrained != "" {
		w.Model.Pretrained = o.Pretrained
	}
	if o.OutputDir != "" {
		w.Model.OutputDir = o.OutputDir
	}
	if o.InstanceDir != "" {
		w.Dataset.InstanceDir = o.InstanceDir
	}
	if o.ClassDir != "" {
		w.Dataset.ClassDir = o.ClassDir
	}
	if o.DataDir != "" {
		w.Dataset.OutDir = o.DataDir
	}
	if o.InstancePrompt != "" {
		w.Prompt.Instance = o.InstancePrompt
	}
	if o.ClassPrompt != "" {
		w.Prompt.Class = o.ClassPrompt
	}
	if o.Resolution > 0 {
		w.Schedule.Resolution = o.Resolution
	}
	if o.TrainBatchSize > 0 {
		w.Schedule.TrainBatchSize = o.TrainBatchSize
	}
	if o.LearningRate > 0 {
		w.Schedule.LearningRate = o.LearningRate
	}
	if o.LRScheduler != "" {
		w.Schedule.LRScheduler = o.LRScheduler
	}
	if o.LRWarmupSteps > 0 {
		w.Schedule.LRWarmupSteps = o.LRWarmupSteps
	}
	if o.NumClassImages > 0 {
		w.Schedule.NumClassImages = o.NumClassImages
	}
	if o.MaxTrainSteps > 0 {
		w.Schedule.MaxTrainSteps = o.MaxTrainSteps
	}
	if o.NumTrainEpochs > 0 {
		w.Schedule.NumTrainEpochs = o.NumTrainEpochs
	}
	if o.GradientAccumulationSteps > 0 {
		w.Schedule.GradientAccumulationSteps = o.GradientAccumulationSteps
	}
	if o.GradientCheckpointing {
		w.Schedule.GradientCheckpointing = true
	}
	if o.LoraR > 0 {
		w.Adapter.Rank = o.LoraR
	}
	if o.LoraAlpha > 0 {
		w.Adapter.Alpha = o.LoraAlpha
	}
	if o.LoraTextEncoderR > 0 {
		w.Adapter.TextEncoderRank = o.LoraTextEncoderR
	}
	if o.LoraTextEncoderAlpha > 0 {
		w.Adapter.TextEncoderAlpha = o.LoraTextEncoderAlpha
	}
	if o.MaxSeqLength > 0 {
		w.Dataset.MaxSeqLength = o.MaxSeqLength
	}
}
