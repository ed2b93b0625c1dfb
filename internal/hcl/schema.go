package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all top-level blocks from any workflow file.
type fileRoot struct {
	Workflows []*workflowBlock `hcl:"workflow,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

// workflowBlock is the HCL-specific schema for one workflow block. Every
// sub-block is optional; omitted values fall back to the kind's preset table
// at assembly time.
type workflowBlock struct {
	Name string `hcl:"name,label"`
	Kind string `hcl:"kind"`

	Model    *modelBlock    `hcl:"model,block"`
	Dataset  *datasetBlock  `hcl:"dataset,block"`
	Prompt   *promptBlock   `hcl:"prompt,block"`
	Adapter  *adapterBlock  `hcl:"adapter,block"`
	Schedule *scheduleBlock `hcl:"schedule,block"`
}

type modelBlock struct {
	Pretrained string `hcl:"pretrained,optional"`
	OutputDir  string `hcl:"output_dir,optional"`
}

type datasetBlock struct {
	SourceDir   string `hcl:"source_dir,optional"`
	InstanceDir string `hcl:"instance_dir,optional"`
	ClassDir    string `hcl:"class_dir,optional"`

	ArchiveDir   string `hcl:"archive_dir,optional"`
	OutDir       string `hcl:"out_dir,optional"`
	MaxSeqLength int    `hcl:"max_seq_length,optional"`
}

type promptBlock struct {
	Instance string `hcl:"instance,optional"`
	Class    string `hcl:"class,optional"`
}

type adapterBlock struct {
	Rank             int `hcl:"rank,optional"`
	Alpha            int `hcl:"alpha,optional"`
	TextEncoderRank  int `hcl:"text_encoder_rank,optional"`
	TextEncoderAlpha int `hcl:"text_encoder_alpha,optional"`
}

type scheduleBlock struct {
	LearningRate              float64 `hcl:"learning_rate,optional"`
	LRScheduler               string  `hcl:"lr_scheduler,optional"`
	LRWarmupSteps             int     `hcl:"lr_warmup_steps,optional"`
	MaxTrainSteps             int     `hcl:"max_train_steps,optional"`
	NumTrainEpochs            int     `hcl:"num_train_epochs,optional"`
	TrainBatchSize            int     `hcl:"train_batch_size,optional"`
	GradientAccumulationSteps int     `hcl:"gradient_accumulation_steps,optional"`
	GradientCheckpointing     bool    `hcl:"gradient_checkpointing,optional"`
	Resolution                int     `hcl:"resolution,optional"`
	NumClassImages            int     `hcl:"num_class_images,optional"`
	PriorLossWeight           float64 `hcl:"prior_loss_weight,optional"`
	MixedPrecision            string  `hcl:"mixed_precision,optional"`
}
