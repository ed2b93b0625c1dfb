package assemble

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/tunedrive/tunedrive/internal/config"
	"github.com/tunedrive/tunedrive/internal/dataset"
)

// Environment variables the assembler falls back to when the workflow model
// leaves the corresponding field empty.
const (
	EnvModelName   = "MODEL_NAME"
	EnvInstanceDir = "INSTANCE_DIR"
	EnvOutputDir   = "OUTPUT_DIR"
)

// ApplyEnv fills the workflow fields that may arrive through the environment
// instead of the workflow file: the pretrained model, the instance-image
// directory and the output directory. Run before validation, so a workflow
// relying on the environment for a required field still loads.
func ApplyEnv(wf *config.Workflow, lookup func(string) string) {
	if wf.Model.Pretrained == "" {
		wf.Model.Pretrained = lookup(EnvModelName)
	}
	if wf.Model.OutputDir == "" {
		wf.Model.OutputDir = lookup(EnvOutputDir)
	}
	if wf.Dataset.InstanceDir == "" {
		wf.Dataset.InstanceDir = lookup(EnvInstanceDir)
	}
}

// Build constructs the Run Configuration for a workflow. lookup resolves
// environment variables; pass os.Getenv in production and a map lookup in
// tests. Build performs no I/O and is deterministic given its inputs.
func Build(wf *config.Workflow, lookup func(string) string) (*RunConfig, error) {
	eff := applyDefaults(wf)

	if eff.Model.Pretrained == "" {
		eff.Model.Pretrained = lookup(EnvModelName)
	}
	if eff.Model.Pretrained == "" {
		return nil, fmt.Errorf("workflow %q: pretrained model not set (model.pretrained or $%s)", wf.Name, EnvModelName)
	}
	if eff.Model.OutputDir == "" {
		eff.Model.OutputDir = lookup(EnvOutputDir)
	}
	if eff.Model.OutputDir == "" {
		eff.Model.OutputDir = filepath.Join("outputs", wf.Name)
	}

	switch eff.Kind {
	case config.KindGeneration:
		return buildGeneration(&eff, lookup)
	case config.KindClassification:
		return buildClassification(&eff)
	default:
		return nil, fmt.Errorf("workflow %q: unknown kind %q", wf.Name, wf.Kind)
	}
}

func buildGeneration(wf *config.Workflow, lookup func(string) string) (*RunConfig, error) {
	instanceDir := wf.Dataset.InstanceDir
	if instanceDir == "" {
		instanceDir = lookup(EnvInstanceDir)
	}
	if instanceDir == "" {
		return nil, fmt.Errorf("workflow %q: instance dir not set (dataset.instance_dir or $%s)", wf.Name, EnvInstanceDir)
	}

	b := newParamList()
	b.add("pretrained_model_name_or_path", wf.Model.Pretrained)
	b.add("instance_data_dir", instanceDir)
	if wf.Dataset.ClassDir != "" {
		b.add("class_data_dir", wf.Dataset.ClassDir)
	}
	b.add("output_dir", wf.Model.OutputDir)
	b.add("instance_prompt", wf.Prompt.Instance)
	if wf.Prompt.Class != "" {
		b.add("class_prompt", wf.Prompt.Class)
		b.flag("with_prior_preservation")
		b.addFloat("prior_loss_weight", wf.Schedule.PriorLossWeight)
		b.addInt("num_class_images", wf.Schedule.NumClassImages)
	}
	b.addInt("resolution", wf.Schedule.Resolution)
	b.addInt("train_batch_size", wf.Schedule.TrainBatchSize)
	b.addInt("gradient_accumulation_steps", wf.Schedule.GradientAccumulationSteps)
	if wf.Schedule.GradientCheckpointing {
		b.flag("gradient_checkpointing")
	}
	b.addFloat("learning_rate", wf.Schedule.LearningRate)
	b.add("lr_scheduler", wf.Schedule.LRScheduler)
	b.addInt("lr_warmup_steps", wf.Schedule.LRWarmupSteps)
	b.addInt("max_train_steps", wf.Schedule.MaxTrainSteps)
	b.flag("use_lora")
	b.addInt("lora_r", wf.Adapter.Rank)
	b.addInt("lora_alpha", wf.Adapter.Alpha)
	b.addInt("lora_text_encoder_r", wf.Adapter.TextEncoderRank)
	b.addInt("lora_text_encoder_alpha", wf.Adapter.TextEncoderAlpha)

	return &RunConfig{
		workflow: wf.Name,
		kind:     wf.Kind,
		script:   presets[wf.Kind].script,
		dataDir:  instanceDir,
		params:   b.params,
	}, nil
}

func buildClassification(wf *config.Workflow) (*RunConfig, error) {
	dataDir := wf.Dataset.OutDir

	b := newParamList()
	b.add("model_name_or_path", wf.Model.Pretrained)
	b.add("data_dir", dataDir)
	b.add("labels", filepath.Join(dataDir, dataset.LabelsFile))
	b.add("output_dir", wf.Model.OutputDir)
	b.addInt("max_seq_length", wf.Dataset.MaxSeqLength)
	b.addInt("per_device_train_batch_size", wf.Schedule.TrainBatchSize)
	b.addInt("gradient_accumulation_steps", wf.Schedule.GradientAccumulationSteps)
	if wf.Schedule.GradientCheckpointing {
		b.flag("gradient_checkpointing")
	}
	b.addFloat("learning_rate", wf.Schedule.LearningRate)
	b.add("lr_scheduler", wf.Schedule.LRScheduler)
	b.addInt("lr_warmup_steps", wf.Schedule.LRWarmupSteps)
	if wf.Schedule.MaxTrainSteps > 0 {
		b.addInt("max_train_steps", wf.Schedule.MaxTrainSteps)
	} else {
		b.addInt("num_train_epochs", wf.Schedule.NumTrainEpochs)
	}
	b.flag("use_lora")
	b.addInt("lora_r", wf.Adapter.Rank)
	b.addInt("lora_alpha", wf.Adapter.Alpha)

	return &RunConfig{
		workflow: wf.Name,
		kind:     wf.Kind,
		script:   presets[wf.Kind].script,
		dataDir:  dataDir,
		params:   b.params,
	}, nil
}

// paramList accumulates ordered parameters.
type paramList struct {
	params []Param
}

func newParamList() *paramList {
	return &paramList{}
}

func (b *paramList) add(name, value string) {
	b.params = append(b.params, Param{Name: name, Value: value})
}

func (b *paramList) addInt(name string, value int) {
	b.add(name, strconv.Itoa(value))
}

func (b *paramList) addFloat(name string, value float64) {
	b.add(name, strconv.FormatFloat(value, 'g', -1, 64))
}

func (b *paramList) flag(name string) {
	b.params = append(b.params, Param{Name: name})
}
