package config

import (
	"fmt"
	"sort"
)

// Kind identifies which fine-tuning workflow a workflow block describes.
type Kind string

const (
	// KindGeneration personalizes an image-generation model on instance
	// photos with a low-rank adapter.
	KindGeneration Kind = "generation"

	// KindClassification fine-tunes a document-layout token-classification
	// model on an annotated form archive.
	KindClassification Kind = "classification"
)

// KnownKinds lists every workflow kind the driver understands.
var KnownKinds = []Kind{KindGeneration, KindClassification}

// Known reports whether k is one of KnownKinds.
func (k Kind) Known() bool {
	for _, known := range KnownKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Model is the unified configuration model produced by a Loader. Workflow
// names are unique; duplicates are a load-time error.
type Model struct {
	Workflows map[string]*Workflow
}

// Workflow is one fully described fine-tuning workflow. Zero-valued fields
// are filled from the kind's preset table at assembly time.
type Workflow struct {
	Name string
	Kind Kind

	Model    ModelRef
	Dataset  Dataset
	Prompt   Prompt
	Adapter  Adapter
	Schedule Schedule
}

// ModelRef names the pretrained model to fine-tune and where to put the result.
type ModelRef struct {
	Pretrained string
	OutputDir  string
}

// Dataset describes the raw data source and the prepared-dataset locations.
// Generation workflows use SourceDir/InstanceDir/ClassDir; classification
// workflows use ArchiveDir/OutDir/MaxSeqLength.
type Dataset struct {
	SourceDir   string
	InstanceDir string
	ClassDir    string

	ArchiveDir   string
	OutDir       string
	MaxSeqLength int
}

// Prompt holds the instance and class prompts for a generation workflow.
type Prompt struct {
	Instance string
	Class    string
}

// Adapter holds the low-rank adapter settings for the primary model and,
// where the architecture has one, its text encoder.
type Adapter struct {
	Rank             int
	Alpha            int
	TextEncoderRank  int
	TextEncoderAlpha int
}

// Schedule holds the optimization schedule and batching knobs.
type Schedule struct {
	LearningRate              float64
	LRScheduler               string
	LRWarmupSteps             int
	MaxTrainSteps             int
	NumTrainEpochs            int
	TrainBatchSize            int
	GradientAccumulationSteps int
	GradientCheckpointing     bool
	Resolution                int
	NumClassImages            int
	PriorLossWeight           float64
	MixedPrecision            string
}

// WorkflowNames returns the names of all loaded workflows in sorted order.
// Useful for error messages and logs.
func (m *Model) WorkflowNames() []string {
	names := make([]string, 0, len(m.Workflows))
	for name := range m.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the structural integrity of a single workflow. It does not
// touch the filesystem; path existence is checked at assembly time.
func (w *Workflow) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workflow has no name")
	}

	switch w.Kind {
	case KindGeneration:
		if w.Dataset.SourceDir == "" {
			return fmt.Errorf("workflow %q: dataset.source_dir is required for generation workflows", w.Name)
		}
		if w.Dataset.InstanceDir == "" {
			return fmt.Errorf("workflow %q: dataset.instance_dir is required for generation workflows", w.Name)
		}
		if w.Prompt.Instance == "" {
			return fmt.Errorf("workflow %q: prompt.instance is required for generation workflows", w.Name)
		}
	case KindClassification:
		if w.Dataset.ArchiveDir == "" {
			return fmt.Errorf("workflow %q: dataset.archive_dir is required for classification workflows", w.Name)
		}
		if w.Dataset.OutDir == "" {
			return fmt.Errorf("workflow %q: dataset.out_dir is required for classification workflows", w.Name)
		}
	default:
		return fmt.Errorf("workflow %q: unknown kind %q (known kinds: %v)", w.Name, w.Kind, KnownKinds)
	}

	if w.Dataset.MaxSeqLength < 0 {
		return fmt.Errorf("workflow %q: dataset.max_seq_length must not be negative", w.Name)
	}
	if w.Schedule.MaxTrainSteps < 0 {
		return fmt.Errorf("workflow %q: schedule.max_train_steps must not be negative", w.Name)
	}

	return nil
}
