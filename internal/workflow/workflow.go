// Package workflow maps each workflow kind to the stage pipeline that
// implements it. Both kinds compose the same shape: prepare data, configure
// topology, assemble the run configuration, invoke training.
package workflow

import (
	"fmt"
	"io"

	"github.com/tunedrive/tunedrive/internal/config"
	"github.com/tunedrive/tunedrive/internal/invoker"
	"github.com/tunedrive/tunedrive/internal/pipeline"
	"github.com/tunedrive/tunedrive/internal/topology"
)

// Deps bundles the collaborators a stage pipeline is wired with. The app
// builds one Deps per run.
type Deps struct {
	// Console receives the child training process's live output.
	Console io.Writer
	// TopologyStore persists the Execution Topology State the launcher reads.
	TopologyStore *topology.Store
	// Invoker launches the external training job.
	Invoker *invoker.Invoker
	// LookupEnv resolves environment variables (os.Getenv in production).
	LookupEnv func(string) string
	// PrepareOnly truncates the pipeline after dataset preparation.
	PrepareOnly bool
}

// Builder produces the stage pipeline for one workflow.
type Builder func(deps *Deps, wf *config.Workflow) ([]pipeline.Stage, error)

// builders is the definitive mapping from workflow kind to pipeline builder.
var builders = map[config.Kind]Builder{
	config.KindGeneration:     buildGeneration,
	config.KindClassification: buildClassification,
}

// Register adds a builder for a kind. Registering the same kind twice is a
// programmer error.
func Register(kind config.Kind, b Builder) {
	if _, exists := builders[kind]; exists {
		panic(fmt.Sprintf("workflow builder for kind %q registered twice", kind))
	}
	builders[kind] = b
}

// Build resolves the builder for the workflow's kind and produces its stage
// pipeline.
func Build(deps *Deps, wf *config.Workflow) ([]pipeline.Stage, error) {
	builder, ok := builders[wf.Kind]
	if !ok {
		return nil, fmt.Errorf("no pipeline builder for workflow kind %q", wf.Kind)
	}

	stages, err := builder(deps, wf)
	if err != nil {
		return nil, err
	}
	if deps.PrepareOnly && len(stages) > 1 {
		stages = stages[:1]
	}
	return stages, nil
}
