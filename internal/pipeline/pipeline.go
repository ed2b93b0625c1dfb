// Package pipeline composes a workflow as an explicit sequence of typed
// stages. The runner executes stages strictly in order and stops at the
// first failure; every failure is a stop condition, there is no local
// recovery at this layer.
package pipeline

import (
	"context"
	"fmt"

	"github.com/tunedrive/tunedrive/internal/ctxlog"
)

// Stage is one unit of the workflow sequence.
type Stage interface {
	// Name identifies the stage in logs and errors.
	Name() string
	// Run executes the stage. A non-nil error aborts the pipeline.
	Run(ctx context.Context) error
}

// funcStage adapts a plain function into a Stage.
type funcStage struct {
	name string
	fn   func(ctx context.Context) error
}

func (s *funcStage) Name() string { return s.name }

func (s *funcStage) Run(ctx context.Context) error { return s.fn(ctx) }

// NewStage wraps fn as a named Stage.
func NewStage(name string, fn func(ctx context.Context) error) Stage {
	if name == "" {
		panic("stage name must not be empty")
	}
	if fn == nil {
		panic("stage fn must not be nil")
	}
	return &funcStage{name: name, fn: fn}
}

// Run executes the stages sequentially, logging transitions, and returns the
// first error wrapped with the failing stage's name.
func Run(ctx context.Context, stages []Stage) error {
	logger := ctxlog.FromContext(ctx)

	for i, stage := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		logger.Info("▶ Stage starting.", "stage", stage.Name(), "position", fmt.Sprintf("%d/%d", i+1, len(stages)))
		if err := stage.Run(ctx); err != nil {
			logger.Error("Stage failed.", "stage", stage.Name(), "error", err)
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		logger.Debug("Stage finished.", "stage", stage.Name())
	}

	return nil
}
