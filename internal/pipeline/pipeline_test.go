package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ExecutesStagesInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	stages := []Stage{
		NewStage("prepare-data", func(ctx context.Context) error {
			order = append(order, "prepare-data")
			return nil
		}),
		NewStage("configure-topology", func(ctx context.Context) error {
			order = append(order, "configure-topology")
			return nil
		}),
		NewStage("invoke-training", func(ctx context.Context) error {
			order = append(order, "invoke-training")
			return nil
		}),
	}

	require.NoError(t, Run(context.Background(), stages))
	assert.Equal(t, []string{"prepare-data", "configure-topology", "invoke-training"}, order)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("archive missing")
	var laterRan bool

	stages := []Stage{
		NewStage("prepare-data", func(ctx context.Context) error {
			return boom
		}),
		NewStage("invoke-training", func(ctx context.Context) error {
			laterRan = true
			return nil
		}),
	}

	err := Run(context.Background(), stages)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage prepare-data")
	assert.False(t, laterRan, "stages after a failure must not run")
}

func TestRun_HonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran bool
	err := Run(ctx, []Stage{
		NewStage("prepare-data", func(ctx context.Context) error {
			ran = true
			return nil
		}),
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestNewStage_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewStage("", func(ctx context.Context) error { return nil }) })
	assert.Panics(t, func() { NewStage("x", nil) })
}
