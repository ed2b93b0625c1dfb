package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedrive/tunedrive/internal/config"
)

func writeWorkflowFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_GenerationWorkflow(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := writeWorkflowFile(t, tmpDir, "main.hcl", `
workflow "dog_lora" {
  kind = "generation"

  dataset {
    source_dir   = "photos/dog"
    instance_dir = "data/instance"
  }

  prompt {
    instance = "a photo of sks dog"
    class    = "a photo of dog"
  }

  adapter {
    rank               = 16
    alpha              = 27
    text_encoder_rank  = 16
    text_encoder_alpha = 17
  }

  schedule {
    learning_rate   = 1e-4
    max_train_steps = 800
  }
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, model.Workflows, 1)

	wf := model.Workflows["dog_lora"]
	require.NotNil(t, wf)
	assert.Equal(t, config.KindGeneration, wf.Kind)
	assert.Equal(t, "photos/dog", wf.Dataset.SourceDir)
	assert.Equal(t, "a photo of sks dog", wf.Prompt.Instance)
	assert.Equal(t, 16, wf.Adapter.Rank)
	assert.Equal(t, 27, wf.Adapter.Alpha)
	assert.Equal(t, 17, wf.Adapter.TextEncoderAlpha)
	assert.InDelta(t, 1e-4, wf.Schedule.LearningRate, 1e-12)
	assert.Equal(t, 800, wf.Schedule.MaxTrainSteps)
}

func TestLoad_EnvInterpolation(t *testing.T) {
	t.Setenv("MODEL_NAME", "runwayml/stable-diffusion-v1-5")

	tmpDir := t.TempDir()
	path := writeWorkflowFile(t, tmpDir, "main.hcl", `
workflow "dog_lora" {
  kind = "generation"

  model {
    pretrained = env.MODEL_NAME
  }

  dataset {
    source_dir   = "photos/dog"
    instance_dir = "data/instance"
  }

  prompt {
    instance = "a photo of sks dog"
  }
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "runwayml/stable-diffusion-v1-5", model.Workflows["dog_lora"].Model.Pretrained)
}

func TestLoad_DirectoryMergesFiles(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeWorkflowFile(t, tmpDir, "generation.hcl", `
workflow "dog_lora" {
  kind = "generation"
  dataset {
    source_dir   = "photos/dog"
    instance_dir = "data/instance"
  }
  prompt { instance = "a photo of sks dog" }
}
`)
	writeWorkflowFile(t, tmpDir, "classification.hcl", `
workflow "funsd_ner" {
  kind = "classification"
  dataset {
    archive_dir = "data/funsd"
    out_dir     = "data/funsd/processed"
  }
}
`)

	model, err := NewLoader().Load(context.Background(), tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"dog_lora", "funsd_ner"}, model.WorkflowNames())
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	t.Run("unknown kind rejected", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		path := writeWorkflowFile(t, tmpDir, "main.hcl", `
workflow "bad" {
  kind = "quantization"
}
`)
		_, err := NewLoader().Load(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown kind")
	})

	t.Run("duplicate workflow rejected", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		path := writeWorkflowFile(t, tmpDir, "main.hcl", `
workflow "twice" {
  kind = "classification"
  dataset {
    archive_dir = "a"
    out_dir     = "b"
  }
}

workflow "twice" {
  kind = "classification"
  dataset {
    archive_dir = "a"
    out_dir     = "b"
  }
}
`)
		_, err := NewLoader().Load(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate workflow")
	})

	t.Run("syntax error surfaces file name", func(t *testing.T) {
		t.Parallel()
		tmpDir := t.TempDir()
		path := writeWorkflowFile(t, tmpDir, "main.hcl", `workflow "broken" {`)
		_, err := NewLoader().Load(context.Background(), path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "main.hcl")
	})

	t.Run("missing path errors", func(t *testing.T) {
		t.Parallel()
		_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
		require.Error(t, err)
	})
}
