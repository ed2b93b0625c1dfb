package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunedrive/tunedrive/internal/config"
)

func lookupFrom(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func TestResolveURI(t *testing.T) {
	t.Parallel()

	t.Run("environment value wins", func(t *testing.T) {
		t.Parallel()
		uri, err := ResolveURI(lookupFrom(map[string]string{
			EnvTrackingURI: "http://tracking.internal:8080",
		}))
		require.NoError(t, err)
		assert.Equal(t, "http://tracking.internal:8080", uri)
	})

	t.Run("defaults to local endpoint", func(t *testing.T) {
		t.Parallel()
		uri, err := ResolveURI(lookupFrom(nil))
		require.NoError(t, err)
		assert.Equal(t, "http://127.0.0.1:5001", uri)
	})

	t.Run("rejects address without scheme", func(t *testing.T) {
		t.Parallel()
		_, err := ResolveURI(lookupFrom(map[string]string{
			EnvTrackingURI: "tracking.internal:8080:extra:junk",
		}))
		require.Error(t, err)
	})
}

func TestExperimentName(t *testing.T) {
	t.Parallel()

	name := ExperimentName(config.KindGeneration, "runwayml/stable-diffusion-v1-5")
	assert.Equal(t, "generation-runwayml/stable-diffusion-v1-5", name)
}

func TestChildEnv(t *testing.T) {
	t.Parallel()

	env := ChildEnv("http://127.0.0.1:5001", "generation-model")
	assert.Equal(t, "http://127.0.0.1:5001", env[EnvTrackingURI])
	assert.Equal(t, "generation-model", env[EnvExperimentName])
}
