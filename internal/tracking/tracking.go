// Package tracking resolves the experiment-tracking endpoint handed to the
// child training process. The driver only supplies the address and an
// experiment name through the environment; the tracking protocol itself is
// spoken by the child.
package tracking

import (
	"fmt"
	"net/url"

	"github.com/tunedrive/tunedrive/internal/config"
)

// EnvTrackingURI names the environment variable the child process reads for
// the tracking endpoint address.
const EnvTrackingURI = "MLFLOW_TRACKING_URI"

// EnvExperimentName names the environment variable carrying the experiment name.
const EnvExperimentName = "MLFLOW_EXPERIMENT_NAME"

// defaultTrackingURI is used when the operator exports nothing.
const defaultTrackingURI = "http://127.0.0.1:5001"

// ResolveURI returns the tracking endpoint address: the operator's
// environment value when set, otherwise the local default. The address must
// parse as an absolute URL.
func ResolveURI(lookup func(string) string) (string, error) {
	uri := lookup(EnvTrackingURI)
	if uri == "" {
		uri = defaultTrackingURI
	}

	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid tracking URI %q: %w", uri, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid tracking URI %q: scheme and host are required", uri)
	}

	return uri, nil
}

// ExperimentName derives the experiment name a run reports under, from the
// workflow kind and the pretrained model identifier.
func ExperimentName(kind config.Kind, pretrained string) string {
	return fmt.Sprintf("%s-%s", kind, pretrained)
}

// ChildEnv returns the tracking-related environment entries injected into
// the child training process.
func ChildEnv(uri, experiment string) map[string]string {
	return map[string]string{
		EnvTrackingURI:    uri,
		EnvExperimentName: experiment,
	}
}
