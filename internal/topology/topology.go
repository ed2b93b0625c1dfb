package topology

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/tunedrive/tunedrive/internal/ctxlog"
)

// Mixed precision modes accepted by the external launcher.
const (
	PrecisionNone = "no"
	PrecisionFP16 = "fp16"
	PrecisionBF16 = "bf16"
)

// Topology describes the distributed-execution layout for one host. Field
// names and values mirror the launcher's own configuration file so the file
// written by Store is consumed by `accelerate launch --config_file` as-is.
type Topology struct {
	ComputeEnvironment string `yaml:"compute_environment"`
	DistributedType    string `yaml:"distributed_type"`
	NumProcesses       int    `yaml:"num_processes"`
	MixedPrecision     string `yaml:"mixed_precision"`
	UseCPU             bool   `yaml:"use_cpu"`
}

// Detect derives the topology for the current host: one worker process per
// visible accelerator, falling back to a single CPU process when none are
// visible. Accelerator availability may change between runs; detection is
// repeated on every invocation and the last result wins.
func Detect(ctx context.Context, mixedPrecision string) Topology {
	logger := ctxlog.FromContext(ctx)

	n := acceleratorCount(ctx)
	logger.Debug("Accelerator detection complete.", "count", n)

	t := Topology{
		ComputeEnvironment: "LOCAL_MACHINE",
		MixedPrecision:     mixedPrecision,
	}

	switch {
	case n > 1:
		t.DistributedType = "MULTI_GPU"
		t.NumProcesses = n
	case n == 1:
		t.DistributedType = "NO"
		t.NumProcesses = 1
	default:
		t.DistributedType = "NO"
		t.NumProcesses = 1
		t.UseCPU = true
		if t.MixedPrecision == "" {
			t.MixedPrecision = PrecisionNone
		}
	}

	if t.MixedPrecision == "" {
		t.MixedPrecision = PrecisionNone
	}

	return t
}

// acceleratorCount counts visible accelerators. CUDA_VISIBLE_DEVICES, when
// set, is authoritative; otherwise an nvidia-smi probe is attempted. A host
// with neither reports zero.
func acceleratorCount(ctx context.Context) int {
	if devices, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		devices = strings.TrimSpace(devices)
		if devices == "" || devices == "-1" {
			return 0
		}
		return len(strings.Split(devices, ","))
	}

	out, err := exec.CommandContext(ctx, "nvidia-smi", "-L").Output()
	if err != nil {
		return 0
	}

	count := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "GPU ") {
			count++
		}
	}
	return count
}
