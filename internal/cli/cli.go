package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/tunedrive/tunedrive/internal/app"
	"github.com/tunedrive/tunedrive/internal/config"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("tunedrive", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
tunedrive - a driver for parameter-efficient fine-tuning workflows.

Usage:
  tunedrive [options] WORKFLOW_PATH

Arguments:
  WORKFLOW_PATH
    Path to a single .hcl workflow file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	workflowFlag := flagSet.String("workflow", "", "Name of the workflow block to run.")
	wFlag := flagSet.String("w", "", "Name of the workflow block to run (shorthand).")
	prepareOnlyFlag := flagSet.Bool("prepare-only", false, "Stop after dataset preparation; do not launch training.")
	launcherFlag := flagSet.String("launcher", "", "Path to the multi-process launch binary (default: accelerate).")
	topologyFileFlag := flagSet.String("topology-file", "", "Override the implicit per-host topology state file.")
	logDirFlag := flagSet.String("log-dir", "logs", "Directory run logs are appended to.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	// Training flags. Each maps 1:1 into the Run Configuration, overriding
	// the loaded workflow's values.
	var o config.Overrides
	flagSet.StringVar(&o.Pretrained, "pretrained-model", "", "Pretrained model path or hub identifier.")
	flagSet.StringVar(&o.OutputDir, "output-dir", "", "Where to store the fine-tuned model.")
	flagSet.StringVar(&o.InstanceDir, "instance-dir", "", "Prepared instance-image directory (generation).")
	flagSet.StringVar(&o.ClassDir, "class-dir", "", "Class-image directory for prior preservation (generation).")
	flagSet.StringVar(&o.DataDir, "data-dir", "", "Prepared dataset directory (classification).")
	flagSet.StringVar(&o.InstancePrompt, "instance-prompt", "", "Prompt describing the personalization subject.")
	flagSet.StringVar(&o.ClassPrompt, "class-prompt", "", "Prompt describing the subject's class.")
	flagSet.IntVar(&o.Resolution, "resolution", 0, "Training image resolution.")
	flagSet.IntVar(&o.TrainBatchSize, "train-batch-size", 0, "Per-device training batch size.")
	flagSet.Float64Var(&o.LearningRate, "learning-rate", 0, "Initial learning rate.")
	flagSet.StringVar(&o.LRScheduler, "lr-scheduler", "", "Learning-rate scheduler type.")
	flagSet.IntVar(&o.LRWarmupSteps, "lr-warmup-steps", 0, "Warmup steps for the scheduler.")
	flagSet.IntVar(&o.NumClassImages, "num-class-images", 0, "Class images generated for prior preservation.")
	flagSet.IntVar(&o.MaxTrainSteps, "max-train-steps", 0, "Total training step budget.")
	flagSet.IntVar(&o.NumTrainEpochs, "num-train-epochs", 0, "Total training epochs (classification).")
	flagSet.IntVar(&o.GradientAccumulationSteps, "gradient-accumulation-steps", 0, "Gradient accumulation steps.")
	flagSet.BoolVar(&o.GradientCheckpointing, "gradient-checkpointing", false, "Enable gradient checkpointing.")
	flagSet.IntVar(&o.LoraR, "lora-r", 0, "Low-rank adapter rank for the primary model.")
	flagSet.IntVar(&o.LoraAlpha, "lora-alpha", 0, "Low-rank adapter scaling for the primary model.")
	flagSet.IntVar(&o.LoraTextEncoderR, "lora-text-encoder-r", 0, "Low-rank adapter rank for the text encoder.")
	flagSet.IntVar(&o.LoraTextEncoderAlpha, "lora-text-encoder-alpha", 0, "Low-rank adapter scaling for the text encoder.")
	flagSet.IntVar(&o.MaxSeqLength, "max-seq-length", 0, "Maximum emitted token sequence length (classification).")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := ""
	if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	if path == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	workflowName := *workflowFlag
	if workflowName == "" {
		workflowName = *wFlag
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	appConfig, err := app.NewConfig(app.Config{
		WorkflowPath:    path,
		WorkflowName:    workflowName,
		PrepareOnly:     *prepareOnlyFlag,
		Launcher:        *launcherFlag,
		TopologyPath:    *topologyFileFlag,
		LogDir:          *logDirFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		HealthcheckPort: *healthPortFlag,
		Overrides:       o,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return appConfig, false, nil
}
