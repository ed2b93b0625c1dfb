// Package invoker launches one external multi-process training job per
// workflow and streams its combined console output to both the terminal and
// an append-only run log. A non-zero child exit is fatal for the whole
// workflow; distributed training is expensive and non-idempotent mid-run, so
// there is no retry and no timeout at this layer.
package invoker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tunedrive/tunedrive/internal/assemble"
	"github.com/tunedrive/tunedrive/internal/ctxlog"
)

// DefaultLauncher is the multi-process launch utility invoked for every
// training job.
const DefaultLauncher = "accelerate"

// ExitError reports a training process that exited with a non-zero status.
// The driver mirrors this status as its own exit code.
type ExitError struct {
	Code int
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return fmt.Sprintf("training process exited with status %d", e.Code)
}

// Invoker runs external training jobs. One Invoker serves one workflow run;
// reuse across concurrent runs is unsupported.
type Invoker struct {
	launcher     string
	topologyPath string
	logDir       string
	console      io.Writer

	state atomic.Int32
}

// New creates an Invoker. launcher is the multi-process launch binary
// (DefaultLauncher in production, a stub in tests), topologyPath the persisted
// Execution Topology State file, logDir the directory run logs append to, and
// console the live output sink.
func New(launcher, topologyPath, logDir string, console io.Writer) *Invoker {
	if launcher == "" {
		launcher = DefaultLauncher
	}
	return &Invoker{
		launcher:     launcher,
		topologyPath: topologyPath,
		logDir:       logDir,
		console:      console,
	}
}

// State returns the current lifecycle state.
func (inv *Invoker) State() State {
	return State(inv.state.Load())
}

func (inv *Invoker) setState(s State) {
	inv.state.Store(int32(s))
}

// Run launches the training job described by cfg and blocks until it exits.
// extraEnv entries are appended to the inherited environment. The child's
// combined stdout/stderr is forwarded line by line to both the console and
// the run log, preserving the interleaving the child produced.
func (inv *Invoker) Run(ctx context.Context, cfg *assemble.RunConfig, extraEnv map[string]string) error {
	logger := ctxlog.FromContext(ctx)
	inv.setState(StateLaunching)

	if err := os.MkdirAll(inv.logDir, 0o755); err != nil {
		inv.setState(StateFailed)
		return fmt.Errorf("create log dir: %w", err)
	}

	logPath := filepath.Join(inv.logDir, cfg.Workflow()+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		inv.setState(StateFailed)
		return fmt.Errorf("open run log: %w", err)
	}
	defer logFile.Close()

	runID := uuid.NewString()
	fmt.Fprintf(logFile, "=== run %s workflow %s started %s\n", runID, cfg.Workflow(), time.Now().Format(time.RFC3339))

	argv := append([]string{"launch", "--config_file", inv.topologyPath, cfg.Script()}, cfg.Args()...)
	cmd := exec.CommandContext(ctx, inv.launcher, argv...)
	cmd.Env = childEnv(extraEnv)

	// Combined stdout/stderr goes through a single pipe so the pump sees
	// lines in the order the child produced them.
	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	var g errgroup.Group
	g.Go(func() error {
		err := pump(pr, inv.console, logFile)
		if err != nil {
			// Unblock the copier feeding pw, otherwise cmd.Wait never
			// returns once a sink dies mid-run.
			pr.CloseWithError(err)
		}
		return err
	})

	logger.Info("🚀 Launching training job.",
		"run_id", runID,
		"workflow", cfg.Workflow(),
		"launcher", inv.launcher,
		"script", cfg.Script(),
		"log", logPath)

	if err := cmd.Start(); err != nil {
		pw.Close()
		_ = g.Wait()
		inv.setState(StateFailed)
		return fmt.Errorf("start launcher %s: %w", inv.launcher, err)
	}
	inv.setState(StateRunning)

	waitErr := cmd.Wait()
	pw.Close()
	pumpErr := g.Wait()

	// A dead sink is the root cause even when the child then dies on the
	// closed pipe, so report it ahead of the child's exit status.
	if pumpErr != nil {
		inv.setState(StateFailed)
		return fmt.Errorf("forward training output: %w", pumpErr)
	}
	if waitErr != nil {
		inv.setState(StateFailed)
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code := exitErr.ExitCode()
			fmt.Fprintf(logFile, "=== run %s failed with status %d\n", runID, code)
			return &ExitError{Code: code}
		}
		return fmt.Errorf("training process: %w", waitErr)
	}

	fmt.Fprintf(logFile, "=== run %s completed\n", runID)
	inv.setState(StateCompleted)
	logger.Info("🏁 Training job completed.", "run_id", runID, "workflow", cfg.Workflow())
	return nil
}

// pump is the single forwarding task: it reads the child's combined output
// and writes every line to both sinks. No buffering beyond line granularity.
func pump(r io.Reader, console, logFile io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if _, err := fmt.Fprintln(console, line); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(logFile, line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// childEnv builds the child environment: the inherited environment plus the
// extra entries in deterministic order.
func childEnv(extra map[string]string) []string {
	env := os.Environ()

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
