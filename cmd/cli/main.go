package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tunedrive/tunedrive/internal/app"
	"github.com/tunedrive/tunedrive/internal/cli"
	"github.com/tunedrive/tunedrive/internal/hcl"
	"github.com/tunedrive/tunedrive/internal/invoker"
)

// main is the entrypoint for the tunedrive driver.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		// The driver mirrors the child training process's exit status.
		var trainErr *invoker.ExitError
		if errors.As(err, &trainErr) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(trainErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) (err error) {
	appConfig, shouldExit, parseErr := cli.Parse(args, outW)
	if parseErr != nil {
		return parseErr
	}
	if shouldExit {
		return nil
	}

	// The app panics on critical config errors, so we recover here to provide
	// a clean exit message to the user.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("a critical startup error occurred: %v", r)
		}
	}()

	// Instantiate the concrete HCL loader to pass to the app.
	loader := hcl.NewLoader()
	driveApp := app.NewApp(outW, appConfig, loader)

	return driveApp.Run(context.Background())
}
