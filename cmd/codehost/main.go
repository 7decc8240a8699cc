package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/codehost/internal/app"
	"github.com/specialistvlad/codehost/internal/cli"
	"github.com/specialistvlad/codehost/internal/hcl"
)

// main is the entrypoint for the codehost application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	// Logs go to stderr; stdout belongs to the terminal UI.
	err := run(ctx, os.Stderr, os.Args[1:])
	stop()

	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	codehostApp, err := app.NewApp(outW, appConfig, app.Deps{
		// Instantiate the concrete HCL loader to pass to the app.
		Store:            hcl.NewLoader(),
		ParseCommandLine: cli.ParseCommandLine,
	})
	if err != nil {
		return err
	}

	code, err := codehostApp.Run(ctx)
	if err != nil {
		return &cli.ExitError{Code: max(code, 1), Message: fmt.Sprintf("application startup failed: %v", err)}
	}
	if code != 0 {
		return &cli.ExitError{Code: code}
	}
	return nil
}
