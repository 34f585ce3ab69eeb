package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the root command and returns the process exit code
func execute(ctx context.Context, args []string, stderr io.Writer) int {
	rootCmd.SetArgs(args)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

// reportError logs through the configured logger, or writes to stderr when
// the failure happened before one could be built
func reportError(stderr io.Writer, err error) {
	if app.logger == nil {
		fmt.Fprintf(stderr, "bookstore: %v\n", err)
		return
	}
	app.logger.Error("Command failed", zap.Error(err))
	app.logger.Sync()
}
