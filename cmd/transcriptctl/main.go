package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/transcript/internal/cli"
	"github.com/okian/transcript/internal/config"
	"github.com/okian/transcript/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr directly since the logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	root := cli.Root(cfg, os.Stdout, logger.Get())
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = os.Stderr.WriteString("error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
