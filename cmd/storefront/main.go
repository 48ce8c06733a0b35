package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vslbak/gymflow-web/internal/cli"
	"github.com/vslbak/gymflow-web/internal/config"
	"github.com/vslbak/gymflow-web/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	// Command output goes to stdout; the log stays on stderr and quiet.
	level := "warn"
	if cfg.LogLevel == "debug" {
		level = "debug"
	}
	logger.InitTo(logger.Config{Level: level, Format: cfg.LogFormat}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.New(cli.Options{Config: cfg.Storefront})
	if err := app.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
