package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/serifhq/bcel-go/cmd"
	"github.com/serifhq/bcel-go/internal/conf"
	"github.com/serifhq/bcel-go/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := conf.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	if settings.Debug {
		logging.InitWithLevel(slog.LevelDebug)
	} else {
		logging.Init()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	return rootCmd.ExecuteContext(ctx)
}
