package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"envdashboard/libs/logging"
	"envdashboard/services/dashboard-cli/internal/app"
	"envdashboard/services/dashboard-cli/internal/config"
	"envdashboard/services/dashboard-cli/internal/tui"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "envmon: load .env:", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "envmon:", err)
		return 1
	}

	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "envmon: init logger:", err)
		return 1
	}
	defer logger.Sync()

	application, err := app.New(ctx, cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("failed to init envmon", zap.Error(err))
		fmt.Fprintln(os.Stderr, "envmon:", err)
		return 1
	}
	defer application.Close()

	if err := application.Run(ctx, os.Args[1:]); err != nil {
		switch {
		case errors.Is(err, tui.ErrCancelled), errors.Is(err, context.Canceled):
			return 130
		case errors.Is(err, app.ErrUsage):
			fmt.Fprintln(os.Stderr, "envmon:", err)
			return 2
		default:
			logger.Debug("command failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "envmon:", err)
			return 1
		}
	}
	return 0
}
