package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/indicators/internal/application"
	"github.com/JonMunkholm/indicators/internal/cli"
	"github.com/JonMunkholm/indicators/internal/config"
	"github.com/JonMunkholm/indicators/internal/core"
	"github.com/JonMunkholm/indicators/internal/logging"
)

func main() {
	_ = godotenv.Overload()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.RootCmd(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		slog.Debug("command failed", "error", err)
		os.Exit(1)
	}
}

func open(ctx context.Context) (cli.Backend, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	// Metrics are not exposed by the CLI.
	a, err := application.New(ctx, cfg, prometheus.NewRegistry())
	if err != nil {
		return nil, nil, err
	}
	return a.Service, a.Close, nil
}
