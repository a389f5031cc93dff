package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ykvlv/regimen-bot/internal/app"
	"github.com/ykvlv/regimen-bot/internal/config"
	"github.com/ykvlv/regimen-bot/internal/logger"
)

// Exit codes: 2 for bad configuration, 1 for runtime failures.
const (
	exitConfig  = 2
	exitRuntime = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitConfig
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return exitConfig
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := app.New(cfg, log)
	if err != nil {
		log.Error("app init failed", zap.Error(err))
		return exitRuntime
	}
	if err := bot.Run(ctx); err != nil {
		log.Error("app run failed", zap.Error(err))
		return exitRuntime
	}
	return 0
}
