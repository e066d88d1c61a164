package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/linksphinx/licensekit/internal/app"
	"github.com/linksphinx/licensekit/pkg/config"
	"github.com/linksphinx/licensekit/pkg/logger"
	"github.com/linksphinx/licensekit/pkg/requestid"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg app.Config
	config.MustLoad(&cfg)

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("failed to start", logger.Error(err))
		os.Exit(1)
	}

	err = a.Run(ctx)
	a.Close()
	if err != nil {
		log.Error("server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
