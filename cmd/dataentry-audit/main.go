package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"dataentry/internal/amqp"
	"dataentry/internal/backend"
	"dataentry/internal/cli"
	"dataentry/internal/log"
	"dataentry/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the audit worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	logger.Info("Starting dataentry-audit")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create option backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() { _ = result.Cleanup() }()
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	audit := worker.NewAuditWorker(result.Backend, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeEntrySubmitted(gctx, audit.HandleEntrySubmitted)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Audit worker stopped",
		log.FieldOperation, log.OpShutdown,
		"handled", audit.Handled(),
		"flagged", audit.Flagged())
}
