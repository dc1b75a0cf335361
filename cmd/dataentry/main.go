package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"dataentry/internal/amqp"
	"dataentry/internal/backend"
	"dataentry/internal/cli"
	"dataentry/internal/fetch"
	apphttp "dataentry/internal/http"
	"dataentry/internal/log"
	"dataentry/internal/services"
	"dataentry/internal/session"
	"dataentry/internal/view"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx, stop := cli.SignalContext()
	defer stop()

	// Option backend
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create option backend", log.FieldError, err.Error(), "backend", backendCfg.Type)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	// Submission events, optional
	var publisher services.Publisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
			os.Exit(1)
		}
		publisher = client
		logger.Info("Submission events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("Submission events disabled - no AMQP_URL provided")
	}
	submissions := services.NewSubmissionService(publisher, logger)
	defer submissions.Close()

	// Results endpoint
	client, err := fetch.NewClient(cfg.ResultsEndpoint, nil, cfg.FetchTimeout)
	if err != nil {
		logger.Error("Invalid results endpoint", log.FieldError, err.Error(), log.FieldEndpoint, cfg.ResultsEndpoint)
		os.Exit(1)
	}
	fetcher := fetch.Instrument(client)

	sessions := session.NewStore(session.Options{
		NewView: func(id string) *view.View {
			return view.New(view.Options{
				SessionID:       id,
				Fetcher:         fetcher,
				Notifier:        submissions,
				Logger:          logger,
				RefreshInterval: cfg.RefreshInterval,
			})
		},
		TTL:          cfg.SessionTTL,
		MaxSize:      cfg.SessionMax,
		SecureCookie: cfg.SessionSecureCookie,
		Logger:       logger,
	})

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Addr(),
		Sessions:           sessions,
		Taxonomy:           result.Backend,
		Submissions:        submissions,
		Fetches:            fetcher,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		SessionsPerMinute:  cfg.SessionsPerMinute,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", log.FieldError, err.Error())
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = cfg.FetchTimeout + 10*time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting dataentry server",
			"addr", cfg.Addr(),
			"backend", backendCfg.Type,
			log.FieldEndpoint, cfg.ResultsEndpoint,
			"refresh_interval", cfg.RefreshInterval.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
