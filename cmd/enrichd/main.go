// Command enrichd runs the review enrichment service: a poller drains
// pending reviews from the store through the enrichment pipeline, and an
// HTTP API exposes health, stats, metrics, and ad-hoc enrichment.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sercanai/screenaso/internal/api"
	"github.com/sercanai/screenaso/internal/config"
	"github.com/sercanai/screenaso/internal/enricher"
	"github.com/sercanai/screenaso/internal/logger"
	"github.com/sercanai/screenaso/internal/mlclient"
	"github.com/sercanai/screenaso/internal/privacy"
	"github.com/sercanai/screenaso/internal/processor"
	"github.com/sercanai/screenaso/internal/publisher"
	"github.com/sercanai/screenaso/internal/storage"
	"github.com/sercanai/screenaso/internal/telemetry"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load(config.Path("config.yml"))
	if err != nil {
		logger.Must(logger.Config{Level: "info"}).Fatal("failed to load config", logger.Error(err))
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Service.Debug,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting enrichment service",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version))

	if err := run(cfg, log); err != nil {
		log.Fatal("service failed", logger.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := storage.EnsureSchema(ctx, db); err != nil {
		return err
	}
	repo := storage.NewReviewRepository(db, log)
	log.Info("review store connected", logger.String("driver", cfg.Database.Driver))

	tel := telemetry.NewProvider()

	// The model sidecar is optional. Without it the pipeline runs fully
	// local: pattern redaction and heuristic aspects.
	opts := []enricher.Option{}
	if cfg.Enrichment.MLServiceURL != "" {
		sidecar := mlclient.NewClient(cfg.Enrichment.MLServiceURL)
		opts = append(opts,
			enricher.WithRedactor(privacy.NewRedactor(sidecar, log)),
			enricher.WithZeroShot(sidecar),
		)
		log.Info("model sidecar configured", logger.String("url", cfg.Enrichment.MLServiceURL))
	}

	enr := enricher.New(enricher.Config{
		Version:               cfg.Service.Version,
		EnableZeroShot:        cfg.Enrichment.EnableZeroShot,
		KeywordLimit:          cfg.Enrichment.KeywordLimit,
		ValuePhraseLimit:      cfg.Enrichment.ValuePhraseLimit,
		MinLanguageConfidence: cfg.Enrichment.MinLanguageConfidence,
		ZeroShotThreshold:     cfg.Enrichment.ZeroShotThreshold,
		SidecarRPS:            float64(cfg.Enrichment.SidecarRPS),
	}, log, opts...)

	var pub publisher.Publisher = publisher.Nop{}
	if cfg.Redis.Enabled {
		redisPub, pubErr := publisher.NewRedis(ctx, cfg.Redis, log)
		if pubErr != nil {
			return pubErr
		}
		defer redisPub.Close()
		pub = redisPub
		log.Info("redis fan-out enabled", logger.String("channel", cfg.Redis.Channel))
	}

	batch := processor.NewBatchProcessor(enr, cfg.Service.Concurrency, log, tel)
	poller := processor.NewPoller(repo, pub, batch, log, tel, processor.PollerConfig{
		BatchSize:    cfg.Service.BatchSize,
		PollInterval: cfg.Service.PollInterval,
	})
	if err := poller.Start(ctx); err != nil {
		return err
	}
	defer poller.Stop()

	handler := api.NewHandler(enr, batch, poller, repo, log, cfg.Service.Name, cfg.Service.Version)
	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, tel.Handler(), log)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("service stopped")
	return nil
}
