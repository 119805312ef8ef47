package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/maplist-import/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/maplist-import/internal/adapter/kafka"
	minioadapter "github.com/couchcryptid/maplist-import/internal/adapter/minio"
	"github.com/couchcryptid/maplist-import/internal/adapter/postgres"
	"github.com/couchcryptid/maplist-import/internal/adapter/web"
	"github.com/couchcryptid/maplist-import/internal/config"
	"github.com/couchcryptid/maplist-import/internal/observability"
	"github.com/couchcryptid/maplist-import/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireDatabase(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, 30*time.Second)
	pool, err := postgres.NewPool(startupCtx, cfg.DatabaseURL)
	if err == nil {
		err = postgres.Migrate(startupCtx, pool)
	}
	if err != nil {
		cancelStartup()
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	store := postgres.NewStore(pool, logger)

	// Page snapshots (feature-flagged via SNAPSHOT_ENABLED).
	var archiver pipeline.PageArchiver
	if cfg.SnapshotEnabled {
		a, err := minioadapter.NewArchiver(minioadapter.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.SnapshotBucket,
		}, clock, logger)
		if err == nil {
			err = a.EnsureBucket(startupCtx)
		}
		if err != nil {
			logger.Warn("page snapshots disabled", "error", err)
		} else {
			archiver = a
			logger.Info("page snapshots enabled", "bucket", cfg.SnapshotBucket)
		}
	}
	cancelStartup()

	// Imported-location events (feature-flagged via KAFKA_ENABLED).
	var publisher pipeline.EventPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaImportTopic, logger)
		publisher = kafkaPublisher
		logger.Info("import events enabled", "topic", cfg.KafkaImportTopic)
	}

	client := web.NewClient(web.ClientOptions{
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.FetchUserAgent,
		Bypass:    cfg.FetchBypass,
	})
	resolver := web.NewCachedResolver(web.NewResolver(client, logger), cfg.ResolverCacheSize, metrics)
	fetcher := web.NewFetcher(client, cfg.FetchMaxBytes, logger)

	parser := pipeline.NewListParser(resolver, fetcher, archiver, logger, metrics)
	importer := pipeline.NewImporter(store, publisher, clock, cfg.ImportItemDelay, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, store, parser, importer, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	pool.Close()

	logger.Info("shutdown complete")
}
