package main

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/disaster-resilience-api/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/disaster-resilience-api/internal/adapter/kafka"
	natsadapter "github.com/couchcryptid/disaster-resilience-api/internal/adapter/nats"
	"github.com/couchcryptid/disaster-resilience-api/internal/adapter/newsapi"
	"github.com/couchcryptid/disaster-resilience-api/internal/adapter/sqlite"
	"github.com/couchcryptid/disaster-resilience-api/internal/adapter/supabase"
	"github.com/couchcryptid/disaster-resilience-api/internal/config"
	"github.com/couchcryptid/disaster-resilience-api/internal/domain"
	"github.com/couchcryptid/disaster-resilience-api/internal/observability"
	"github.com/couchcryptid/disaster-resilience-api/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, metrics); err != nil {
		logger.Error("service stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Error("close error", "error", err)
			}
		}
	}()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}

	// News fetcher, optionally cached (NEWS_CACHE_TTL > 0).
	var news domain.NewsFetcher = newsapi.NewClient(newsapi.Options{
		BaseURL:   cfg.NewsAPIURL,
		APIKey:    cfg.NewsAPIKey,
		Timeout:   cfg.NewsTimeout,
		PageSize:  cfg.NewsPageSize,
		RateLimit: cfg.NewsRateLimit,
		RateBurst: cfg.NewsRateBurst,
	}, logger)
	if cfg.NewsCacheTTL > 0 {
		news = newsapi.NewCachedFetcher(news, cfg.NewsCacheTTL, metrics)
		logger.Info("news cache enabled", "ttl", cfg.NewsCacheTTL)
	}
	if cfg.NewsAPIKey == "" {
		logger.Warn("NEWS_API_KEY is not set; news requests will fail")
	}

	opts := []service.Option{service.WithStoreTimeout(cfg.StoreTimeout)}
	switch cfg.PublishBackend {
	case config.PublishNATS:
		pub, err := natsadapter.Connect(cfg.NATSURL, cfg.NATSSubjectPrefix, cfg.ServiceName, logger)
		if err != nil {
			return err
		}
		closers = append(closers, pub)
		opts = append(opts, service.WithPublisher(pub, cfg.PublishBackend))
		logger.Info("record publishing enabled", "backend", "nats", "prefix", cfg.NATSSubjectPrefix)
	case config.PublishKafka:
		pub := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger, metrics)
		closers = append(closers, pub)
		opts = append(opts, service.WithPublisher(pub, cfg.PublishBackend))
		logger.Info("record publishing enabled", "backend", "kafka", "topic", cfg.KafkaTopic)
	default:
		logger.Info("record publishing disabled")
	}

	svc := service.New(store, news, logger, metrics, opts...)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		APIPrefix:      cfg.APIPrefix,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		StoreDriver:    cfg.StoreDriver,
		CORSOrigins:    cfg.CORSOrigins,
	}, svc, logger, metrics)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.TableStore, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		return sqlite.Open(ctx, cfg.SQLitePath, logger)
	default:
		logger.Info("using supabase table store", "url", cfg.SupabaseURL)
		return supabase.NewStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StoreTimeout, logger), nil
	}
}
