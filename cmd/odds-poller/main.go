package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
	"github.com/benyetra/yetai-backend/internal/shared/cache"
	"github.com/benyetra/yetai-backend/internal/shared/config"
	"github.com/benyetra/yetai-backend/internal/shared/db"
	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/internal/shared/logger"
	"github.com/benyetra/yetai-backend/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if cfg.OddsAPIKey == "" {
		log.Fatal("ODDS_API_KEY is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	oddsWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicOddsUpdates)
	defer oddsWriter.Close()
	finalWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicGameFinal)
	defer finalWriter.Close()

	catalog, err := oddsfeed.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("load sports catalog", zap.Error(err))
	}

	poller := &oddsfeed.Poller{
		Log:         log,
		Client:      oddsfeed.NewClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey),
		Games:       games.NewPostgres(pg),
		Lines:       oddsfeed.NewPostgres(pg),
		Snap:        oddsfeed.NewSnapshot(rdb, 30*time.Second),
		Publ:        oddsfeed.NewKafkaPublisher(oddsWriter, finalWriter),
		Bcast:       oddsfeed.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel),
		Catalog:     catalog,
		OddsEvery:   cfg.OddsPollInterval,
		ScoresEvery: cfg.ScoresPollInterval,
		ScoreDays:   2,
	}

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	defer metricsSrv.Shutdown(context.Background())
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("odds-poller started",
		zap.Duration("oddsEvery", cfg.OddsPollInterval),
		zap.Duration("scoresEvery", cfg.ScoresPollInterval),
		zap.Int("sports", len(catalog.Active())),
	)
	poller.Run(ctx)
	log.Info("odds-poller stopped")
}
