package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/internal/settlement"
	"github.com/benyetra/yetai-backend/internal/shared/config"
	"github.com/benyetra/yetai-backend/internal/shared/db"
	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/internal/shared/logger"
	"github.com/benyetra/yetai-backend/internal/shared/metrics"
	"github.com/benyetra/yetai-backend/internal/wallet"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// caminho rápido: eventos game_final do poller
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicGameFinal, "settlement-worker")
	defer reader.Close()

	settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer settledWriter.Close()
	dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettledDLQ)
	defer dlqWriter.Close()

	worker := &settlement.Worker{
		Log:      log,
		Repo:     settlement.NewPostgres(pg),
		Wallet:   wallet.NewPostgres(pg, cfg.InitialBalanceCents),
		Picks:    picks.NewPostgres(pg),
		Games:    games.NewPostgres(pg),
		Publ:     settlement.NewKafkaPublisher(settledWriter, dlqWriter),
		Reader:   reader,
		Interval: cfg.SettleInterval,
	}

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		return nil
	})
	defer metricsSrv.Shutdown(context.Background())
	log.Info("metrics/health", zap.String("addr", ":"+cfg.MetricsPort))

	log.Info("settlement-worker started",
		zap.Duration("sweepEvery", cfg.SettleInterval),
		zap.String("consume", cfg.TopicGameFinal),
		zap.String("publish", cfg.TopicBetSettled),
	)
	worker.Run(ctx)
	log.Info("settlement-worker stopped")
}
