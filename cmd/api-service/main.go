package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/benyetra/yetai-backend/internal/api"
	"github.com/benyetra/yetai-backend/internal/auth"
	"github.com/benyetra/yetai-backend/internal/bets"
	"github.com/benyetra/yetai-backend/internal/fantasy"
	"github.com/benyetra/yetai-backend/internal/games"
	"github.com/benyetra/yetai-backend/internal/oddsfeed"
	"github.com/benyetra/yetai-backend/internal/picks"
	"github.com/benyetra/yetai-backend/internal/shared/cache"
	"github.com/benyetra/yetai-backend/internal/shared/config"
	"github.com/benyetra/yetai-backend/internal/shared/db"
	"github.com/benyetra/yetai-backend/internal/shared/kafka"
	"github.com/benyetra/yetai-backend/internal/shared/logger"
	"github.com/benyetra/yetai-backend/internal/shared/metrics"
	"github.com/benyetra/yetai-backend/internal/users"
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

	// Postgres (com migrações embutidas)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka (bet_placed)
	betPlacedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betPlacedWriter.Close()

	// Catálogo de esportes (compartilhado com o poller)
	catalog, err := oddsfeed.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatal("load sports catalog", zap.Error(err))
	}

	// repos
	userRepo := users.NewPostgres(pg)
	walletRepo := wallet.NewPostgres(pg, cfg.InitialBalanceCents)
	gameRepo := games.NewPostgres(pg)
	lineRepo := oddsfeed.NewPostgres(pg)
	betRepo := bets.NewPostgres(pg)
	pickRepo := picks.NewPostgres(pg)
	fantasyRepo := fantasy.NewPostgres(pg)

	snap := oddsfeed.NewSnapshot(rdb, 30*time.Second)

	betSvc := &bets.Service{
		Log:      log,
		Repo:     betRepo,
		Games:    gameRepo,
		Wallet:   walletRepo,
		Prices:   snap,
		Publ:     bets.NewKafkaPublisher(betPlacedWriter),
		DriftBps: cfg.OddsDriftBps,
	}

	sleeper := fantasy.NewClient(cfg.SleeperBaseURL)
	fantasySvc := &fantasy.Service{Log: log, Client: sleeper, Repo: fantasyRepo}

	// WS hub alimentado pelo canal Pub/Sub do poller
	hub := api.NewHub(func(*http.Request) bool { return true })
	api.StartRedisSubscriber(ctx, log, rdb, cfg.RedisPubSubChannel, hub)

	server := &api.Server{
		Log:     log,
		JWT:     auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Users:   userRepo,
		Wallet:  walletRepo,
		Bets:    betSvc,
		BetRead: betRepo,
		Games:   gameRepo,
		Lines:   lineRepo,
		Snap:    snap,
		Picks:   pickRepo,
		Fantasy: fantasyRepo,
		Syncer:  fantasySvc,
		Catalog: catalog,
		Hub:     hub,
	}

	// metrics/health em porta separada
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

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
	}()

	log.Info("api-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api server failed", zap.Error(err))
	}
	log.Info("api-service stopped")
}
