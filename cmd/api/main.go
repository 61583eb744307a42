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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/BuidlZone-Labs/zicket-contract/internal/app"
	"github.com/BuidlZone-Labs/zicket-contract/internal/auth"
	"github.com/BuidlZone-Labs/zicket-contract/internal/clock"
	"github.com/BuidlZone-Labs/zicket-contract/internal/config"
	"github.com/BuidlZone-Labs/zicket-contract/internal/metrics"
	"github.com/BuidlZone-Labs/zicket-contract/internal/notify"
	"github.com/BuidlZone-Labs/zicket-contract/internal/storage/postgres"
	transporthttp "github.com/BuidlZone-Labs/zicket-contract/internal/transport/http"
	"github.com/BuidlZone-Labs/zicket-contract/migrations"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	var sink notify.Sink
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = client.Close() }()

		if err := client.Ping(startupCtx).Err(); err != nil {
			logger.Error("redis ping", "error", err)
			os.Exit(1)
		}
		sink = notify.NewRedisSink(client, cfg.NotifyStream, logger)
		logger.Info("notifications on redis stream", "stream", cfg.NotifyStream)
	} else {
		logger.Warn("REDIS_ADDR not set, notifications stay in process memory")
		sink = notify.NewMemorySink()
	}

	var verifier auth.Verifier
	if cfg.AuthSecret != "" {
		verifier = auth.NewTokenVerifier([]byte(cfg.AuthSecret))
	} else {
		logger.Warn("AUTH_HMAC_SECRET not set, trusting claimed caller identities")
		verifier = auth.AllowAll{}
	}

	metrics.Init()
	clk := clock.NewSystem()

	registrySvc := app.NewRegistryService(postgres.NewEventRepository(pool), clk, verifier, sink)
	inventorySvc := app.NewInventoryService(postgres.NewRegistrationRepository(pool), clk, verifier, sink)
	paymentSvc := app.NewPaymentService(postgres.NewPaymentRepository(pool), postgres.NewTreasury(pool), clk, verifier, sink)
	ticketSvc := app.NewTicketService(postgres.NewTicketRepository(pool), clk, verifier, sink)

	mux := transporthttp.NewMux(registrySvc, inventorySvc, paymentSvc, ticketSvc)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := transporthttp.RequestLogger(
		transporthttp.CORS(cfg.CORSOrigins, transporthttp.BearerCredential(mux)),
		logger,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
