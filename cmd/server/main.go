package main

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/messaging"
	"github.com/rl1809/storefront/internal/adapter/seed"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/catalog"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/obs"
	"github.com/rl1809/storefront/internal/port"
)

func main() {
	cfg := config.Load()
	logger := obs.NewLogger(cfg.LogLevel, cfg.LogPretty)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var closers []func() error

	// Catalog source
	var source port.CatalogSource = seed.NewStaticSource()
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open mysql")
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ping mysql")
		}
		closers = append(closers, db.Close)

		mysqlAdapter := storage.NewMySQLAdapter(db)
		if err := mysqlAdapter.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate mysql")
		}
		if err := seedIfEmpty(ctx, mysqlAdapter); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed mysql")
		}
		source = mysqlAdapter
		logger.Info().Msg("catalog source: mysql")
	}

	products, err := source.LoadProducts(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load products")
	}
	cat, err := catalog.New(products)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid catalog")
	}
	logger.Info().Int("products", cat.Len()).Strs("categories", cat.Categories()).Msg("catalog loaded")

	// Price sinks
	var sinks []port.PriceSink
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, PoolSize: 20})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		closers = append(closers, rdb.Close)
		sinks = append(sinks, storage.NewRedisAdapter(rdb, cfg.RedisPriceTTL))
		logger.Info().Str("addr", cfg.RedisAddr).Msg("price sink: redis")
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		closers = append(closers, publisher.Close)
		sinks = append(sinks, publisher)
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("price sink: kafka")
	}

	// Services
	sessionCfg := service.DefaultSessionConfig()
	sessionCfg.TickInterval = cfg.PriceTick
	sessionCfg.Fluctuation = cfg.Fluctuation()
	sessionCfg.IdleTimeout = cfg.SessionIdle
	sessionCfg.ReapInterval = cfg.SessionReapEvery
	sessionCfg.MaxSessions = cfg.MaxSessions

	sessions := service.NewSessionService(cat, sessionCfg, logger, sinks...)
	catalogService := service.NewCatalogService(cat, logger)

	reaperDone := make(chan struct{})
	go func() {
		defer close(reaperDone)
		sessions.Run(ctx)
	}()

	// gRPC server
	grpcServer := handler.NewGRPCServer(handler.NewGRPCHandler(catalogService, sessions, logger), logger)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("failed to listen")
	}
	go func() {
		logger.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// HTTP server
	httpHandler := handler.NewHTTPHandler(catalogService, sessions, logger)
	e := handler.NewServer(httpHandler, handler.RateLimit{RPS: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst})
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP shutdown")
	}
	logger.Info().Msg("HTTP server stopped")

	stopGRPC(shutdownCtx, grpcServer.GracefulStop, grpcServer.Stop)
	logger.Info().Msg("gRPC server stopped")

	cancel()
	<-reaperDone
	sessions.CloseAll()
	logger.Info().Msg("sessions closed")

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Warn().Err(err).Msg("close connection")
		}
	}
	logger.Info().Msg("connections closed")
}

// seedIfEmpty writes the compiled-in products into an empty database.
func seedIfEmpty(ctx context.Context, m *storage.MySQLAdapter) error {
	existing, err := m.LoadProducts(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	return m.SaveProducts(ctx, seed.Products())
}

// stopGRPC waits for in-flight calls, forcing a stop once ctx expires.
// Open WatchPrices streams never finish on their own.
func stopGRPC(ctx context.Context, graceful, force func()) {
	done := make(chan struct{})
	go func() {
		graceful()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		force()
		<-done
	}
}
