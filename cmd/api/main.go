// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"threadscope/internal/adapter/storage"
	"threadscope/internal/cache"
	"threadscope/internal/client/reddit"
	"threadscope/internal/config"
	"threadscope/internal/server"
	"threadscope/internal/service/analyzer"
	"threadscope/internal/service/insight"
)

func main() {
	// Environment file is optional
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Persistence is best effort: the pipeline serves results without it.
	var store analyzer.Store
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Warn("database unavailable, continuing without persistence", "error", err)
	} else {
		defer db.Close()
		store = storage.NewAnalyticsStore(db)
	}

	// The event bus is best effort as well.
	natsConn, err := initNATS(cfg.NATS, logger)
	if err != nil {
		logger.Warn("NATS unavailable, continuing without events", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// One fetch client for the whole process: the rate limit it carries
	// is shared by every concurrent pipeline run.
	fetcher := reddit.NewClient(reddit.Config{
		UserAgent:      cfg.Reddit.UserAgent,
		MaxAttempts:    cfg.Reddit.MaxAttempts,
		AttemptTimeout: cfg.Reddit.AttemptTimeout,
		BackoffBase:    cfg.Reddit.BackoffBase,
		WindowRequests: cfg.Reddit.WindowRequests,
		WindowInterval: cfg.Reddit.WindowInterval,
		SustainedRPS:   cfg.Reddit.SustainedRPS,
	}, logger)

	resultCache := cache.New(cfg.Cache.TTL, cfg.Cache.SweepInterval)
	defer resultCache.Close()

	var insightGen analyzer.InsightGenerator
	if cfg.Insight.Enabled {
		insightGen = insight.NewClient(insight.Config{
			BaseURL: cfg.Insight.BaseURL,
			APIKey:  cfg.Insight.APIKey,
			Model:   cfg.Insight.Model,
			Timeout: cfg.Insight.Timeout,
		})
	}

	service := analyzer.NewService(
		fetcher,
		resultCache,
		store,
		insightGen,
		natsConn,
		analyzer.Config{
			Endpoints: reddit.Endpoints{
				BaseURL:      cfg.Reddit.BaseURL,
				PushshiftURL: cfg.Reddit.PushshiftURL,
			},
			CommentSearchLimit: cfg.Analytics.CommentSearchLimit,
			OverviewLimit:      cfg.Analytics.OverviewLimit,
			TopPostsLimit:      cfg.Analytics.TopPostsLimit,
			EventsTopic:        cfg.Analytics.EventsTopic,
		},
		logger,
	)

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, service, natsConn, cfg.Analytics.EventsTopic, logger)

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	logger.Info("shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *slog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
