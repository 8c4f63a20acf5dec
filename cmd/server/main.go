package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"movierag/internal/agents/classifier"
	"movierag/internal/agents/emotion"
	"movierag/internal/agents/profile"
	"movierag/internal/agents/recommender"
	"movierag/internal/auth"
	"movierag/internal/common/config"
	"movierag/internal/common/database"
	"movierag/internal/common/logger"
	"movierag/internal/common/observability"
	"movierag/internal/graph"
	"movierag/internal/history"
	"movierag/internal/llm"
	"movierag/internal/router"
	"movierag/internal/server"
	"movierag/internal/tmdb"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting movie recommendation service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Neo4j with retry ---
	var neo *database.Neo4jClient
	err = retryWithBackoff(func() error {
		var err error
		neo, err = database.NewNeo4j(cfg.Database.Neo4j)
		if err != nil {
			return err
		}
		return neo.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Neo4j connection")

	if err != nil {
		zapLog.Fatal("neo4j failed after retries", zap.Error(err))
	}
	defer neo.Close(ctx)
	zapLog.Info("Neo4j connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init inference client ---
	completer, err := llm.NewClient(cfg.OpenAI)
	if err != nil {
		zapLog.Fatal("inference client init failed", zap.Error(err))
	}

	// --- Wire the pipeline ---
	chatStore := history.NewStore(rdb.GetClient(), log)
	authSvc := auth.NewService(rdb.GetClient(), log)
	metadata := tmdb.NewClient(cfg.TMDB, log)

	pipeline := router.New(
		classifier.New(completer, log),
		graph.NewLookup(neo, log),
		chatStore,
		profile.New(completer, log),
		emotion.New(completer, log),
		recommender.New(completer, log),
		router.Timeouts{
			Classify:  config.GetDuration(config.GetAgentConfig(cfg, classifier.Stage).Timeout),
			Lookup:    config.GetDuration(config.GetAgentConfig(cfg, "graph-lookup").Timeout),
			Profile:   config.GetDuration(config.GetAgentConfig(cfg, profile.Stage).Timeout),
			Synthesis: config.GetDuration(config.GetAgentConfig(cfg, recommender.Stage).Timeout),
			Emotion:   config.GetDuration(config.GetAgentConfig(cfg, emotion.Stage).Timeout),
		},
		log,
	)

	srv := server.New(cfg.Server, pipeline, authSvc, chatStore, metadata, obs, log)

	httpServer := &http.Server{
		Addr:         srv.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zapLog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
