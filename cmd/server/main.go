package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/app"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/cache"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/config"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/database"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/logging"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/ratelimit"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/redis"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/server"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/twitter"
)

const sweepInterval = 5 * time.Minute

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	pool := setupDB(cfg)
	defer pool.Close()

	// Redis is optional; without it the leaderboard page cache is skipped.
	var leaderboardCache domain.LeaderboardCache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = setupRedis(cfg)
		defer func() { _ = redisClient.Close() }()
		leaderboardCache = redis.NewLeaderboardCacheRepo(redisClient.Underlying())
	}

	twitterClient := twitter.NewClient(twitter.Config{
		APIKey: cfg.RapidAPIKey,
		Host:   cfg.RapidAPIHost,
	})
	if cfg.RapidAPIKey == "" {
		slog.Warn("X_RAPIDAPI_KEY not set, checks will degrade to zero scores")
	}

	results := cache.New[domain.User](cache.DefaultTTL, clock)
	stopEviction := results.StartEvictionTimer(sweepInterval)
	defer stopEviction()

	callerLimiter := ratelimit.New(time.Minute, cfg.CallerRateLimit, clock)
	stopCallerSweep := callerLimiter.StartSweepTimer(sweepInterval)
	defer stopCallerSweep()

	apiLimiter := ratelimit.New(time.Minute, cfg.APIRateLimit, clock)
	stopAPISweep := apiLimiter.StartSweepTimer(sweepInterval)
	defer stopAPISweep()

	appSvc := app.NewService(
		database.NewUserRepo(pool),
		twitter.NewAnalyzer(twitterClient),
		results,
		callerLimiter,
		apiLimiter,
		leaderboardCache,
		clock,
	)

	healthChecks := []server.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
	}
	if redisClient != nil {
		healthChecks = append(healthChecks, server.HealthCheck{Name: "redis", Check: redisClient.Ping})
	}

	srv := server.NewServer(cfg, appSvc, healthChecks)

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
