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

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mwalther/pulseboard/internal/bridge"
	"github.com/mwalther/pulseboard/internal/config"
	"github.com/mwalther/pulseboard/internal/domain"
	"github.com/mwalther/pulseboard/internal/feed"
	"github.com/mwalther/pulseboard/internal/hub"
	"github.com/mwalther/pulseboard/internal/logging"
	"github.com/mwalther/pulseboard/internal/redis"
	"github.com/mwalther/pulseboard/internal/server"
	"github.com/mwalther/pulseboard/internal/state"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}

	// The broker may come up after us. Retry the first ping with backoff
	// instead of crash-looping the whole process.
	retry := retrypolicy.NewBuilder[any]().
		WithBackoff(time.Second, 10*time.Second).
		WithMaxRetries(5).
		Build()

	err = failsafe.Run(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(ctx).Err()
	}, retry)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	return client
}

func runGracefulShutdown(srv *server.Server, dataFeed *feed.Feed, h *hub.Hub, cancelBridge context.CancelFunc) <-chan struct{} {
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

		cancelBridge()
		h.Stop()
		dataFeed.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	store := state.New(state.Config{
		HistoryWindow: cfg.HistoryWindow,
		ActivityCap:   cfg.ActivityCap,
	}, clock.Now())

	// The hub fetches its registration snapshot through the feed, and the
	// feed broadcasts through the hub. Resolve the cycle with a closure
	// over the feed variable; the hub never uses it before Register.
	var dataFeed *feed.Feed
	h := hub.New(func(ctx context.Context) (domain.Snapshot, error) {
		return dataFeed.Snapshot(ctx)
	}, clock, cfg.MaxClients)
	dataFeed = feed.New(store, h, clock, feed.Intervals{
		ActiveUsers: cfg.ActiveUsersInterval,
		Metrics:     cfg.MetricsInterval,
		Activity:    cfg.ActivityInterval,
	})

	topics := bridge.Topics{
		Alerts:    cfg.AlertsTopic,
		AdminLogs: cfg.AdminLogsTopic,
	}

	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	defer cancelBridge()

	eventBridge := bridge.New(redisClient, h, topics)
	go eventBridge.Run(bridgeCtx)

	if cfg.SimulatorEnabled {
		sim := bridge.NewSimulator(redisClient, clock, topics, cfg.AlertInterval, cfg.AdminLogInterval)
		go sim.Run(bridgeCtx)
	}

	srv := server.New(cfg, dataFeed, h, redisClient)

	done := runGracefulShutdown(srv, dataFeed, h, cancelBridge)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
