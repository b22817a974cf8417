package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mwalther/pulseboard/internal/config"
	"github.com/mwalther/pulseboard/internal/feed"
	"github.com/mwalther/pulseboard/internal/hub"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	feed      *feed.Feed
	hub       *hub.Hub
	startTime time.Time

	// Overrides the real client in tests.
	redisHealthCheck redisHealthChecker
	redisClient      *goredis.Client
}

func New(cfg *config.Config, dataFeed *feed.Feed, h *hub.Hub, rdb *goredis.Client) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())

	srv := &Server{
		echo:        e,
		config:      cfg,
		feed:        dataFeed,
		hub:         h,
		startTime:   time.Now(),
		redisClient: rdb,
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
