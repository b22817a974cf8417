package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// One-shot snapshot for clients that poll instead of streaming
	s.echo.GET("/api/dashboard", s.handleDashboard)

	// Viewer stream
	s.echo.GET("/ws", s.handleWebSocket)
}
