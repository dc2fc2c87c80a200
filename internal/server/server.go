// Package server is the HTTP edge: Echo wiring, routes and handlers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/app"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/config"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
)

// appService is the application surface the handlers consume.
type appService interface {
	CheckScore(ctx context.Context, req app.CheckRequest) (*app.CheckResult, error)
	Leaderboard(ctx context.Context, page, limit int) (*domain.LeaderboardPage, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
