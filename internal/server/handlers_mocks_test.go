package server

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/app"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/config"
	"github.com/anuragShingare30/eth-mumbai-fanScore/internal/domain"
)

// --- Mock implementations ---

type mockAppService struct {
	checkScoreFn  func(ctx context.Context, req app.CheckRequest) (*app.CheckResult, error)
	leaderboardFn func(ctx context.Context, page, limit int) (*domain.LeaderboardPage, error)
}

func (m *mockAppService) CheckScore(ctx context.Context, req app.CheckRequest) (*app.CheckResult, error) {
	if m.checkScoreFn != nil {
		return m.checkScoreFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAppService) Leaderboard(ctx context.Context, page, limit int) (*domain.LeaderboardPage, error) {
	if m.leaderboardFn != nil {
		return m.leaderboardFn(ctx, page, limit)
	}
	return nil, errors.New("not implemented")
}

// --- Test server setup ---

func newTestServer(t *testing.T, app appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv := &Server{
		echo:   echo.New(),
		config: &config.Config{Port: "8080"},
		app:    app,
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withHealthChecks(checks []HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

func performRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}
