package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wittyvishnu/starfashion-backend/pkg/config"
	"github.com/wittyvishnu/starfashion-backend/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "starfashion-test", ExpirationMinutes: 60}
	logg := logger.New(logger.Options{ServiceName: "router-test", Level: logger.ParseLevel("error")})
	return NewRouter(RouterParams{
		Config: cfg,
		Logger: logg,
		Probes: map[string]func(ctx context.Context) error{
			"db": func(context.Context) error { return nil },
		},
	})
}

func TestRouterHealthLive(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("X-StarFashion-Env"); got != "test" {
		t.Fatalf("env header = %q", got)
	}
}

func TestRouterHealthReady(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouterProtectedRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t)
	targets := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/checkout"},
		{http.MethodGet, "/api/v1/orders"},
	}
	for _, target := range targets {
		req := httptest.NewRequest(target.method, target.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want 401", target.method, target.path, rec.Code)
		}
	}
}

func TestRouterRequestIDHeader(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing request id header")
	}
}
