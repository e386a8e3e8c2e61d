package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/venuepulse/backend/internal/config"
	"github.com/venuepulse/backend/internal/http/handlers"
	"github.com/venuepulse/backend/internal/metrics"
	"github.com/venuepulse/backend/internal/service"
)

type nopStore struct{ handlers.Store }

func (nopStore) Ping(ctx context.Context) error { return nil }

type countingStats struct{ invalidated int }

func (s *countingStats) VenueStats(ctx context.Context, req service.StatsRequest) (metrics.Snapshot, error) {
	return metrics.Snapshot{}, nil
}

func (s *countingStats) InvalidateAll() { s.invalidated++ }

func TestRouterAdminGroup(t *testing.T) {
	stats := &countingStats{}
	r := Router(config.Config{AdminKey: "k", CORSAllowed: "*"}, nopStore{}, stats, zerolog.Nop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/cache/invalidate", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/cache/invalidate", nil)
	req.Header.Set("X-Admin-Key", "k")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || stats.invalidated != 1 {
		t.Fatalf("expected invalidation with key, got %d", w.Code)
	}
}

func TestRouterPublicRoutes(t *testing.T) {
	r := Router(config.Config{AdminKey: "k", CORSAllowed: "https://dash.example.com"}, nopStore{}, &countingStats{}, zerolog.Nop())

	for _, path := range []string{"/healthz", "/api/stats?range=today", "/api/venues/v1/stats"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, w.Code)
		}
		if w.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: expected request id header", path)
		}
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.example.com, ,https://b.example.com")
	if len(got) != 2 || got[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", got)
	}
}

