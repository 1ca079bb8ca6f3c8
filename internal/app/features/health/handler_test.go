package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/studycircle/internal/app/features/health"
	"github.com/dalemusser/studycircle/internal/testutil"
	"go.uber.org/zap"
)

type response struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Message  string `json:"message"`
}

func serve(t *testing.T, h *health.Handler) (*httptest.ResponseRecorder, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec, resp
}

var (
	up   = health.PingFunc(func(context.Context) error { return nil })
	down = health.PingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func TestServe(t *testing.T) {
	tests := []struct {
		name      string
		db, cache health.Pinger
		code      int
		status    string
		database  string
		cacheWant string
	}{
		{"all up", up, up, http.StatusOK, "ok", "connected", "connected"},
		{"no cache configured", up, nil, http.StatusOK, "ok", "connected", ""},
		{"cache down", up, down, http.StatusOK, "ok", "connected", "disconnected"},
		{"database down", down, up, http.StatusServiceUnavailable, "error", "disconnected", "connected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := serve(t, health.NewHandler(tt.db, tt.cache, zap.NewNop()))
			if rec.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, rec.Code)
			}
			if resp.Status != tt.status || resp.Database != tt.database || resp.Cache != tt.cacheWant {
				t.Errorf("unexpected body: %+v", resp)
			}
		})
	}
}

func TestServe_DatabaseConnected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	rec, resp := serve(t, health.NewHandler(health.MongoPinger(db.Client()), nil, zap.NewNop()))

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if resp.Status != "ok" || resp.Database != "connected" {
		t.Errorf("unexpected body: %+v", resp)
	}
}
