package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestRouter_Root(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter("test", nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Telegram Bot is running", rec.Body.String())
}

func TestRouter_Health(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		db         Pinger
		wantCode   int
		wantStatus string
	}{
		{"no database", "/health", nil, http.StatusOK, "healthy"},
		{"database up", "/healthz", pingFunc(func(context.Context) error { return nil }), http.StatusOK, "healthy"},
		{"database down", "/health", pingFunc(func(context.Context) error { return errors.New("closed") }), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewRouter("production", tt.db).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body status
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "telegram-bot", body.Service)
			assert.Equal(t, "production", body.Environment)
		})
	}
}

func TestRouter_UnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter("test", nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_AllowsCrossOriginGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://status.example.com")
	rec := httptest.NewRecorder()

	NewRouter("test", nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
