package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("database is gone")
}

func TestHealth_OK(t *testing.T) {
	env := newTestEnv(t)
	handler := NewHealthHandler(slog.New(slog.DiscardHandler), env.storage, "1.2.3")

	w := doJSON(t, handler.Health, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealth_StorageDown(t *testing.T) {
	handler := NewHealthHandler(slog.New(slog.DiscardHandler), failingPinger{}, "1.2.3")

	w := doJSON(t, handler.Health, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "unavailable", resp.Status)
}
