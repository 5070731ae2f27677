package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	h := NewHealthHandler(map[string]HealthCheck{"postgres": ok, "redis": ok})
	rec, _ := serve(t, http.MethodGet, "/health", "/health", nil, nil, h.Check)
	assert.Equal(t, http.StatusOK, rec.Code)

	h = NewHealthHandler(map[string]HealthCheck{"postgres": ok, "redis": down})
	rec, env := serve(t, http.MethodGet, "/health", "/health", nil, nil, h.Check)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, string(env.Error), "connection refused")
}
