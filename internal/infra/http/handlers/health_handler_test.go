package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

type readiness map[string]bool

func (r readiness) Ready(c entity.Collection) bool { return r[c.Name] }

type broker bool

func (b broker) Healthy() bool { return bool(b) }

func runHealth(t *testing.T, h *HealthHandler) (int, HealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestHealthHealthy(t *testing.T) {
	cols := []entity.Collection{{Name: "nri-1501"}, {Name: "nri-1504"}}
	h := NewHealthHandler(cols, readiness{"nri-1501": true, "nri-1504": true}, broker(true))

	code, resp := runHealth(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "healthy", resp.Dependencies["rabbitmq"])
	assert.Equal(t, "healthy", resp.Dependencies["firestore:nri-1504"])
}

func TestHealthDegradedWhileLoading(t *testing.T) {
	cols := []entity.Collection{{Name: "nri-1501"}}
	h := NewHealthHandler(cols, readiness{}, nil)

	code, resp := runHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "loading", resp.Dependencies["firestore:nri-1501"])
	assert.Equal(t, "not configured", resp.Dependencies["rabbitmq"])
}

func TestHealthDegradedOnBroker(t *testing.T) {
	h := NewHealthHandler(nil, readiness{}, broker(false))

	code, resp := runHealth(t, h)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy: connection closed", resp.Dependencies["rabbitmq"])
}
