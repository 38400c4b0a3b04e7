package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/relkeep/pkg/controller/http"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
)

func TestHealthEndpoint(t *testing.T) {
	before := time.Now()
	server, err := controller.NewServer(
		context.Background(),
		&MockWebhookUseCase{},
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret("test-secret"),
	)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)
	gt.Equal(t, w.Code, http.StatusOK)

	var status model.HealthStatus
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	gt.Equal(t, status.Status, "healthy")
	gt.Equal(t, status.Service, "relkeep")
	gt.V(t, status.Version).NotEqual("")
	gt.False(t, status.StartedAt.Before(before.Truncate(time.Second)))
	gt.False(t, status.StartedAt.After(time.Now()))
	gt.True(t, status.UptimeSeconds >= 0)

	var raw map[string]any
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	_, ok := raw["started_at"]
	gt.True(t, ok)
	_, ok = raw["uptime_seconds"]
	gt.True(t, ok)
}

func TestNewServer_RequiresSecret(t *testing.T) {
	_, err := controller.NewServer(context.Background(), &MockWebhookUseCase{})
	gt.Error(t, err)
}
