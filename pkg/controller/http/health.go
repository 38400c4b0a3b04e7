package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
)

// newHealthHandler serves the server's health and uptime since startedAt
func newHealthHandler(startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := model.NewHealthStatus(types.Version, startedAt, time.Now())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(status); err != nil {
			ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
		}
	}
}
