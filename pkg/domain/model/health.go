package model

import "time"

// HealthStatus represents the health check status of the webhook server
type HealthStatus struct {
	Status        string    `json:"status"`
	Service       string    `json:"service"`
	Version       string    `json:"version"`
	StartedAt     time.Time `json:"started_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// NewHealthStatus reports a healthy server that started at startedAt, as observed at now
func NewHealthStatus(version string, startedAt, now time.Time) *HealthStatus {
	uptime := now.Sub(startedAt)
	if uptime < 0 {
		uptime = 0
	}

	return &HealthStatus{
		Status:        "healthy",
		Service:       "relkeep",
		Version:       version,
		StartedAt:     startedAt.UTC(),
		UptimeSeconds: int64(uptime / time.Second),
	}
}
