package handlers

import (
	"net/http"
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

// BrokerHealth is satisfied by *queue.RabbitMQ.
type BrokerHealth interface {
	Healthy() bool
}

type ReadinessChecker interface {
	Ready(c entity.Collection) bool
}

type HealthHandler struct {
	Collections []entity.Collection
	Snapshots   ReadinessChecker
	RabbitMQ    BrokerHealth
	StartTime   time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(collections []entity.Collection, snapshots ReadinessChecker, rabbitMQ BrokerHealth) *HealthHandler {
	return &HealthHandler{
		Collections: collections,
		Snapshots:   snapshots,
		RabbitMQ:    rabbitMQ,
		StartTime:   time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]string)
	status := "healthy"

	for _, c := range h.Collections {
		key := "firestore:" + c.Name
		if h.Snapshots.Ready(c) {
			deps[key] = "healthy"
		} else {
			deps[key] = "loading"
			status = "degraded"
		}
	}

	if h.RabbitMQ != nil {
		if h.RabbitMQ.Healthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
			status = "degraded"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
