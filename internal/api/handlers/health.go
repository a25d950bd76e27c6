package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is implemented by optional backing services (Postgres, Redis)
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service status
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a health handler; nil dependencies are skipped
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	clean := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			clean[name] = p
		}
	}
	return &HealthHandler{deps: clean}
}

// Health returns server health status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	checks := make(map[string]string, len(h.deps))
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	respondJSON(w, code, map[string]interface{}{
		"status":  status,
		"service": "fii-advisor-api",
		"checks":  checks,
	})
}
