package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/handler/http/response"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function, e.g. a redis client ping, to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type healthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler reports 503 when any named dependency fails its ping.
func NewHealthHandler(checks map[string]Pinger) http.HandlerFunc {
	h := &healthHandler{checks: checks}
	return h.ServeHTTP
}

func (h *healthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		response.ServiceUnavailable(w, "Dependency unavailable")
		return
	}
	response.Success(w, status)
}
