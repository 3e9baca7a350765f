package handlers

import (
	"context"
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/citywalk/pkg/http"
)

// HealthChecker pings the backing store
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Health reports service and database liveness
func Health(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Database: "down"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Database: "up"})
	}
}
