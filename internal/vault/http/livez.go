package http

import (
	"net/http"
	"time"

	"github.com/moltenlabs/credvault/pkg/httpx"
)

// LivezHandler godoc
//
//	@Summary		Health Check Endpoint
//	@Description	Liveness probe returning service status, uptime and version
//	@Description	Always returns 200 OK while the process is running
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
