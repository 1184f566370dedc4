package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/portfolio/pkg/api"
)

// HealthHandler serves the health check
type HealthHandler struct {
	responder
	contentStatus func() string
	version       string
}

// NewHealthHandler creates the health handler. contentStatus may be nil.
func NewHealthHandler(logger *slog.Logger, version string, contentStatus func() string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{
		responder:     responder{logger: logger},
		version:       version,
		contentStatus: contentStatus,
	}
}

// Health handles GET /api/v1/health.
// The server stays healthy while content falls back to seed data.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{
		Status:  "ok",
		Version: h.version,
	}
	if h.contentStatus != nil {
		resp.ContentStatus = h.contentStatus()
	}

	h.sendJSON(w, resp, http.StatusOK)
}
