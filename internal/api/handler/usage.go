package handler

import (
	"net/http"
	"strconv"

	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/service"
)

const defaultUsageLimit = 200

// UsageHandler serves usage telemetry to privileged users
type UsageHandler struct {
	usageService *service.UsageService
}

// NewUsageHandler creates a new usage handler
func NewUsageHandler(usageService *service.UsageService) *UsageHandler {
	return &UsageHandler{usageService: usageService}
}

// List returns recent usage events, newest first
func (h *UsageHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultUsageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			response.BadRequest(w, "invalid limit")
			return
		}
		limit = parsed
	}

	events, err := h.usageService.List(r.Context(), limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, events)
}
