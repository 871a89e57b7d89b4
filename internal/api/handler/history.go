package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/api/middleware"
	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/service"
)

// HistoryHandler serves archived conversations to chatbot creators
type HistoryHandler struct {
	historyService *service.HistoryService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(historyService *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// ListByChatbot lists archived conversations for a chatbot
func (h *HistoryHandler) ListByChatbot(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	records, err := h.historyService.ListForChatbot(r.Context(), subject, privileged, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, records)
}

// Delete removes one archived conversation
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	recordID, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		response.BadRequest(w, "invalid record ID")
		return
	}

	if err := h.historyService.Delete(r.Context(), subject, privileged, recordID); err != nil {
		writeDomainError(w, err)
		return
	}

	response.NoContent(w)
}
