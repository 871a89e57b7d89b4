package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sinbc2003/cluade2/internal/api/middleware"
	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/service"
)

// chatRequest is one user turn
type chatRequest struct {
	Message string `json:"message" validate:"required"`
	Model   string `json:"model" validate:"required,max=100"`
}

// chatResponse carries the assistant reply for one turn
type chatResponse struct {
	Reply *domain.Message `json:"reply"`
}

// ChatHandler runs conversational turns and session operations. The same
// handler serves the authenticated and public surfaces; they differ only in
// how the chatbot is resolved.
type ChatHandler struct {
	dispatch       *service.DispatchService
	sessions       *service.SessionService
	chatbotService *service.ChatbotService
	public         bool
}

// NewChatHandler creates a chat handler for the authenticated surface
func NewChatHandler(dispatch *service.DispatchService, sessions *service.SessionService, chatbotService *service.ChatbotService) *ChatHandler {
	return &ChatHandler{dispatch: dispatch, sessions: sessions, chatbotService: chatbotService}
}

// NewPublicChatHandler creates a chat handler that only serves shared
// chatbots to anonymous visitors.
func NewPublicChatHandler(dispatch *service.DispatchService, sessions *service.SessionService, chatbotService *service.ChatbotService) *ChatHandler {
	return &ChatHandler{dispatch: dispatch, sessions: sessions, chatbotService: chatbotService, public: true}
}

func (h *ChatHandler) resolveChatbot(ctx context.Context, subject string, id uuid.UUID) (*domain.Chatbot, error) {
	if h.public {
		return h.chatbotService.GetShared(ctx, id)
	}
	return h.chatbotService.Get(ctx, subject, middleware.GetPrivileged(ctx), id)
}

// Chat handles one user turn
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	var input chatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	bot, err := h.resolveChatbot(r.Context(), subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := h.sessions.Load(r.Context(), subject, bot)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	reply, err := h.dispatch.Handle(r.Context(), session, bot, input.Message, input.Model)
	if err != nil {
		// A persistence failure after the exchange still returns the reply;
		// the user already saw the model answer.
		if reply != nil && errors.Is(err, domain.ErrPersistence) {
			log.Error().Err(err).Str("subject", subject).Msg("turn completed but was not fully persisted")
			response.OK(w, chatResponse{Reply: reply})
			return
		}
		writeDomainError(w, err)
		return
	}

	response.OK(w, chatResponse{Reply: reply})
}

// GetSession returns the current conversation for the caller and chatbot
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	bot, err := h.resolveChatbot(r.Context(), subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := h.sessions.Load(r.Context(), subject, bot)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, session)
}

// Reset archives the conversation and starts over from the welcome message
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	bot, err := h.resolveChatbot(r.Context(), subject, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	session, err := h.sessions.Load(r.Context(), subject, bot)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.sessions.Reset(r.Context(), session, bot); err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, session)
}
