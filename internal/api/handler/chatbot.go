package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sinbc2003/cluade2/internal/api/middleware"
	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/service"
)

// ChatbotHandler handles chatbot CRUD endpoints
type ChatbotHandler struct {
	chatbotService *service.ChatbotService
	images         service.ImageGenerator
}

// NewChatbotHandler creates a new chatbot handler
func NewChatbotHandler(chatbotService *service.ChatbotService, images service.ImageGenerator) *ChatbotHandler {
	return &ChatbotHandler{chatbotService: chatbotService, images: images}
}

// Create creates a new chatbot
func (h *ChatbotHandler) Create(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())

	var input domain.ChatbotCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	bot, err := h.chatbotService.Create(r.Context(), subject, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Created(w, bot)
}

// List returns the caller's own chatbots
func (h *ChatbotHandler) List(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())

	bots, err := h.chatbotService.ListMine(r.Context(), subject)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, bots)
}

// ListShared returns every shared chatbot
func (h *ChatbotHandler) ListShared(w http.ResponseWriter, r *http.Request) {
	bots, err := h.chatbotService.ListShared(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, bots)
}

// Get returns one chatbot
func (h *ChatbotHandler) Get(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	bot, err := h.chatbotService.Get(r.Context(), subject, privileged, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, bot)
}

// Update updates a chatbot
func (h *ChatbotHandler) Update(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	var input domain.ChatbotUpdate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	bot, err := h.chatbotService.Update(r.Context(), subject, privileged, id, input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, bot)
}

// SetVisibility toggles a chatbot between private and shared
func (h *ChatbotHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	var input struct {
		Shared bool `json:"shared"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	bot, err := h.chatbotService.SetVisibility(r.Context(), subject, privileged, id, input.Shared)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, bot)
}

// Delete removes a chatbot
func (h *ChatbotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	if err := h.chatbotService.Delete(r.Context(), subject, privileged, id); err != nil {
		writeDomainError(w, err)
		return
	}

	response.NoContent(w)
}

// GenerateProfileImage synthesizes a profile image from a description and
// attaches its hosted URL to the chatbot.
func (h *ChatbotHandler) GenerateProfileImage(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())
	privileged := middleware.GetPrivileged(r.Context())

	id, err := chatbotIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chatbot ID")
		return
	}

	var input struct {
		Description string `json:"description" validate:"required,max=500"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	url, err := h.images.Generate(r.Context(), input.Description)
	if err != nil {
		response.InternalError(w, "이미지 생성에 실패했습니다. 다시 시도해주세요.")
		return
	}

	bot, err := h.chatbotService.Get(r.Context(), subject, privileged, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := h.chatbotService.Update(r.Context(), subject, privileged, id, domain.ChatbotUpdate{
		Name:            bot.Name,
		Description:     bot.Description,
		SystemPrompt:    bot.SystemPrompt,
		WelcomeMessage:  bot.WelcomeMessage,
		BackgroundColor: bot.BackgroundColor,
		ProfileImageURL: url,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.OK(w, updated)
}
