package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
)

const defaultBackgroundColor = "#FFFFFF"

// ChatbotService manages teacher-created chatbot configurations
type ChatbotService struct {
	repo domain.ChatbotRepository
}

// NewChatbotService creates a new chatbot service
func NewChatbotService(repo domain.ChatbotRepository) *ChatbotService {
	return &ChatbotService{repo: repo}
}

// Create creates a new chatbot owned by the creator
func (s *ChatbotService) Create(ctx context.Context, creator string, input domain.ChatbotCreate) (*domain.Chatbot, error) {
	visibility := domain.VisibilityPrivate
	if input.IsShared {
		visibility = domain.VisibilityShared
	}

	background := input.BackgroundColor
	if background == "" {
		background = defaultBackgroundColor
	}

	now := time.Now()
	bot := &domain.Chatbot{
		ID:              uuid.New(),
		Name:            input.Name,
		Description:     input.Description,
		SystemPrompt:    input.SystemPrompt,
		WelcomeMessage:  input.WelcomeMessage,
		Creator:         creator,
		Visibility:      visibility,
		Category:        input.Category,
		BackgroundColor: background,
		ProfileImageURL: input.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to create chatbot: %w", err)
	}
	return bot, nil
}

// Get returns a chatbot if the requester may use it: its creator, any
// privileged user, or anyone when the bot is shared.
func (s *ChatbotService) Get(ctx context.Context, requester string, privileged bool, id uuid.UUID) (*domain.Chatbot, error) {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bot.Shared() && !privileged && bot.Creator != requester {
		return nil, domain.ErrForbidden
	}
	return bot, nil
}

// GetShared returns a chatbot only if it is shared. Used by the public,
// unauthenticated surface.
func (s *ChatbotService) GetShared(ctx context.Context, id uuid.UUID) (*domain.Chatbot, error) {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bot.Shared() {
		return nil, domain.ErrNotFound
	}
	return bot, nil
}

// ListMine returns the requester's own chatbots
func (s *ChatbotService) ListMine(ctx context.Context, creator string) ([]domain.Chatbot, error) {
	return s.repo.ListByCreator(ctx, creator)
}

// ListShared returns every shared chatbot
func (s *ChatbotService) ListShared(ctx context.Context) ([]domain.Chatbot, error) {
	return s.repo.ListShared(ctx)
}

// Update applies an update after an ownership check
func (s *ChatbotService) Update(ctx context.Context, requester string, privileged bool, id uuid.UUID, input domain.ChatbotUpdate) (*domain.Chatbot, error) {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !privileged && bot.Creator != requester {
		return nil, domain.ErrForbidden
	}

	bot.Name = input.Name
	bot.Description = input.Description
	bot.SystemPrompt = input.SystemPrompt
	bot.WelcomeMessage = input.WelcomeMessage
	if input.BackgroundColor != "" {
		bot.BackgroundColor = input.BackgroundColor
	}
	if input.ProfileImageURL != "" {
		bot.ProfileImageURL = input.ProfileImageURL
	}
	bot.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to update chatbot: %w", err)
	}
	return bot, nil
}

// SetVisibility toggles a chatbot between private and shared
func (s *ChatbotService) SetVisibility(ctx context.Context, requester string, privileged bool, id uuid.UUID, shared bool) (*domain.Chatbot, error) {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !privileged && bot.Creator != requester {
		return nil, domain.ErrForbidden
	}

	if shared {
		bot.Visibility = domain.VisibilityShared
	} else {
		bot.Visibility = domain.VisibilityPrivate
	}
	bot.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, bot); err != nil {
		return nil, fmt.Errorf("failed to update chatbot: %w", err)
	}
	return bot, nil
}

// Delete removes a chatbot after an ownership check
func (s *ChatbotService) Delete(ctx context.Context, requester string, privileged bool, id uuid.UUID) error {
	bot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !privileged && bot.Creator != requester {
		return domain.ErrForbidden
	}

	return s.repo.Delete(ctx, id)
}
