package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Visibility controls who may use a chatbot
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
)

// Chatbot is a teacher-created bot configuration. The dispatch core treats
// it as read-only; only the CRUD layer mutates it.
type Chatbot struct {
	ID              uuid.UUID  `json:"id" bson:"_id"`
	Name            string     `json:"name" bson:"name"`
	Description     string     `json:"description" bson:"description"`
	SystemPrompt    string     `json:"system_prompt" bson:"system_prompt"`
	WelcomeMessage  string     `json:"welcome_message" bson:"welcome_message"`
	Creator         string     `json:"creator" bson:"creator"`
	Visibility      Visibility `json:"visibility" bson:"visibility"`
	Category        string     `json:"category,omitempty" bson:"category,omitempty"`
	BackgroundColor string     `json:"background_color" bson:"background_color"`
	ProfileImageURL string     `json:"profile_image_url" bson:"profile_image_url"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" bson:"updated_at"`
}

// Shared reports whether the bot is visible to the whole school.
func (c *Chatbot) Shared() bool {
	return c.Visibility == VisibilityShared
}

// ChatbotCreate is the payload for creating a chatbot
type ChatbotCreate struct {
	Name            string `json:"name" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=500"`
	SystemPrompt    string `json:"system_prompt" validate:"required"`
	WelcomeMessage  string `json:"welcome_message" validate:"required"`
	IsShared        bool   `json:"is_shared"`
	Category        string `json:"category" validate:"max=100"`
	BackgroundColor string `json:"background_color"`
	ProfileImageURL string `json:"profile_image_url"`
}

// ChatbotUpdate is the payload for updating a chatbot
type ChatbotUpdate struct {
	Name            string `json:"name" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=500"`
	SystemPrompt    string `json:"system_prompt" validate:"required"`
	WelcomeMessage  string `json:"welcome_message" validate:"required"`
	BackgroundColor string `json:"background_color"`
	ProfileImageURL string `json:"profile_image_url"`
}

// ChatbotRepository defines the interface for chatbot storage
type ChatbotRepository interface {
	Create(ctx context.Context, bot *Chatbot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Chatbot, error)
	ListByCreator(ctx context.Context, creator string) ([]Chatbot, error)
	ListShared(ctx context.Context) ([]Chatbot, error)
	Update(ctx context.Context, bot *Chatbot) error
	Delete(ctx context.Context, id uuid.UUID) error
}
