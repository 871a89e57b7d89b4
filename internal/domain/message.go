package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is one entry in a chat session. Messages are immutable once
// appended; ordering within a session is significant because providers
// require the conversation in role order.
type Message struct {
	Role      MessageRole `json:"role" bson:"role"`
	Content   string      `json:"content" bson:"content"`
	ImageRef  string      `json:"image_url,omitempty" bson:"image_url,omitempty"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}

// Session holds the canonical ordered message list for one
// (subject, chatbot) pair. A session is exclusively owned by the single
// in-flight dispatch for that pair; callers serialize turns per session.
type Session struct {
	Subject   string    `json:"subject" bson:"subject"`
	ChatbotID uuid.UUID `json:"chatbot_id" bson:"chatbot_id"`
	Messages  []Message `json:"messages" bson:"messages"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Dirty is set when the in-memory state has mutations not yet written
	// through to the durable store. Never persisted.
	Dirty bool `json:"-" bson:"-"`
}

// NewSession seeds a fresh session with the chatbot's welcome message so the
// UI always has something to render.
func NewSession(subject string, chatbotID uuid.UUID, welcome string) *Session {
	now := time.Now()
	return &Session{
		Subject:   subject,
		ChatbotID: chatbotID,
		Messages: []Message{
			{Role: RoleAssistant, Content: welcome, CreatedAt: now},
		},
		UpdatedAt: now,
		Dirty:     true,
	}
}

// Append adds a message to the session and marks it dirty.
func (s *Session) Append(m Message) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.Messages = append(s.Messages, m)
	s.UpdatedAt = m.CreatedAt
	s.Dirty = true
}

// Reseed replaces the message list with a single welcome message.
// Callers archive the old content first; see service.SessionService.Reset.
func (s *Session) Reseed(welcome string) {
	now := time.Now()
	s.Messages = []Message{
		{Role: RoleAssistant, Content: welcome, CreatedAt: now},
	}
	s.UpdatedAt = now
	s.Dirty = true
}

// SessionRepository defines the interface for durable session persistence.
// Isolation across sessions is keyed by (subject, chatbot), not locked.
type SessionRepository interface {
	Get(ctx context.Context, subject string, chatbotID uuid.UUID) (*Session, error)
	Upsert(ctx context.Context, session *Session) error
	Delete(ctx context.Context, subject string, chatbotID uuid.UUID) error
}
