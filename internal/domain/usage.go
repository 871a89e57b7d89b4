package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UsageEvent is an immutable, append-only billing record written after every
// successful conversational dispatch. Duplicate events under retry are
// tolerated by design; there is no dedup key.
type UsageEvent struct {
	ID         uuid.UUID `json:"id"`
	Subject    string    `json:"username"`
	ModelName  string    `json:"model_name"`
	Timestamp  time.Time `json:"timestamp"`
	TokensUsed *int      `json:"tokens_used,omitempty"`
}

// UsageRepository defines the interface for usage telemetry storage
type UsageRepository interface {
	Insert(ctx context.Context, event *UsageEvent) error
	List(ctx context.Context, limit int) ([]UsageEvent, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryRecord is an immutable snapshot of a session's message list, taken
// when the session is reset.
type HistoryRecord struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	ChatbotID uuid.UUID `json:"chatbot_id" bson:"chatbot_id"`
	Subject   string    `json:"subject" bson:"subject"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Messages  []Message `json:"messages" bson:"messages"`
}

// HistoryRepository defines the interface for archived conversation storage
type HistoryRepository interface {
	Insert(ctx context.Context, record *HistoryRecord) error
	ListByChatbot(ctx context.Context, chatbotID uuid.UUID) ([]HistoryRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*HistoryRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
