package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionRepository implements domain.SessionRepository. Isolation between
// sessions comes from the (subject, chatbot_id) key; concurrent writers for
// different sessions never touch each other's documents.
type SessionRepository struct {
	col *mongo.Collection
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{col: db.db.Collection(colSessions)}
}

type sessionDoc struct {
	Subject   string           `bson:"subject"`
	ChatbotID string           `bson:"chatbot_id"`
	Messages  []domain.Message `bson:"messages"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// Get retrieves the session for a (subject, chatbot) pair. Returns
// domain.ErrNotFound when none exists yet.
func (r *SessionRepository) Get(ctx context.Context, subject string, chatbotID uuid.UUID) (*domain.Session, error) {
	var doc sessionDoc
	err := r.col.FindOne(ctx, sessionKey(subject, chatbotID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &domain.Session{
		Subject:   doc.Subject,
		ChatbotID: chatbotID,
		Messages:  doc.Messages,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

// Upsert writes the full session state under its key.
func (r *SessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		Subject:   session.Subject,
		ChatbotID: session.ChatbotID.String(),
		Messages:  session.Messages,
		UpdatedAt: session.UpdatedAt,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, sessionKey(session.Subject, session.ChatbotID), doc, opts); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}
	return nil
}

// Delete removes a session document
func (r *SessionRepository) Delete(ctx context.Context, subject string, chatbotID uuid.UUID) error {
	if _, err := r.col.DeleteOne(ctx, sessionKey(subject, chatbotID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionKey(subject string, chatbotID uuid.UUID) bson.M {
	return bson.M{"subject": subject, "chatbot_id": chatbotID.String()}
}
