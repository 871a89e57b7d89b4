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

// HistoryRepository stores archived conversation snapshots. The same type
// serves authenticated and public traffic; each instance is bound to one
// collection.
type HistoryRepository struct {
	col *mongo.Collection
}

// NewHistoryRepository creates a repository over the authenticated
// conversation archive.
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{col: db.db.Collection(colHistory)}
}

// NewPublicHistoryRepository creates a repository over the public
// (unauthenticated visitor) conversation archive.
func NewPublicHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{col: db.db.Collection(colPublicHistory)}
}

type historyDoc struct {
	ID        string           `bson:"_id"`
	ChatbotID string           `bson:"chatbot_id"`
	Subject   string           `bson:"subject"`
	Timestamp time.Time        `bson:"timestamp"`
	Messages  []domain.Message `bson:"messages"`
}

func toHistoryDoc(rec *domain.HistoryRecord) historyDoc {
	return historyDoc{
		ID:        rec.ID.String(),
		ChatbotID: rec.ChatbotID.String(),
		Subject:   rec.Subject,
		Timestamp: rec.Timestamp,
		Messages:  rec.Messages,
	}
}

func (d historyDoc) toDomain() (*domain.HistoryRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history id: %w", err)
	}
	chatbotID, err := uuid.Parse(d.ChatbotID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chatbot id: %w", err)
	}

	return &domain.HistoryRecord{
		ID:        id,
		ChatbotID: chatbotID,
		Subject:   d.Subject,
		Timestamp: d.Timestamp,
		Messages:  d.Messages,
	}, nil
}

// Insert archives one conversation snapshot
func (r *HistoryRepository) Insert(ctx context.Context, rec *domain.HistoryRecord) error {
	if _, err := r.col.InsertOne(ctx, toHistoryDoc(rec)); err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// ListByChatbot returns all archived records for a chatbot, newest first.
func (r *HistoryRepository) ListByChatbot(ctx context.Context, chatbotID uuid.UUID) ([]domain.HistoryRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"chatbot_id": chatbotID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.HistoryRecord
	for cursor.Next(ctx) {
		var doc historyDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history records: %w", err)
	}
	return records, nil
}

// Get fetches a single archived record by id
func (r *HistoryRepository) Get(ctx context.Context, id uuid.UUID) (*domain.HistoryRecord, error) {
	var doc historyDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history record: %w", err)
	}
	return doc.toDomain()
}

// Delete removes one archived record
func (r *HistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete history record: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteOlderThan removes every record archived before the cutoff and
// reports how many were removed.
func (r *HistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.col.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired history records: %w", err)
	}
	return result.DeletedCount, nil
}
