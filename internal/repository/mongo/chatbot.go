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

// ChatbotRepository implements domain.ChatbotRepository
type ChatbotRepository struct {
	col *mongo.Collection
}

// NewChatbotRepository creates a new chatbot repository
func NewChatbotRepository(db *DB) *ChatbotRepository {
	return &ChatbotRepository{col: db.db.Collection(colChatbots)}
}

// chatbotDoc stores uuids as strings; Mongo has no native uuid type worth
// the driver ceremony here.
type chatbotDoc struct {
	ID              string            `bson:"_id"`
	Name            string            `bson:"name"`
	Description     string            `bson:"description"`
	SystemPrompt    string            `bson:"system_prompt"`
	WelcomeMessage  string            `bson:"welcome_message"`
	Creator         string            `bson:"creator"`
	Visibility      domain.Visibility `bson:"visibility"`
	Category        string            `bson:"category,omitempty"`
	BackgroundColor string            `bson:"background_color"`
	ProfileImageURL string            `bson:"profile_image_url"`
	CreatedAt       time.Time         `bson:"created_at"`
	UpdatedAt       time.Time         `bson:"updated_at"`
}

func toChatbotDoc(b *domain.Chatbot) chatbotDoc {
	return chatbotDoc{
		ID:              b.ID.String(),
		Name:            b.Name,
		Description:     b.Description,
		SystemPrompt:    b.SystemPrompt,
		WelcomeMessage:  b.WelcomeMessage,
		Creator:         b.Creator,
		Visibility:      b.Visibility,
		Category:        b.Category,
		BackgroundColor: b.BackgroundColor,
		ProfileImageURL: b.ProfileImageURL,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (d chatbotDoc) toDomain() (*domain.Chatbot, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid chatbot id %q: %w", d.ID, err)
	}
	return &domain.Chatbot{
		ID:              id,
		Name:            d.Name,
		Description:     d.Description,
		SystemPrompt:    d.SystemPrompt,
		WelcomeMessage:  d.WelcomeMessage,
		Creator:         d.Creator,
		Visibility:      d.Visibility,
		Category:        d.Category,
		BackgroundColor: d.BackgroundColor,
		ProfileImageURL: d.ProfileImageURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}, nil
}

// Create inserts a new chatbot
func (r *ChatbotRepository) Create(ctx context.Context, bot *domain.Chatbot) error {
	if _, err := r.col.InsertOne(ctx, toChatbotDoc(bot)); err != nil {
		return fmt.Errorf("failed to create chatbot: %w", err)
	}
	return nil
}

// GetByID retrieves a chatbot by id
func (r *ChatbotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chatbot, error) {
	var doc chatbotDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chatbot: %w", err)
	}
	return doc.toDomain()
}

// ListByCreator lists a creator's private chatbots
func (r *ChatbotRepository) ListByCreator(ctx context.Context, creator string) ([]domain.Chatbot, error) {
	filter := bson.M{"creator": creator, "visibility": domain.VisibilityPrivate}
	return r.list(ctx, filter)
}

// ListShared lists all school-wide shared chatbots
func (r *ChatbotRepository) ListShared(ctx context.Context) ([]domain.Chatbot, error) {
	return r.list(ctx, bson.M{"visibility": domain.VisibilityShared})
}

func (r *ChatbotRepository) list(ctx context.Context, filter bson.M) ([]domain.Chatbot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chatbots: %w", err)
	}
	defer cursor.Close(ctx)

	var bots []domain.Chatbot
	for cursor.Next(ctx) {
		var doc chatbotDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode chatbot: %w", err)
		}
		bot, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		bots = append(bots, *bot)
	}
	return bots, cursor.Err()
}

// Update replaces a chatbot document
func (r *ChatbotRepository) Update(ctx context.Context, bot *domain.Chatbot) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": bot.ID.String()}, toChatbotDoc(bot))
	if err != nil {
		return fmt.Errorf("failed to update chatbot: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a chatbot
func (r *ChatbotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete chatbot: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
