package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/sinbc2003/cluade2/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository implements domain.UserRepository over the users collection.
// The username is the document id.
type UserRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{col: db.db.Collection(colUsers)}
}

// GetByUsername returns domain.ErrNotFound when the user does not exist.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.col.FindOne(ctx, bson.M{"_id": username}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user document
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, err := r.col.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Update replaces the stored user document
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	result, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.Username}, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
