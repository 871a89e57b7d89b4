// Package mongo implements the document-store repositories: chatbots,
// sessions, archived histories, and users.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sinbc2003/cluade2/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB wraps the Mongo client and database handle
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewDB connects to MongoDB and verifies the connection.
func NewDB(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	clientOpts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	return &DB{client: client, db: client.Database(cfg.Database)}, nil
}

// EnsureIndexes creates the indexes the repositories rely on. Safe to call
// on every startup.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sessionIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "subject", Value: 1}, {Key: "chatbot_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := d.db.Collection(colSessions).Indexes().CreateOne(ctx, sessionIdx); err != nil {
		return fmt.Errorf("session index: %w", err)
	}

	for _, col := range []string{colHistory, colPublicHistory} {
		histIdx := []mongo.IndexModel{
			{Keys: bson.D{{Key: "subject", Value: 1}, {Key: "chatbot_id", Value: 1}}},
			{Keys: bson.D{{Key: "timestamp", Value: 1}}},
		}
		if _, err := d.db.Collection(col).Indexes().CreateMany(ctx, histIdx); err != nil {
			return fmt.Errorf("%s indexes: %w", col, err)
		}
	}

	botIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "creator", Value: 1}}},
		{Keys: bson.D{{Key: "visibility", Value: 1}}},
	}
	if _, err := d.db.Collection(colChatbots).Indexes().CreateMany(ctx, botIdx); err != nil {
		return fmt.Errorf("chatbot indexes: %w", err)
	}

	return nil
}

// Ping verifies connectivity
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

// Close disconnects the client
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// collection names
const (
	colChatbots      = "chatbots"
	colSessions      = "sessions"
	colHistory       = "chat_history"
	colPublicHistory = "public_chat_history"
	colUsers         = "users"
)
