package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
)

const (
	sessionCachePrefix = "session:"
	sessionCacheTTL    = 30 * time.Minute
)

// SessionCache keeps recently active sessions in Redis so a chat turn does
// not need a round trip to the document store. A miss is never an error;
// callers fall through to the canonical store.
type SessionCache struct {
	client *Client
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *Client) *SessionCache {
	return &SessionCache{client: client}
}

// Get retrieves a cached session. Returns (nil, nil) on a miss.
func (c *SessionCache) Get(ctx context.Context, subject string, chatbotID uuid.UUID) (*domain.Session, error) {
	data, err := c.client.rdb.Get(ctx, sessionCacheKey(subject, chatbotID)).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Set caches a session for its TTL
func (c *SessionCache) Set(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionCacheKey(session.Subject, session.ChatbotID)
	return c.client.rdb.Set(ctx, key, data, sessionCacheTTL).Err()
}

// Invalidate removes a cached session
func (c *SessionCache) Invalidate(ctx context.Context, subject string, chatbotID uuid.UUID) error {
	return c.client.rdb.Del(ctx, sessionCacheKey(subject, chatbotID)).Err()
}

func sessionCacheKey(subject string, chatbotID uuid.UUID) string {
	return fmt.Sprintf("%s%s:%s", sessionCachePrefix, subject, chatbotID.String())
}
