package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sinbc2003/cluade2/internal/domain"
)

// SessionCache is the read-through cache in front of the durable store.
// A nil cache disables caching; every operation on it is best effort.
type SessionCache interface {
	Get(ctx context.Context, subject string, chatbotID uuid.UUID) (*domain.Session, error)
	Set(ctx context.Context, session *domain.Session) error
	Invalidate(ctx context.Context, subject string, chatbotID uuid.UUID) error
}

// Archiver snapshots a session's messages before they are discarded
type Archiver interface {
	Archive(ctx context.Context, session *domain.Session) error
}

// SessionService owns session continuity: loading, seeding, write-through
// persistence, and the archive-then-reseed reset cycle.
type SessionService struct {
	repo     domain.SessionRepository
	cache    SessionCache
	archiver Archiver
}

// NewSessionService creates a new session service
func NewSessionService(repo domain.SessionRepository, cache SessionCache, archiver Archiver) *SessionService {
	return &SessionService{
		repo:     repo,
		cache:    cache,
		archiver: archiver,
	}
}

// Load returns the session for a (subject, chatbot) pair, seeding a fresh
// one with the chatbot's welcome message when none exists. A newly seeded
// session is persisted before it is returned so a crash between turns never
// loses the seed.
func (s *SessionService) Load(ctx context.Context, subject string, bot *domain.Chatbot) (*domain.Session, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, subject, bot.ID)
		if err != nil {
			log.Warn().Err(err).Msg("session cache read failed")
		}
		if cached != nil {
			return cached, nil
		}
	}

	session, err := s.repo.Get(ctx, subject, bot.ID)
	if errors.Is(err, domain.ErrNotFound) {
		session = domain.NewSession(subject, bot.ID, bot.WelcomeMessage)
		if err := s.Persist(ctx, session); err != nil {
			return nil, err
		}
		return session, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %v: %w", err, domain.ErrPersistence)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, session); err != nil {
			log.Warn().Err(err).Msg("session cache write failed")
		}
	}
	return session, nil
}

// Persist writes the session through to the durable store and refreshes the
// cache. A clean session is a no-op.
func (s *SessionService) Persist(ctx context.Context, session *domain.Session) error {
	if !session.Dirty {
		return nil
	}

	if err := s.repo.Upsert(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session: %v: %w", err, domain.ErrPersistence)
	}
	session.Dirty = false

	if s.cache != nil {
		if err := s.cache.Set(ctx, session); err != nil {
			log.Warn().Err(err).Msg("session cache write failed")
		}
	}
	return nil
}

// Reset archives the current messages and reseeds the session with the
// chatbot's welcome message. The archive must succeed before anything is
// discarded; on archive failure the session is left untouched. A retried
// reset may archive the same messages twice, which is tolerated.
func (s *SessionService) Reset(ctx context.Context, session *domain.Session, bot *domain.Chatbot) error {
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, session); err != nil {
			return err
		}
	}

	session.Reseed(bot.WelcomeMessage)
	return s.Persist(ctx, session)
}
