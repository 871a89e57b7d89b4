package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
)

// HistoryService archives reset conversations and serves them back to the
// chatbot's creator. It implements Archiver for SessionService.
type HistoryService struct {
	repo domain.HistoryRepository
	bots domain.ChatbotRepository
}

// NewHistoryService creates a new history service
func NewHistoryService(repo domain.HistoryRepository, bots domain.ChatbotRepository) *HistoryService {
	return &HistoryService{repo: repo, bots: bots}
}

// Archive snapshots a session's full message list as one immutable record.
func (s *HistoryService) Archive(ctx context.Context, session *domain.Session) error {
	messages := make([]domain.Message, len(session.Messages))
	copy(messages, session.Messages)

	record := &domain.HistoryRecord{
		ID:        uuid.New(),
		ChatbotID: session.ChatbotID,
		Subject:   session.Subject,
		Timestamp: time.Now(),
		Messages:  messages,
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		return fmt.Errorf("failed to archive session: %v: %w", err, domain.ErrPersistence)
	}
	return nil
}

// ListForChatbot returns archived conversations for a chatbot. Only the
// chatbot's creator (or a privileged user) may read them.
func (s *HistoryService) ListForChatbot(ctx context.Context, requester string, privileged bool, chatbotID uuid.UUID) ([]domain.HistoryRecord, error) {
	bot, err := s.bots.GetByID(ctx, chatbotID)
	if err != nil {
		return nil, err
	}
	if !privileged && bot.Creator != requester {
		return nil, domain.ErrForbidden
	}

	return s.repo.ListByChatbot(ctx, chatbotID)
}

// Delete removes one archived conversation after an ownership check.
func (s *HistoryService) Delete(ctx context.Context, requester string, privileged bool, id uuid.UUID) error {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	bot, err := s.bots.GetByID(ctx, record.ChatbotID)
	if err == nil {
		if !privileged && bot.Creator != requester {
			return domain.ErrForbidden
		}
	} else if !privileged {
		// Orphaned record: the chatbot is gone, only privileged users may
		// clean it up.
		return domain.ErrForbidden
	}

	return s.repo.Delete(ctx, id)
}
