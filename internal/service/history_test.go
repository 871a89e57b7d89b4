package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryService_ListForChatbot_Ownership(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	historyRepo := new(MockHistoryRepository)
	chatbotRepo := new(MockChatbotRepository)
	svc := NewHistoryService(historyRepo, chatbotRepo)

	records := []domain.HistoryRecord{
		{ID: uuid.New(), ChatbotID: bot.ID, Subject: "student1", Timestamp: time.Now()},
	}
	chatbotRepo.On("GetByID", ctx, bot.ID).Return(bot, nil)
	historyRepo.On("ListByChatbot", ctx, bot.ID).Return(records, nil)

	// The creator can read.
	got, err := svc.ListForChatbot(ctx, "teacher1", false, bot.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Another teacher cannot.
	_, err = svc.ListForChatbot(ctx, "teacher2", false, bot.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	// A privileged user can.
	_, err = svc.ListForChatbot(ctx, "admin", true, bot.ID)
	assert.NoError(t, err)
}

func TestHistoryService_Delete_Ownership(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	historyRepo := new(MockHistoryRepository)
	chatbotRepo := new(MockChatbotRepository)
	svc := NewHistoryService(historyRepo, chatbotRepo)

	record := &domain.HistoryRecord{ID: uuid.New(), ChatbotID: bot.ID, Subject: "student1"}
	historyRepo.On("Get", ctx, record.ID).Return(record, nil)
	chatbotRepo.On("GetByID", ctx, bot.ID).Return(bot, nil)
	historyRepo.On("Delete", ctx, record.ID).Return(nil)

	assert.ErrorIs(t, svc.Delete(ctx, "teacher2", false, record.ID), domain.ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, "teacher1", false, record.ID))
}

func TestHistoryService_Delete_OrphanedRecord(t *testing.T) {
	ctx := context.Background()

	historyRepo := new(MockHistoryRepository)
	chatbotRepo := new(MockChatbotRepository)
	svc := NewHistoryService(historyRepo, chatbotRepo)

	record := &domain.HistoryRecord{ID: uuid.New(), ChatbotID: uuid.New(), Subject: "student1"}
	historyRepo.On("Get", ctx, record.ID).Return(record, nil)
	chatbotRepo.On("GetByID", ctx, record.ChatbotID).Return(nil, domain.ErrNotFound)
	historyRepo.On("Delete", ctx, record.ID).Return(nil)

	// Only a privileged user may remove records whose chatbot is gone.
	assert.ErrorIs(t, svc.Delete(ctx, "teacher1", false, record.ID), domain.ErrForbidden)
	assert.NoError(t, svc.Delete(ctx, "admin", true, record.ID))
}
