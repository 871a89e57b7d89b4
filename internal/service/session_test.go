package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSessionService_LoadSeedsNewSession(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	sessionRepo := new(MockSessionRepository)
	svc := NewSessionService(sessionRepo, nil, nil)

	sessionRepo.On("Get", ctx, "student1", bot.ID).Return(nil, domain.ErrNotFound)
	sessionRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	session, err := svc.Load(ctx, "student1", bot)

	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, domain.RoleAssistant, session.Messages[0].Role)
	assert.Equal(t, bot.WelcomeMessage, session.Messages[0].Content)
	assert.False(t, session.Dirty, "seeded session should be persisted before return")

	sessionRepo.AssertExpectations(t)
}

func TestSessionService_LoadExisting(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	existing := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	existing.Dirty = false

	sessionRepo := new(MockSessionRepository)
	svc := NewSessionService(sessionRepo, nil, nil)

	sessionRepo.On("Get", ctx, "student1", bot.ID).Return(existing, nil)

	session, err := svc.Load(ctx, "student1", bot)

	require.NoError(t, err)
	assert.Same(t, existing, session)
	sessionRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSessionService_PersistCleanNoop(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	session.Dirty = false

	sessionRepo := new(MockSessionRepository)
	svc := NewSessionService(sessionRepo, nil, nil)

	require.NoError(t, svc.Persist(ctx, session))
	sessionRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSessionService_ResetArchivesThenReseeds(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	sessionRepo := new(MockSessionRepository)
	historyRepo := new(MockHistoryRepository)
	chatbotRepo := new(MockChatbotRepository)

	archiver := NewHistoryService(historyRepo, chatbotRepo)
	svc := NewSessionService(sessionRepo, nil, archiver)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	session.Append(domain.Message{Role: domain.RoleUser, Content: "안녕"})
	session.Append(domain.Message{Role: domain.RoleAssistant, Content: "안녕하세요"})

	var archived *domain.HistoryRecord
	historyRepo.On("Insert", ctx, mock.AnythingOfType("*domain.HistoryRecord")).
		Run(func(args mock.Arguments) {
			archived = args.Get(1).(*domain.HistoryRecord)
		}).Return(nil)
	sessionRepo.On("Upsert", ctx, mock.AnythingOfType("*domain.Session")).Return(nil)

	require.NoError(t, svc.Reset(ctx, session, bot))

	// The full three-message conversation was archived.
	require.NotNil(t, archived)
	assert.Equal(t, "student1", archived.Subject)
	assert.Equal(t, bot.ID, archived.ChatbotID)
	require.Len(t, archived.Messages, 3)

	// The session is back to a single welcome message.
	require.Len(t, session.Messages, 1)
	assert.Equal(t, bot.WelcomeMessage, session.Messages[0].Content)

	historyRepo.AssertNumberOfCalls(t, "Insert", 1)
}

func TestSessionService_ResetKeepsSessionOnArchiveFailure(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	sessionRepo := new(MockSessionRepository)
	historyRepo := new(MockHistoryRepository)
	chatbotRepo := new(MockChatbotRepository)

	archiver := NewHistoryService(historyRepo, chatbotRepo)
	svc := NewSessionService(sessionRepo, nil, archiver)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	session.Append(domain.Message{Role: domain.RoleUser, Content: "안녕"})

	historyRepo.On("Insert", ctx, mock.AnythingOfType("*domain.HistoryRecord")).Return(errors.New("mongo down"))

	err := svc.Reset(ctx, session, bot)

	assert.ErrorIs(t, err, domain.ErrPersistence)
	// Nothing was discarded.
	require.Len(t, session.Messages, 2)
	sessionRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}
