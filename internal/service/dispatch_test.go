package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testChatbot() *domain.Chatbot {
	return &domain.Chatbot{
		ID:             uuid.New(),
		Name:           "수학 도우미",
		SystemPrompt:   "You are a helpful math tutor.",
		WelcomeMessage: "안녕하세요! 무엇을 도와드릴까요?",
		Creator:        "teacher1",
	}
}

func newDispatchFixture(t *testing.T, resolver ProviderResolver, classifier IntentDetector, images ImageGenerator) (*DispatchService, *MockSessionRepository, *MockUsageRepository) {
	t.Helper()

	sessionRepo := new(MockSessionRepository)
	usageRepo := new(MockUsageRepository)

	sessions := NewSessionService(sessionRepo, nil, nil)
	usage := NewUsageService(usageRepo)

	return NewDispatchService(sessions, resolver, classifier, images, usage, 0), sessionRepo, usageRepo
}

func TestDispatchService_TextTurn(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	stream := &fakeStream{deltas: []string{"안", "녕하세요"}, tokens: 17}
	provider := &fakeProvider{stream: stream}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: provider}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	var recorded *domain.UsageEvent
	usageRepo.On("Insert", ctx, mock.AnythingOfType("*domain.UsageEvent")).
		Run(func(args mock.Arguments) {
			recorded = args.Get(1).(*domain.UsageEvent)
		}).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "안녕", "claude-3-haiku-20240307")

	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Equal(t, "안녕하세요", reply.Content)
	assert.Empty(t, reply.ImageRef)
	assert.True(t, stream.closed)

	// welcome + user + assistant
	require.Len(t, session.Messages, 3)
	assert.Equal(t, "안녕", session.Messages[1].Content)

	// Exactly one usage event for the turn, with the stream's token count.
	usageRepo.AssertNumberOfCalls(t, "Insert", 1)
	require.NotNil(t, recorded)
	assert.Equal(t, "student1", recorded.Subject)
	assert.Equal(t, "claude-3-haiku-20240307", recorded.ModelName)
	require.NotNil(t, recorded.TokensUsed)
	assert.Equal(t, 17, *recorded.TokensUsed)

	// The provider saw the conversation including the new user message.
	assert.Equal(t, bot.SystemPrompt, provider.lastReq.SystemPrompt)
	assert.Equal(t, "안녕", provider.lastReq.Messages[len(provider.lastReq.Messages)-1].Content)

	sessionRepo.AssertExpectations(t)
}

func TestDispatchService_ImageTurn(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	images := &fakeImageGenerator{url: "https://storage.googleapis.com/bucket/profile_images/20240101.png"}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{}}, &fakeClassifier{image: true}, images)

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "강아지 그림 그려줘", "gpt-4o")

	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "요청하신 이미지를 생성했습니다.", reply.Content)
	assert.Equal(t, images.url, reply.ImageRef)

	// welcome + user + confirmation
	require.Len(t, session.Messages, 3)

	// Image turns are never billed.
	usageRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDispatchService_ImageTurnFailure(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	images := &fakeImageGenerator{err: domain.ErrImageGeneration}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{}}, &fakeClassifier{image: true}, images)

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "강아지 그림 그려줘", "gpt-4o")

	// The turn still completes with an apology; no error crosses the boundary.
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "이미지 생성에 실패했습니다. 다시 시도해주세요.", reply.Content)
	assert.Empty(t, reply.ImageRef)

	usageRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDispatchService_StreamFailure(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	stream := &fakeStream{deltas: []string{"부분 "}, err: domain.ErrProviderStream}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{stream: stream}}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "설명해줘", "gemini-pro")

	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "응답 생성 중 오류가 발생했습니다. 다시 시도해주세요.", reply.Content)

	// Failed turns are never billed.
	usageRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDispatchService_EmptyStream(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	stream := &fakeStream{}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{stream: stream}}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "설명해줘", "gemini-pro")

	require.NoError(t, err)
	assert.Equal(t, "응답 생성 중 오류가 발생했습니다. 다시 시도해주세요.", reply.Content)
	usageRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDispatchService_EmptyMessage(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	svc, sessionRepo, _ := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{}}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "   ", "gpt-4o")

	assert.ErrorIs(t, err, domain.ErrEmptyMessage)
	assert.Nil(t, reply)

	// Nothing was mutated or persisted.
	require.Len(t, session.Messages, 1)
	sessionRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestDispatchService_UnsupportedModel(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	svc, sessionRepo, _ := newDispatchFixture(t,
		&fakeResolver{err: domain.ErrUnsupportedModel}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "안녕", "mystery-model-9000")

	assert.ErrorIs(t, err, domain.ErrUnsupportedModel)
	assert.Nil(t, reply)

	// The user message still made it into the session and was persisted.
	require.Len(t, session.Messages, 2)
	sessionRepo.AssertCalled(t, "Upsert", mock.Anything, mock.AnythingOfType("*domain.Session"))
}

func TestDispatchService_CancelledTurnStillPersists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bot := testChatbot()

	stream := &fakeStream{deltas: []string{"부분"}, err: context.Canceled}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{stream: stream}}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	var persistCtx context.Context
	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).
		Run(func(args mock.Arguments) {
			persistCtx = args.Get(0).(context.Context)
		}).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "안녕", "gpt-4o")

	require.NoError(t, err)
	assert.Equal(t, "응답 생성 중 오류가 발생했습니다. 다시 시도해주세요.", reply.Content)

	// The write-through runs even though the caller is gone, on a
	// context the store will still accept.
	sessionRepo.AssertNumberOfCalls(t, "Upsert", 1)
	require.NotNil(t, persistCtx)
	assert.NoError(t, persistCtx.Err())

	usageRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestDispatchService_PersistFailureStillReturnsReply(t *testing.T) {
	ctx := context.Background()
	bot := testChatbot()

	stream := &fakeStream{deltas: []string{"답변"}}
	svc, sessionRepo, usageRepo := newDispatchFixture(t,
		&fakeResolver{provider: &fakeProvider{stream: stream}}, &fakeClassifier{image: false}, &fakeImageGenerator{})

	sessionRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(errors.New("mongo down"))
	usageRepo.On("Insert", ctx, mock.AnythingOfType("*domain.UsageEvent")).Return(nil)

	session := domain.NewSession("student1", bot.ID, bot.WelcomeMessage)
	reply, err := svc.Handle(ctx, session, bot, "안녕", "gpt-4o")

	assert.ErrorIs(t, err, domain.ErrPersistence)
	require.NotNil(t, reply)
	assert.Equal(t, "답변", reply.Content)
}
