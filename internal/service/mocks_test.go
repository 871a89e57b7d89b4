package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Get(ctx context.Context, subject string, chatbotID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, subject, chatbotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Upsert(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, subject string, chatbotID uuid.UUID) error {
	args := m.Called(ctx, subject, chatbotID)
	return args.Error(0)
}

// MockUsageRepository mocks the UsageRepository interface
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) Insert(ctx context.Context, event *domain.UsageEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockUsageRepository) List(ctx context.Context, limit int) ([]domain.UsageEvent, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.UsageEvent), args.Error(1)
}

func (m *MockUsageRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistoryRepository mocks the HistoryRepository interface
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Insert(ctx context.Context, record *domain.HistoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByChatbot(ctx context.Context, chatbotID uuid.UUID) ([]domain.HistoryRecord, error) {
	args := m.Called(ctx, chatbotID)
	return args.Get(0).([]domain.HistoryRecord), args.Error(1)
}

func (m *MockHistoryRepository) Get(ctx context.Context, id uuid.UUID) (*domain.HistoryRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryRecord), args.Error(1)
}

func (m *MockHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockChatbotRepository mocks the ChatbotRepository interface
type MockChatbotRepository struct {
	mock.Mock
}

func (m *MockChatbotRepository) Create(ctx context.Context, bot *domain.Chatbot) error {
	args := m.Called(ctx, bot)
	return args.Error(0)
}

func (m *MockChatbotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Chatbot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chatbot), args.Error(1)
}

func (m *MockChatbotRepository) ListByCreator(ctx context.Context, creator string) ([]domain.Chatbot, error) {
	args := m.Called(ctx, creator)
	return args.Get(0).([]domain.Chatbot), args.Error(1)
}

func (m *MockChatbotRepository) ListShared(ctx context.Context) ([]domain.Chatbot, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Chatbot), args.Error(1)
}

func (m *MockChatbotRepository) Update(ctx context.Context, bot *domain.Chatbot) error {
	args := m.Called(ctx, bot)
	return args.Error(0)
}

func (m *MockChatbotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeStream replays scripted deltas and then io.EOF (or a scripted error)
type fakeStream struct {
	deltas []string
	err    error
	tokens int
	pos    int
	closed bool
}

func (f *fakeStream) Recv() (string, error) {
	if f.pos < len(f.deltas) {
		delta := f.deltas[f.pos]
		f.pos++
		return delta, nil
	}
	if f.err != nil {
		return "", f.err
	}
	return "", io.EOF
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func (f *fakeStream) TokensUsed() int {
	return f.tokens
}

// fakeProvider serves one scripted stream
type fakeProvider struct {
	stream    *fakeStream
	streamErr error
	lastReq   llm.Request
}

func (f *fakeProvider) Name() string       { return "fake" }
func (f *fakeProvider) Models() []string   { return nil }
func (f *fakeProvider) IsConfigured() bool { return true }

func (f *fakeProvider) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	f.lastReq = req
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.stream, nil
}

// fakeResolver routes every model to one provider, or fails
type fakeResolver struct {
	provider llm.Provider
	err      error
}

func (f *fakeResolver) ProviderFor(model string) (llm.Provider, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.provider, nil
}

// fakeClassifier makes the image decision deterministic in tests
type fakeClassifier struct {
	image bool
}

func (f *fakeClassifier) IsImageRequest(text string) bool { return f.image }

// fakeImageGenerator returns a scripted URL or error
type fakeImageGenerator struct {
	url    string
	err    error
	prompt string
}

func (f *fakeImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}
