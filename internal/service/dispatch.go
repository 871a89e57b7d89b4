package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/llm"
)

// Fixed assistant replies. The dispatcher never surfaces raw provider or
// generator errors to end users.
const (
	imageConfirmation = "요청하신 이미지를 생성했습니다."
	imageApology      = "이미지 생성에 실패했습니다. 다시 시도해주세요."
	genericApology    = "응답 생성 중 오류가 발생했습니다. 다시 시도해주세요."
)

const (
	defaultStreamTimeout = 120 * time.Second
	persistTimeout       = 10 * time.Second
)

// IntentDetector decides whether a user turn asks for an image
type IntentDetector interface {
	IsImageRequest(text string) bool
}

// ImageGenerator produces a hosted image from a raw user request
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderResolver maps a model id to its provider family
type ProviderResolver interface {
	ProviderFor(model string) (llm.Provider, error)
}

// DispatchService runs one conversational turn: classify, route to an
// image generator or a model provider, persist the exchange, and record
// usage. Every turn ends with an assistant message appended to the session
// unless the input was empty or the model id was unroutable.
type DispatchService struct {
	sessions      *SessionService
	providers     ProviderResolver
	classifier    IntentDetector
	images        ImageGenerator
	usage         *UsageService
	streamTimeout time.Duration
}

// NewDispatchService creates a new dispatch service
func NewDispatchService(
	sessions *SessionService,
	providers ProviderResolver,
	classifier IntentDetector,
	images ImageGenerator,
	usage *UsageService,
	streamTimeout time.Duration,
) *DispatchService {
	if streamTimeout <= 0 {
		streamTimeout = defaultStreamTimeout
	}
	return &DispatchService{
		sessions:      sessions,
		providers:     providers,
		classifier:    classifier,
		images:        images,
		usage:         usage,
		streamTimeout: streamTimeout,
	}
}

// Handle processes one user turn against a session. On success the returned
// message is the assistant reply already appended to the session. The reply
// may be returned alongside domain.ErrPersistence when the exchange happened
// but could not be fully written through; callers should still show the
// reply.
func (s *DispatchService) Handle(ctx context.Context, session *domain.Session, bot *domain.Chatbot, text, model string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}

	session.Append(domain.Message{Role: domain.RoleUser, Content: text})

	if s.classifier.IsImageRequest(text) {
		return s.handleImageTurn(ctx, session, text)
	}
	return s.handleModelTurn(ctx, session, bot, text, model)
}

// handleImageTurn synthesizes an image and replies with a fixed
// confirmation carrying the hosted URL. Image turns never record usage.
func (s *DispatchService) handleImageTurn(ctx context.Context, session *domain.Session, text string) (*domain.Message, error) {
	reply := domain.Message{Role: domain.RoleAssistant}

	url, err := s.images.Generate(ctx, text)
	if err != nil {
		log.Error().Err(err).Str("subject", session.Subject).Msg("image turn failed")
		reply.Content = imageApology
	} else {
		reply.Content = imageConfirmation
		reply.ImageRef = url
	}

	session.Append(reply)
	if err := s.persist(ctx, session); err != nil {
		return &session.Messages[len(session.Messages)-1], err
	}
	return &session.Messages[len(session.Messages)-1], nil
}

// handleModelTurn streams a completion from the provider that owns the
// model id and appends the accumulated reply.
func (s *DispatchService) handleModelTurn(ctx context.Context, session *domain.Session, bot *domain.Chatbot, text, model string) (*domain.Message, error) {
	provider, err := s.providers.ProviderFor(model)
	if err != nil {
		// The user message is still part of the session; keep it durable
		// before surfacing the routing failure.
		if perr := s.persist(ctx, session); perr != nil {
			log.Error().Err(perr).Msg("failed to persist session after routing failure")
		}
		return nil, err
	}

	content, tokens, ok := s.streamReply(ctx, provider, session, bot, model)

	reply := domain.Message{Role: domain.RoleAssistant, Content: content}
	session.Append(reply)

	if ok && s.usage != nil {
		if err := s.usage.Record(ctx, session.Subject, model, tokens); err != nil {
			// The reply is already committed to the conversation; billing
			// gaps are logged and left to operators.
			log.Error().Err(err).Str("model", model).Msg("failed to record usage")
		}
	}

	if err := s.persist(ctx, session); err != nil {
		return &session.Messages[len(session.Messages)-1], err
	}
	return &session.Messages[len(session.Messages)-1], nil
}

// persist writes the session through on a context detached from the
// caller's cancellation. A client that disconnects mid-turn must not
// lose the messages already appended to the conversation.
func (s *DispatchService) persist(ctx context.Context, session *domain.Session) error {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	return s.sessions.Persist(persistCtx, session)
}

// streamReply consumes the provider stream to completion. Any failure, or
// a stream that ends with no content at all, yields the fixed apology and
// nil tokens so the turn is never billed.
func (s *DispatchService) streamReply(ctx context.Context, provider llm.Provider, session *domain.Session, bot *domain.Chatbot, model string) (string, *int, bool) {
	streamCtx, cancel := context.WithTimeout(ctx, s.streamTimeout)
	defer cancel()

	stream, err := provider.Stream(streamCtx, llm.Request{
		SystemPrompt: bot.SystemPrompt,
		Messages:     session.Messages,
		Model:        model,
	})
	if err != nil {
		log.Error().Err(err).Str("model", model).Msg("failed to open provider stream")
		return genericApology, nil, false
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		delta, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error().Err(err).Str("model", model).Msg("provider stream failed mid-reply")
			return genericApology, nil, false
		}
		sb.WriteString(delta)
	}

	if sb.Len() == 0 {
		log.Warn().Str("model", model).Msg("provider stream produced no content")
		return genericApology, nil, false
	}

	var tokens *int
	if counter, ok := stream.(llm.TokenCounter); ok {
		used := counter.TokensUsed()
		if used > 0 {
			tokens = &used
		}
	}
	return sb.String(), tokens, true
}
