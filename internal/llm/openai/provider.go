// Package openai implements the completion-style provider family: the
// system prompt travels as a synthetic leading message and deltas arrive as
// chunks that may be empty.
package openai

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/llm"
)

// Provider implements llm.Provider for OpenAI chat models
type Provider struct {
	apiKey string
	client *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(apiKey string) *Provider {
	return &Provider{
		apiKey: apiKey,
		client: openai.NewClient(apiKey),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// Models returns the model ids this provider serves
func (p *Provider) Models() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
	}
}

// IsConfigured checks if the provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Stream opens a chat-completion stream with the system prompt prepended as
// the leading message.
func (p *Provider) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.SystemPrompt,
	})
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	stream, err := p.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
		Stream:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("openai stream open: %w", err)
	}

	return &completionStream{inner: stream}, nil
}

// completionStream adapts the chat-completion chunk stream to the delta
// contract, skipping empty chunks.
type completionStream struct {
	inner *openai.ChatCompletionStream
}

func (s *completionStream) Recv() (string, error) {
	for {
		resp, err := s.inner.Recv()
		if err == io.EOF {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("openai stream recv: %w: %v", domain.ErrProviderStream, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			return delta, nil
		}
	}
}

func (s *completionStream) Close() error {
	return s.inner.Close()
}
