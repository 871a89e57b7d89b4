// Package anthropic implements the message-stream provider family: system
// prompt and history travel as separate fields, and the response is a typed
// event stream where only delta events contribute text.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/llm"
)

// Provider implements llm.Provider for Anthropic
type Provider struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewProvider creates a new Anthropic provider
func NewProvider(apiKey string) *Provider {
	return &Provider{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
		baseURL: "https://api.anthropic.com/v1",
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "anthropic"
}

// Models returns the model ids this provider serves
func (p *Provider) Models() []string {
	return []string{
		"claude-3-5-sonnet-20240620",
		"claude-3-opus-20240229",
		"claude-3-haiku-20240307",
	}
}

// IsConfigured checks if the provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

type messagesRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []vendorMessage `json:"messages"`
	Stream    bool            `json:"stream"`
}

type vendorMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamEvent covers the union of SSE payloads the Messages API emits.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
	Usage struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Message struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message"`
}

// Stream opens a server-sent-event stream against the Messages API.
func (p *Provider) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	vendorReq := messagesRequest{
		Model:     req.Model,
		MaxTokens: 2048,
		System:    req.SystemPrompt,
		Stream:    true,
	}
	// The Messages API requires the conversation to open with a user
	// turn, but sessions are seeded with an assistant welcome message.
	// Leading assistant turns carry no information the model needs, so
	// drop everything before the first user message.
	seenUser := false
	for _, m := range req.Messages {
		if m.Role == domain.RoleSystem {
			continue
		}
		if !seenUser {
			if m.Role != domain.RoleUser {
				continue
			}
			seenUser = true
		}
		vendorReq.Messages = append(vendorReq.Messages, vendorMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	body, err := json.Marshal(vendorReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request: %w: %v", domain.ErrProviderStream, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("anthropic returned status %d: %w", resp.StatusCode, domain.ErrProviderStream)
	}

	return &messageStream{body: resp.Body, scanner: bufio.NewScanner(resp.Body)}, nil
}

// messageStream parses the typed SSE event sequence. Start events are
// no-ops, delta events yield text, and a stop event terminates the stream.
type messageStream struct {
	body       io.ReadCloser
	scanner    *bufio.Scanner
	tokens     int
	lastOutput int
	stopped    bool
}

func (s *messageStream) Recv() (string, error) {
	if s.stopped {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &event); err != nil {
			return "", fmt.Errorf("anthropic event decode: %w: %v", domain.ErrProviderStream, err)
		}

		switch event.Type {
		case "content_block_delta":
			if event.Delta.Text != "" {
				return event.Delta.Text, nil
			}
		case "message_start":
			s.tokens += event.Message.Usage.InputTokens
		case "message_delta":
			// output token count is cumulative across delta events
			s.tokens = s.tokens - s.lastOutput + event.Usage.OutputTokens
			s.lastOutput = event.Usage.OutputTokens
		case "message_stop":
			s.stopped = true
			return "", io.EOF
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("anthropic stream read: %w: %v", domain.ErrProviderStream, err)
	}
	// the wire closed without a stop event
	return "", fmt.Errorf("anthropic stream ended without stop event: %w", domain.ErrProviderStream)
}

// TokensUsed reports input plus output tokens; valid once Recv has returned
// io.EOF.
func (s *messageStream) TokensUsed() int {
	return s.tokens
}

func (s *messageStream) Close() error {
	return s.body.Close()
}
