// Package gemini implements the generation-style provider family: the call
// carries a single concatenated prompt string rather than full structured
// history.
package gemini

import (
	"context"
	"fmt"
	"io"

	"github.com/google/generative-ai-go/genai"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/llm"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Provider implements llm.Provider for Gemini models
type Provider struct {
	apiKey string
}

// NewProvider creates a new Gemini provider
func NewProvider(apiKey string) *Provider {
	return &Provider{apiKey: apiKey}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "gemini"
}

// Models returns the model ids this provider serves
func (p *Provider) Models() []string {
	return []string{
		"gemini-pro",
		"gemini-1.5-pro-latest",
	}
}

// IsConfigured checks if the provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Stream opens a generation stream for the concatenated prompt. The system
// prompt and the latest user turn are joined with a newline; earlier history
// is not carried by this call shape.
func (p *Provider) Stream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	prompt := req.SystemPrompt + "\n" + lastUserContent(req.Messages)

	model := client.GenerativeModel(req.Model)
	iter := model.GenerateContentStream(ctx, genai.Text(prompt))

	return &generationStream{client: client, iter: iter}, nil
}

func lastUserContent(messages []domain.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// generationStream adapts the Gemini response iterator to the delta
// contract. One iterator response may hold several text parts; they are
// flattened into a single delta.
type generationStream struct {
	client *genai.Client
	iter   *genai.GenerateContentResponseIterator
	tokens int
}

func (s *generationStream) Recv() (string, error) {
	for {
		resp, err := s.iter.Next()
		if err == iterator.Done {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream recv: %w: %v", domain.ErrProviderStream, err)
		}

		if resp.UsageMetadata != nil {
			s.tokens = int(resp.UsageMetadata.TotalTokenCount)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}

		var delta string
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				delta += string(text)
			}
		}
		if delta != "" {
			return delta, nil
		}
	}
}

// TokensUsed reports the total token count from the provider's usage
// metadata; valid once Recv has returned io.EOF.
func (s *generationStream) TokensUsed() int {
	return s.tokens
}

func (s *generationStream) Close() error {
	return s.client.Close()
}
