package imagegen

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DalleSynthesizer requests exactly one square image from DALL-E.
type DalleSynthesizer struct {
	client *openai.Client
	model  string
}

// NewDalleSynthesizer creates a DALL-E synthesizer. model defaults to
// dall-e-3.
func NewDalleSynthesizer(apiKey, model string) *DalleSynthesizer {
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &DalleSynthesizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Synthesize submits the prompt and returns the transient image URL.
func (s *DalleSynthesizer) Synthesize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateImage(ctx, openai.ImageRequest{
		Model:   s.model,
		Prompt:  prompt,
		Size:    openai.CreateImageSize1024x1024,
		Quality: openai.CreateImageQualityStandard,
		N:       1,
	})
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("no image in response")
	}

	return resp.Data[0].URL, nil
}
