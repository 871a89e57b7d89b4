// Package imagegen turns a user prompt into a durable image URL: synthesize
// with the external provider, download the transient result, re-upload to
// object storage. Every failure along the way collapses to
// domain.ErrImageGeneration; callers log the detail but never distinguish
// sub-causes to the end user.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sinbc2003/cluade2/internal/domain"
)

const safeTemplate = "Create a safe and appropriate image based on this description: %s. " +
	"The image should be family-friendly and avoid any controversial or sensitive content."

// Synthesizer submits a prompt to the external image provider and returns
// the transient URL of exactly one generated image.
type Synthesizer interface {
	Synthesize(ctx context.Context, prompt string) (string, error)
}

// ObjectStore uploads bytes to durable storage and returns a stable public URL.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// PromptCleaner strips the imperative image-request phrasing from a prompt.
type PromptCleaner interface {
	Strip(text string) string
}

// Generator is the image-generation adapter
type Generator struct {
	synth   Synthesizer
	store   ObjectStore
	cleaner PromptCleaner
	client  *http.Client
	prefix  string
}

// NewGenerator creates an image generator. prefix namespaces uploaded
// objects (e.g. "images/").
func NewGenerator(synth Synthesizer, store ObjectStore, cleaner PromptCleaner, prefix string) *Generator {
	return &Generator{
		synth:   synth,
		store:   store,
		cleaner: cleaner,
		client:  &http.Client{Timeout: 60 * time.Second},
		prefix:  prefix,
	}
}

// Generate runs the full pipeline once. No retries: the user can retry via a
// new turn.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	clean := prompt
	if g.cleaner != nil {
		clean = g.cleaner.Strip(prompt)
	}
	safe := fmt.Sprintf(safeTemplate, clean)

	transientURL, err := g.synth.Synthesize(ctx, safe)
	if err != nil {
		log.Error().Err(err).Msg("image synthesis failed")
		return "", fmt.Errorf("synthesize: %v: %w", err, domain.ErrImageGeneration)
	}

	data, err := g.download(ctx, transientURL)
	if err != nil {
		log.Error().Err(err).Str("url", transientURL).Msg("image download failed")
		return "", fmt.Errorf("download: %v: %w", err, domain.ErrImageGeneration)
	}

	now := time.Now()
	name := fmt.Sprintf("%s%s%09d.png", g.prefix, now.Format("20060102150405"), now.Nanosecond())
	publicURL, err := g.store.Put(ctx, name, data, "image/png")
	if err != nil {
		log.Error().Err(err).Str("object", name).Msg("image upload failed")
		return "", fmt.Errorf("upload: %v: %w", err, domain.ErrImageGeneration)
	}

	return publicURL, nil
}

func (g *Generator) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
