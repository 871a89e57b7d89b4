package imagegen

import (
	"context"
	"fmt"

	"github.com/sinbc2003/cluade2/internal/domain"
)

// Disabled is the generator used when no synthesizer or object store is
// configured. Every request fails with the standard image error so the
// dispatcher falls back to its apology reply.
type Disabled struct{}

// Generate always fails
func (Disabled) Generate(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("image generation is not configured: %w", domain.ErrImageGeneration)
}
