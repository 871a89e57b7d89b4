package llm

import (
	"context"

	"github.com/sinbc2003/cluade2/internal/domain"
)

// Request contains the conversation state handed to a provider for one turn.
// Providers that cannot carry full history flatten it into a single prompt.
type Request struct {
	SystemPrompt string
	Messages     []domain.Message
	Model        string
}

// Stream is a finite, non-restartable sequence of text deltas. Recv returns
// io.EOF when the provider signals natural end of generation; any other
// error means the stream failed and its partial output must be discarded.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// TokenCounter is optionally implemented by streams whose provider reports
// token usage. The count is only meaningful after Recv has returned io.EOF.
type TokenCounter interface {
	TokensUsed() int
}

// Provider wraps one vendor's call convention behind the delta-stream
// contract. The three families differ in call shape only; see the per-vendor
// subpackages.
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// Models returns the model ids this provider serves
	Models() []string

	// IsConfigured checks if the provider has valid credentials
	IsConfigured() bool

	// Stream opens a delta stream for one conversational turn
	Stream(ctx context.Context, req Request) (Stream, error)
}
