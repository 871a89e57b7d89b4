package llm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sinbc2003/cluade2/internal/domain"
)

// Router maps model ids to providers by prefix. The table is configuration,
// not business logic: it must stay exhaustive and rejecting — an unmatched
// model id is a hard error, never a silent fallback.
type Router struct {
	mu    sync.RWMutex
	rules []prefixRule
}

type prefixRule struct {
	prefix   string
	provider Provider
}

// NewRouter creates an empty model router
func NewRouter() *Router {
	return &Router{}
}

// Register binds one or more model-id prefixes to a provider. Prefixes are
// matched in registration order.
func (r *Router) Register(provider Provider, prefixes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prefixes {
		r.rules = append(r.rules, prefixRule{prefix: p, provider: provider})
	}
}

// ProviderFor resolves the provider serving a model id.
func (r *Router) ProviderFor(model string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rule := range r.rules {
		if strings.HasPrefix(model, rule.prefix) {
			if !rule.provider.IsConfigured() {
				return nil, fmt.Errorf("provider %s not configured for model %s: %w",
					rule.provider.Name(), model, domain.ErrUnsupportedModel)
			}
			return rule.provider, nil
		}
	}
	return nil, fmt.Errorf("model %q matches no provider family: %w", model, domain.ErrUnsupportedModel)
}

// Models returns every model id served by a configured provider.
func (r *Router) Models() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var models []string
	for _, rule := range r.rules {
		if !rule.provider.IsConfigured() {
			continue
		}
		for _, m := range rule.provider.Models() {
			if !seen[m] {
				seen[m] = true
				models = append(models, m)
			}
		}
	}
	return models
}
