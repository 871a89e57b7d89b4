package domain

import "errors"

// Error taxonomy for the dispatch core. Adapter-level failures are converted
// to user-visible assistant messages at the dispatcher boundary; only
// ErrUnsupportedModel and ErrPersistence cross it, because they mean the
// system is misconfigured or durable state may not match what the user saw.
var (
	// ErrEmptyMessage rejects empty or whitespace-only user text before
	// any classification or provider call.
	ErrEmptyMessage = errors.New("message text is empty")

	// ErrUnsupportedModel means the model id matched no provider family.
	// Never silently substituted with a default.
	ErrUnsupportedModel = errors.New("unsupported model")

	// ErrImageGeneration collapses every image synthesis, download, and
	// upload failure; callers do not distinguish sub-causes.
	ErrImageGeneration = errors.New("image generation failed")

	// ErrProviderStream covers network, auth, rate-limit, and timeout
	// failures while consuming a provider delta stream.
	ErrProviderStream = errors.New("provider stream failed")

	// ErrPersistence means a session, usage, or history write failed.
	// The caller layer decides whether to retry.
	ErrPersistence = errors.New("persistence failed")

	// ErrNotFound is returned by repositories when no record matches.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when a subject does not own the record it
	// is trying to change.
	ErrForbidden = errors.New("access denied")
)
