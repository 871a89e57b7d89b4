package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sinbc2003/cluade2/internal/domain"
)

// UsageService records per-turn model usage telemetry
type UsageService struct {
	repo domain.UsageRepository
}

// NewUsageService creates a new usage service
func NewUsageService(repo domain.UsageRepository) *UsageService {
	return &UsageService{repo: repo}
}

// Record appends one usage event. Events are append-only and never
// deduplicated; a retried turn may produce two records.
func (s *UsageService) Record(ctx context.Context, subject, modelName string, tokensUsed *int) error {
	event := &domain.UsageEvent{
		ID:         uuid.New(),
		Subject:    subject,
		ModelName:  modelName,
		Timestamp:  time.Now(),
		TokensUsed: tokensUsed,
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("failed to record usage: %v: %w", err, domain.ErrPersistence)
	}
	return nil
}

// List returns the most recent usage events
func (s *UsageService) List(ctx context.Context, limit int) ([]domain.UsageEvent, error) {
	return s.repo.List(ctx, limit)
}

// RetentionSweeper purges usage events and archived conversations older
// than the retention window.
type RetentionSweeper struct {
	usage     domain.UsageRepository
	histories []domain.HistoryRepository
	window    time.Duration
	interval  time.Duration
}

// NewRetentionSweeper creates a new retention sweeper
func NewRetentionSweeper(usage domain.UsageRepository, histories []domain.HistoryRepository, window, interval time.Duration) *RetentionSweeper {
	return &RetentionSweeper{
		usage:     usage,
		histories: histories,
		window:    window,
		interval:  interval,
	}
}

// SweepOnce deletes everything older than the retention window and returns
// the total number of removed records. Partial failures do not stop the
// sweep; the next run retries whatever was left behind.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.window)
	var total int64
	var firstErr error

	if s.usage != nil {
		n, err := s.usage.DeleteOlderThan(ctx, cutoff)
		total += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, h := range s.histories {
		n, err := h.DeleteOlderThan(ctx, cutoff)
		total += n
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return total, fmt.Errorf("retention sweep incomplete: %w", firstErr)
	}
	return total, nil
}

// Run sweeps on a fixed interval until the context is canceled
func (s *RetentionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil {
				log.Error().Err(err).Msg("retention sweep failed")
				continue
			}
			log.Info().Int64("deleted", n).Msg("retention sweep complete")
		}
	}
}
