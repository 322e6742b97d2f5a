package store

import (
	"context"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"ai-canvas-be/pkg/canvas/catalog"
)

// RetryingSectionStore wraps a SectionStore with bounded exponential
// backoff on writes: three attempts total, then the error is returned
// to the caller (who logs it and keeps in-memory state authoritative).
// Reads are not retried; a missing draft is recoverable.
type RetryingSectionStore struct {
	inner  SectionStore
	logger *log.Logger
}

func NewRetryingSectionStore(inner SectionStore, logger *log.Logger) *RetryingSectionStore {
	return &RetryingSectionStore{
		inner:  inner,
		logger: logger,
	}
}

func (s *RetryingSectionStore) SaveSection(ctx context.Context, rec SectionRecord) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 10 * time.Second

	attempt := 0
	op := func() error {
		attempt++
		err := s.inner.SaveSection(ctx, rec)
		if err != nil {
			s.logger.Printf("[STORE] Save attempt %d failed for section %s: %v", attempt, rec.SectionID, err)
		}
		return err
	}

	// Two retries after the initial attempt: three attempts total.
	return backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, 2), ctx))
}

func (s *RetryingSectionStore) GetSection(ctx context.Context, userID, threadID string, sectionID catalog.SectionID) (*SectionRecord, error) {
	return s.inner.GetSection(ctx, userID, threadID, sectionID)
}
