package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/index"
	"github.com/memeticlab/memeticsearch/internal/metrics"
)

// Submitter performs the atomic multi-document write for one batch, retrying
// transport failures with a bounded loop. Batches are strictly sequential:
// Submit does not return until the batch succeeded or retries are exhausted.
type Submitter struct {
	store       index.Store
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
	metrics     *metrics.Ingest
}

// NewSubmitter creates a submitter with the given retry policy.
func NewSubmitter(store index.Store, maxAttempts int, retryDelay time.Duration, logger *zap.Logger, m *metrics.Ingest) *Submitter {
	return &Submitter{
		store:       store,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
		metrics:     m,
	}
}

// Submit sends one batch, retrying the same batch on transport failure up to
// maxAttempts total with a fixed inter-attempt delay. Exhaustion wraps
// domain.ErrRetriesExhausted and aborts the run.
func (s *Submitter) Submit(ctx context.Context, batch Batch) (*index.BulkResponse, error) {
	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if attempt > 1 && s.metrics != nil {
			s.metrics.RetriesTotal.Inc()
		}

		start := time.Now()
		resp, err := s.store.Bulk(ctx, batch.Index, batch.Posts)
		if err == nil {
			if s.metrics != nil {
				s.metrics.BatchesTotal.Inc()
				s.metrics.BulkDuration.Observe(time.Since(start).Seconds())
			}
			return resp, nil
		}

		lastErr = err
		s.logger.Warn("bulk submission failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.maxAttempts),
			zap.Int("batch_size", len(batch.Posts)),
			zap.Error(err),
		)

		if attempt == s.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, s.maxAttempts, lastErr)
}
