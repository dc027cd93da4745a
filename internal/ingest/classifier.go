package ingest

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/index"
	"github.com/memeticlab/memeticsearch/internal/metrics"
)

// Classifier decides whether a bulk response is acceptable. A high failure
// ratio signals a systemic problem (bad mapping, malformed payload) rather
// than isolated bad records; continuing would silently fill a mostly-empty
// index.
type Classifier struct {
	maxFailureRatio float64
	logger          *zap.Logger
	metrics         *metrics.Ingest
}

// NewClassifier creates a classifier with the given fatal failure ratio.
func NewClassifier(maxFailureRatio float64, logger *zap.Logger, m *metrics.Ingest) *Classifier {
	return &Classifier{maxFailureRatio: maxFailureRatio, logger: logger, metrics: m}
}

// Classify inspects per-document outcomes. Failures at or below the ratio are
// logged with the offending document and ingestion continues; above it the
// whole batch is fatal and the error wraps domain.ErrBatchRejected.
func (c *Classifier) Classify(batch Batch, resp *index.BulkResponse) (failed int, err error) {
	for i, item := range resp.Items {
		if !item.Failed() {
			continue
		}
		failed++

		fields := []zap.Field{
			zap.String("id", item.ID),
			zap.Int("status", item.Status),
		}
		if item.Err != nil {
			fields = append(fields,
				zap.String("error_type", item.Err.Type),
				zap.String("error_reason", item.Err.Reason),
			)
		}
		if i < len(batch.Posts) {
			fields = append(fields, zap.String("text", batch.Posts[i].FullText))
		}
		c.logger.Warn("document rejected", fields...)

		if c.metrics != nil {
			c.metrics.PostsFailed.WithLabelValues(metrics.ReasonItemError).Inc()
		}
	}

	total := len(batch.Posts)
	if total > 0 && float64(failed) > c.maxFailureRatio*float64(total) {
		return failed, fmt.Errorf("%w: %d of %d documents failed (limit %.0f%%)",
			domain.ErrBatchRejected, failed, total, c.maxFailureRatio*100)
	}
	return failed, nil
}
