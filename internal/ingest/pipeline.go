package ingest

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/index"
	"github.com/memeticlab/memeticsearch/internal/metrics"
)

// Options configures one pipeline run.
type Options struct {
	Index           string
	BatchSize       int
	MaxAttempts     int
	RetryDelay      time.Duration
	MaxFailureRatio float64
}

// Summary is the outcome of a completed run.
type Summary struct {
	Submitted    int // posts sent in batches
	Failed       int // per-document rejections (below the fatal ratio)
	SkippedLines int // undecodable source lines
	Batches      int
	IndexDocs    int // final document count after refresh
	Elapsed      time.Duration
}

// Pipeline wires source, normalizer, batcher, submitter, and classifier into a
// single sequential run. Exactly one batch is in flight at a time; batch N+1
// is never attempted while batch N's retry loop is outstanding.
type Pipeline struct {
	store   index.Store
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Ingest
}

// New creates a pipeline bound to an explicitly owned store handle.
func New(store index.Store, opts Options, logger *zap.Logger, m *metrics.Ingest) *Pipeline {
	return &Pipeline{store: store, opts: opts, logger: logger, metrics: m}
}

// Run executes the full ingestion pipeline over a JSON Lines reader.
// Connectivity is verified up front and the index is ensured exactly once
// before any batch is sent. A fatal batch stops processing immediately; posts
// written by earlier batches remain in the index.
func (p *Pipeline) Run(ctx context.Context, r io.Reader) (Summary, error) {
	start := time.Now()
	var sum Summary

	if err := p.store.Ping(ctx); err != nil {
		return sum, fmt.Errorf("verify index service: %w", err)
	}
	if err := p.store.EnsureIndex(ctx, p.opts.Index); err != nil {
		return sum, fmt.Errorf("ensure index: %w", err)
	}

	source := NewSource(r, p.logger)
	normalizer := NewNormalizer(p.logger)
	batcher := NewBatcher(p.opts.Index, p.opts.BatchSize)
	submitter := NewSubmitter(p.store, p.opts.MaxAttempts, p.opts.RetryDelay, p.logger, p.metrics)
	classifier := NewClassifier(p.opts.MaxFailureRatio, p.logger, p.metrics)

	flush := func(batch Batch) error {
		resp, err := submitter.Submit(ctx, batch)
		if err != nil {
			return err
		}
		failed, err := classifier.Classify(batch, resp)
		sum.Batches++
		sum.Submitted += len(batch.Posts)
		sum.Failed += failed
		if p.metrics != nil {
			p.metrics.PostsProcessed.Add(float64(len(batch.Posts) - failed))
		}
		if err != nil {
			return err
		}
		p.logger.Debug("batch indexed",
			zap.Int("batch", sum.Batches),
			zap.Int("size", len(batch.Posts)),
			zap.Int("failed", failed),
			zap.Duration("took", resp.Took),
		)
		return nil
	}

	skipped, err := source.Posts(ctx, func(post domain.Post) error {
		if batch, full := batcher.Add(normalizer.Normalize(post)); full {
			return flush(batch)
		}
		return nil
	})
	sum.SkippedLines = skipped
	if p.metrics != nil && skipped > 0 {
		p.metrics.PostsFailed.WithLabelValues(metrics.ReasonBadLine).Add(float64(skipped))
	}
	if err != nil {
		sum.Elapsed = time.Since(start)
		return sum, err
	}

	// Trailing partial window: always submitted when non-empty.
	if batch, ok := batcher.Flush(); ok {
		if err := flush(batch); err != nil {
			sum.Elapsed = time.Since(start)
			return sum, err
		}
	}

	if err := p.store.Refresh(ctx, p.opts.Index); err != nil {
		p.logger.Warn("refresh failed", zap.Error(err))
	}
	if docs, err := p.store.Count(ctx, p.opts.Index); err != nil {
		p.logger.Warn("count failed", zap.Error(err))
	} else {
		sum.IndexDocs = docs
	}

	sum.Elapsed = time.Since(start)
	p.logger.Info("ingestion complete",
		zap.Int("submitted", sum.Submitted),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped_lines", sum.SkippedLines),
		zap.Int("batches", sum.Batches),
		zap.Int("index_docs", sum.IndexDocs),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return sum, nil
}
