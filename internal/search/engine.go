package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/index"
)

// Result is the shaped outcome of one query.
type Result struct {
	Hits []domain.Hit
	Took time.Duration
	// Mode is the mode actually executed; differs from the spec's after a
	// hybrid fallback.
	Mode domain.Mode
}

// Engine fetches and shapes query results against one index.
type Engine struct {
	store   index.Store
	builder *Builder
	index   string
	logger  *zap.Logger
}

// NewEngine creates a query engine.
func NewEngine(store index.Store, builder *Builder, indexName string, logger *zap.Logger) *Engine {
	return &Engine{store: store, builder: builder, index: indexName, logger: logger}
}

// Search executes the spec. The fetch size is the neighbor count when a time
// sort is requested (the pool must be wider than the output so re-sorting
// doesn't starve recall), otherwise the output size. A backend that rejects
// the hybrid shape is retried in pure semantic mode; the caller never sees
// that as an error.
func (e *Engine) Search(ctx context.Context, spec domain.QuerySpec) (Result, error) {
	fetchSize := spec.Size
	if spec.SortByTime {
		fetchSize = spec.K
	}

	mode := spec.Mode
	page, err := e.fetch(ctx, spec, fetchSize)
	if err != nil && mode == domain.ModeHybrid && errors.Is(err, domain.ErrHybridNotSupported) {
		e.logger.Info("hybrid query not supported, falling back to semantic",
			zap.String("query", spec.Text),
		)
		mode = domain.ModeSemantic
		fallback := spec
		fallback.Mode = domain.ModeSemantic
		page, err = e.fetch(ctx, fallback, fetchSize)
	}
	if err != nil {
		return Result{}, fmt.Errorf("execute query: %w", err)
	}

	return Result{
		Hits: Shape(page.Hits, spec),
		Took: page.Took,
		Mode: mode,
	}, nil
}

func (e *Engine) fetch(ctx context.Context, spec domain.QuerySpec, size int) (*index.SearchPage, error) {
	body, err := e.builder.Build(spec)
	if err != nil {
		return nil, err
	}
	return e.store.Search(ctx, e.index, body, size)
}
