// Package stats computes post-volume analytics over the index.
package stats

import (
	"context"
	"fmt"
	"sort"

	"github.com/memeticlab/memeticsearch/internal/index"
)

// MonthCount is one month's post volume, keyed as "yyyy-MM".
type MonthCount struct {
	Month string
	Count int
}

// Service runs aggregations against one index.
type Service struct {
	store index.Store
	index string
}

// New creates a stats service.
func New(store index.Store, indexName string) *Service {
	return &Service{store: store, index: indexName}
}

// Monthly returns post counts per calendar month in chronological order. The
// result is built fresh per call; nothing accumulates across invocations.
func (s *Service) Monthly(ctx context.Context) ([]MonthCount, error) {
	buckets, err := s.store.Histogram(ctx, s.index, "created_at", "month")
	if err != nil {
		return nil, fmt.Errorf("monthly histogram: %w", err)
	}

	counts := make([]MonthCount, len(buckets))
	for i, b := range buckets {
		counts[i] = MonthCount{Month: b.Key, Count: b.Count}
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Month < counts[j].Month })
	return counts, nil
}
