// Package index defines the capability contract against the external
// index-and-model service, and its OpenSearch implementation. The engine's
// query execution, ranking math, and vector index structure live on the other
// side of this interface.
package index

import (
	"context"
	"time"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

// ItemError is the structured error body attached to a rejected bulk item.
type ItemError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// BulkItem is the per-document outcome of one bulk write.
type BulkItem struct {
	ID     string
	Status int
	Err    *ItemError
}

// Failed reports whether the item was rejected.
func (it BulkItem) Failed() bool {
	return it.Err != nil || it.Status >= 300
}

// BulkResponse is the outcome of one submitted batch.
type BulkResponse struct {
	Took   time.Duration
	Errors bool
	Items  []BulkItem
}

// FailedCount returns the number of rejected items.
func (r *BulkResponse) FailedCount() int {
	n := 0
	for _, it := range r.Items {
		if it.Failed() {
			n++
		}
	}
	return n
}

// SearchPage is one raw ordered hit list with its query latency.
type SearchPage struct {
	Took time.Duration
	Hits []domain.Hit
}

// Bucket is one period of a histogram aggregation.
type Bucket struct {
	Key   string
	Count int
}

// Store is the index service capability the pipelines depend on.
// Implementations must make EnsureIndex idempotent and must map a rejected
// hybrid query shape to domain.ErrHybridNotSupported.
type Store interface {
	// Ping verifies connectivity and health.
	Ping(ctx context.Context) error
	// EnsureIndex creates the named index with the post mapping if missing.
	EnsureIndex(ctx context.Context, name string) error
	// Bulk writes one batch of posts as a single multi-document request.
	Bulk(ctx context.Context, name string, posts []domain.Post) (*BulkResponse, error)
	// Count returns the number of documents in the index.
	Count(ctx context.Context, name string) (int, error)
	// Refresh makes recent writes visible to search and count.
	Refresh(ctx context.Context, name string) error
	// Search executes a prepared query body with the given fetch size.
	Search(ctx context.Context, name string, body []byte, size int) (*SearchPage, error)
	// Histogram runs a calendar-interval histogram over a date field.
	Histogram(ctx context.Context, name, field, interval string) ([]Bucket, error)
}
