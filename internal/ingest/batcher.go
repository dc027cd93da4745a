package ingest

import "github.com/memeticlab/memeticsearch/internal/domain"

// Batch is an ordered window of normalized posts bound for one target index.
type Batch struct {
	Index string
	Posts []domain.Post
}

// Batcher groups posts into fixed-size windows. The limit is small because
// vector-bearing posts make the per-request payload large.
type Batcher struct {
	index string
	limit int
	posts []domain.Post
}

// NewBatcher creates a batcher for the given target index and window size.
func NewBatcher(index string, limit int) *Batcher {
	return &Batcher{
		index: index,
		limit: limit,
		posts: make([]domain.Post, 0, limit),
	}
}

// Add appends a post to the current window. When the window fills, the full
// batch is returned and a new window starts.
func (b *Batcher) Add(post domain.Post) (Batch, bool) {
	b.posts = append(b.posts, post)
	if len(b.posts) < b.limit {
		return Batch{}, false
	}
	return b.cut(), true
}

// Flush yields the trailing partial window. Called once, on source exhaustion;
// returns false when nothing is pending.
func (b *Batcher) Flush() (Batch, bool) {
	if len(b.posts) == 0 {
		return Batch{}, false
	}
	return b.cut(), true
}

func (b *Batcher) cut() Batch {
	batch := Batch{Index: b.index, Posts: b.posts}
	b.posts = make([]domain.Post, 0, b.limit)
	return batch
}
