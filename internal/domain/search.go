package domain

import "fmt"

// Mode selects the query composition strategy.
type Mode string

const (
	// ModeSemantic runs a pure k-NN neighbor query over the embedding field.
	ModeSemantic Mode = "semantic"
	// ModeHybrid fuses the neighbor query with a down-weighted keyword match.
	ModeHybrid Mode = "hybrid"
)

// QuerySpec describes one search invocation.
type QuerySpec struct {
	Text       string
	Mode       Mode
	Size       int  // final output size
	K          int  // neighbor count (recall breadth)
	SortByTime bool // re-order the candidate pool by creation time
}

// NewQuerySpec validates and normalizes a query spec. When a time sort is
// requested the neighbor count is widened to at least Size so re-sorting
// cannot starve recall.
func NewQuerySpec(text string, mode Mode, size, k int, sortByTime bool) (QuerySpec, error) {
	if text == "" {
		return QuerySpec{}, fmt.Errorf("%w: empty query text", ErrInvalidQuery)
	}
	switch mode {
	case ModeSemantic, ModeHybrid:
	default:
		return QuerySpec{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidQuery, mode)
	}
	if size <= 0 {
		return QuerySpec{}, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidQuery, size)
	}
	if k <= 0 {
		return QuerySpec{}, fmt.Errorf("%w: neighbor count must be positive, got %d", ErrInvalidQuery, k)
	}
	if sortByTime && k < size {
		k = size
	}
	return QuerySpec{
		Text:       text,
		Mode:       mode,
		Size:       size,
		K:          k,
		SortByTime: sortByTime,
	}, nil
}

// Hit is one retrieved post with its engine-assigned relevance score and the
// fixed display projection. Score is never changed by downstream re-sorting.
type Hit struct {
	ID            string
	Score         float64
	FullText      string
	ScreenName    string
	CreatedAt     string
	FavoriteCount int
	RetweetCount  int
}
