package search

import (
	"sort"
	"time"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

// Shape re-orders and truncates the fetched candidate pool. Without a time
// sort the engine-assigned order (descending relevance) is kept. With one, the
// full pool is sorted by creation time descending and then truncated, so
// recency ordering only ranks results that already passed the relevance bar.
// Hit scores are never modified.
func Shape(hits []domain.Hit, spec domain.QuerySpec) []domain.Hit {
	out := make([]domain.Hit, len(hits))
	copy(out, hits)

	if spec.SortByTime {
		sort.SliceStable(out, func(i, j int) bool {
			ti, iok := hitTime(out[i])
			tj, jok := hitTime(out[j])
			if iok != jok {
				return iok // unknown timestamps sort last
			}
			return ti.After(tj)
		})
	}

	if len(out) > spec.Size {
		out = out[:spec.Size]
	}
	return out
}

func hitTime(h domain.Hit) (time.Time, bool) {
	if h.CreatedAt == "" || h.CreatedAt == domain.UnknownTime {
		return time.Time{}, false
	}
	t, err := time.Parse(domain.TimeLayout, h.CreatedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
