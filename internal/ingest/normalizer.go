package ingest

import (
	"time"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

// createdAtLayouts are the accepted creation-timestamp encodings, tried in
// order: the exporter's "date space time with numeric UTC offset", then the
// canonical form itself (already-normalized input passes through).
var createdAtLayouts = []string{
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05-0700",
	time.RFC3339,
}

// Normalizer rewrites loosely-encoded creation timestamps to the canonical
// representation. Parse failure is data, not a fault.
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize returns the post with created_at rewritten to RFC 3339 UTC, or set
// to the unknown sentinel when unparsable. Never fails; the post is always
// kept.
func (n *Normalizer) Normalize(post domain.Post) domain.Post {
	if post.CreatedAt == "" || post.CreatedAt == domain.UnknownTime {
		post.CreatedAt = domain.UnknownTime
		return post
	}

	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, post.CreatedAt); err == nil {
			post.CreatedAt = t.UTC().Format(domain.TimeLayout)
			return post
		}
	}

	n.logger.Warn("unparsable created_at",
		zap.String("id", post.ID),
		zap.String("raw", post.CreatedAt),
	)
	post.CreatedAt = domain.UnknownTime
	return post
}
