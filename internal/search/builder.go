// Package search implements query composition and post-processing: k-NN query
// construction, hybrid fusion with semantic fallback, and score-preserving
// temporal re-sort.
package search

import (
	"encoding/json"
	"fmt"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

// keywordBoost down-weights the keyword clause of a hybrid query so lexical
// relevance contributes a minority signal next to the semantic score.
const keywordBoost = 0.3

// sourceFields is the fixed projection returned to callers. Vector and other
// large fields are never part of it.
var sourceFields = []string{
	"full_text",
	"screen_name",
	"created_at",
	"favorite_count",
	"retweet_count",
	"id_str",
}

// Builder turns a query spec into the index service's query payload. The
// embedding for the query text is computed server-side by the named model.
type Builder struct {
	modelID string
}

// NewBuilder creates a builder bound to a deployed embedding model.
func NewBuilder(modelID string) *Builder {
	return &Builder{modelID: modelID}
}

// Build composes the query body for the spec's mode.
func (b *Builder) Build(spec domain.QuerySpec) ([]byte, error) {
	var query map[string]any
	switch spec.Mode {
	case domain.ModeSemantic:
		query = b.neuralClause(spec)
	case domain.ModeHybrid:
		query = map[string]any{
			"hybrid": map[string]any{
				"queries": []map[string]any{
					b.neuralClause(spec),
					{
						"match": map[string]any{
							"full_text": map[string]any{
								"query": spec.Text,
								"boost": keywordBoost,
							},
						},
					},
				},
			},
		}
	default:
		return nil, fmt.Errorf("%w: mode %q", domain.ErrInvalidQuery, spec.Mode)
	}

	body, err := json.Marshal(map[string]any{
		"_source": sourceFields,
		"query":   query,
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	return body, nil
}

func (b *Builder) neuralClause(spec domain.QuerySpec) map[string]any {
	return map[string]any{
		"neural": map[string]any{
			"full_text_vector": map[string]any{
				"query_text": spec.Text,
				"model_id":   b.modelID,
				"k":          spec.K,
			},
		},
	}
}
