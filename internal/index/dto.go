package index

import (
	"github.com/memeticlab/memeticsearch/internal/domain"
)

// Wire shapes of the index service responses.

type bulkItemDTO struct {
	ID     string     `json:"_id"`
	Status int        `json:"status"`
	Error  *ItemError `json:"error"`
}

type bulkResponseDTO struct {
	Took   int                      `json:"took"` // milliseconds
	Errors bool                     `json:"errors"`
	Items  []map[string]bulkItemDTO `json:"items"`
}

type hitSourceDTO struct {
	IDStr         string       `json:"id_str"`
	FullText      string       `json:"full_text"`
	ScreenName    string       `json:"screen_name"`
	CreatedAt     string       `json:"created_at"`
	FavoriteCount domain.Count `json:"favorite_count"`
	RetweetCount  domain.Count `json:"retweet_count"`
}

type searchHitDTO struct {
	ID     string       `json:"_id"`
	Score  float64      `json:"_score"`
	Source hitSourceDTO `json:"_source"`
}

type searchResponseDTO struct {
	Took int `json:"took"` // milliseconds
	Hits struct {
		Hits []searchHitDTO `json:"hits"`
	} `json:"hits"`
}

type countResponseDTO struct {
	Count int `json:"count"`
}

type histogramResponseDTO struct {
	Aggregations struct {
		PerPeriod struct {
			Buckets []struct {
				KeyAsString string `json:"key_as_string"`
				DocCount    int    `json:"doc_count"`
			} `json:"buckets"`
		} `json:"per_period"`
	} `json:"aggregations"`
}

func toHit(h searchHitDTO) domain.Hit {
	return domain.Hit{
		ID:            firstNonEmpty(h.Source.IDStr, h.ID),
		Score:         h.Score,
		FullText:      h.Source.FullText,
		ScreenName:    h.Source.ScreenName,
		CreatedAt:     h.Source.CreatedAt,
		FavoriteCount: int(h.Source.FavoriteCount),
		RetweetCount:  int(h.Source.RetweetCount),
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
