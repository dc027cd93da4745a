package index

// postMapping builds the index settings and field mapping. The vector field is
// declared with the embedding model's output width; dims must match or bulk
// writes are rejected per-document.
func postMapping(dims int) map[string]any {
	return map[string]any{
		"settings": map[string]any{
			"index": map[string]any{
				"knn": true,
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id_str":                    map[string]any{"type": "keyword"},
				"user_id_str":               map[string]any{"type": "keyword"},
				"created_at":                map[string]any{"type": "date"},
				"full_text":                 map[string]any{"type": "text"},
				"favorite_count":            map[string]any{"type": "integer"},
				"retweet_count":             map[string]any{"type": "integer"},
				"in_reply_to_status_id_str": map[string]any{"type": "keyword"},
				"in_reply_to_user_id_str":   map[string]any{"type": "keyword"},
				"screen_name":               map[string]any{"type": "keyword"},
				"full_text_vector": map[string]any{
					"type":      "knn_vector",
					"dimension": dims,
				},
			},
		},
	}
}
