// Package domain holds the core data model: posts as they travel through the
// ingestion pipeline and the query/hit types of the search engine.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// TimeLayout is the canonical timestamp encoding used throughout the index.
	TimeLayout = time.RFC3339
	// UnknownTime marks a creation timestamp that could not be parsed.
	UnknownTime = "unknown"
)

// Count is an engagement counter. Source lines produced from CSV exports carry
// counters as JSON strings, so both encodings must decode.
type Count int

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Count) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*c = Count(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("count: %s", data)
	}
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("count %q: %w", s, err)
	}
	*c = Count(n)
	return nil
}

// MarshalJSON always emits a JSON number.
func (c Count) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(c))), nil
}

// Post is one social-media record. Known fields are typed; everything else from
// the source line survives in Extra so no data is dropped on the way to the index.
type Post struct {
	ID              string
	UserID          string
	FullText        string
	ScreenName      string
	CreatedAt       string
	FavoriteCount   Count
	RetweetCount    Count
	InReplyToStatus string
	InReplyToUser   string
	Vector          []float32

	// Extra carries unrecognized source fields through to the index untouched.
	Extra map[string]json.RawMessage
}

// Known field names on the wire.
const (
	fieldID              = "id_str"
	fieldUserID          = "user_id_str"
	fieldFullText        = "full_text"
	fieldScreenName      = "screen_name"
	fieldCreatedAt       = "created_at"
	fieldFavoriteCount   = "favorite_count"
	fieldRetweetCount    = "retweet_count"
	fieldInReplyToStatus = "in_reply_to_status_id_str"
	fieldInReplyToUser   = "in_reply_to_user_id_str"
	fieldVector          = "full_text_vector"
)

// UnmarshalJSON decodes known fields and folds the rest into Extra.
func (p *Post) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		v, ok := raw[key]
		if !ok || string(v) == "null" {
			delete(raw, key)
			return nil
		}
		delete(raw, key)
		if err := json.Unmarshal(v, dst); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		return nil
	}

	fields := []struct {
		key string
		dst any
	}{
		{fieldID, &p.ID},
		{fieldUserID, &p.UserID},
		{fieldFullText, &p.FullText},
		{fieldScreenName, &p.ScreenName},
		{fieldCreatedAt, &p.CreatedAt},
		{fieldFavoriteCount, &p.FavoriteCount},
		{fieldRetweetCount, &p.RetweetCount},
		{fieldInReplyToStatus, &p.InReplyToStatus},
		{fieldInReplyToUser, &p.InReplyToUser},
		{fieldVector, &p.Vector},
	}
	for _, f := range fields {
		if err := take(f.key, f.dst); err != nil {
			return err
		}
	}

	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// MarshalJSON emits known fields plus the pass-through bag as one flat object.
// Empty optional fields are omitted; counters are always present.
func (p Post) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+10)
	for k, v := range p.Extra {
		out[k] = v
	}

	setIf := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}
	setIf(fieldID, p.ID)
	setIf(fieldUserID, p.UserID)
	setIf(fieldFullText, p.FullText)
	setIf(fieldScreenName, p.ScreenName)
	setIf(fieldCreatedAt, p.CreatedAt)
	setIf(fieldInReplyToStatus, p.InReplyToStatus)
	setIf(fieldInReplyToUser, p.InReplyToUser)
	out[fieldFavoriteCount] = p.FavoriteCount
	out[fieldRetweetCount] = p.RetweetCount
	if p.Vector != nil {
		out[fieldVector] = p.Vector
	}

	return json.Marshal(out)
}

// HasKnownTime reports whether the post carries a parsable canonical timestamp.
func (p Post) HasKnownTime() bool {
	return p.CreatedAt != "" && p.CreatedAt != UnknownTime
}
