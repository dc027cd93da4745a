package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

// Config holds the OpenSearch connection settings.
type Config struct {
	URL            string
	VectorDims     int
	RequestTimeout time.Duration
	PingTimeout    time.Duration
}

// OpenSearchStore implements Store against the OpenSearch REST API.
type OpenSearchStore struct {
	client         *opensearch.Client
	dims           int
	requestTimeout time.Duration
	pingTimeout    time.Duration
	logger         *zap.Logger
}

var _ Store = (*OpenSearchStore)(nil)

// NewOpenSearchStore creates an OpenSearch-backed store.
func NewOpenSearchStore(cfg Config, logger *zap.Logger) (*OpenSearchStore, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &OpenSearchStore{
		client:         client,
		dims:           cfg.VectorDims,
		requestTimeout: cfg.RequestTimeout,
		pingTimeout:    cfg.PingTimeout,
		logger:         logger,
	}, nil
}

// Ping verifies connectivity within the ping timeout.
func (s *OpenSearchStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.pingTimeout)
	defer cancel()

	res, err := s.client.Ping(s.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer closeBody(res)
	if res.IsError() {
		return fmt.Errorf("%w: ping status %d", domain.ErrIndexUnavailable, res.StatusCode)
	}
	return nil
}

// EnsureIndex creates the index with the post mapping if it does not exist.
// Creation racing another creator is still a success.
func (s *OpenSearchStore) EnsureIndex(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	res, err := s.client.Indices.Exists(
		[]string{name},
		s.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %s: %w", name, err)
	}
	closeBody(res)
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		// fall through to creation
	default:
		return fmt.Errorf("check index %s: status %d", name, res.StatusCode)
	}

	body, err := json.Marshal(postMapping(s.dims))
	if err != nil {
		return fmt.Errorf("encode mapping: %w", err)
	}

	res, err = s.client.Indices.Create(
		name,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	defer closeBody(res)

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		if strings.Contains(string(raw), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("create index %s: status %d: %s", name, res.StatusCode, raw)
	}

	s.logger.Info("index created", zap.String("index", name), zap.Int("vector_dims", s.dims))
	return nil
}

// Bulk submits posts as one multi-document write. A transport error or a
// request-level rejection is returned as an error (retryable by the caller);
// per-document outcomes are reported in the BulkResponse.
func (s *OpenSearchStore) Bulk(ctx context.Context, name string, posts []domain.Post) (*BulkResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	var buf bytes.Buffer
	for i := range posts {
		action := map[string]map[string]string{"index": {"_index": name}}
		if posts[i].ID != "" {
			action["index"]["_id"] = posts[i].ID
		}
		meta, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}
		doc, err := json.Marshal(posts[i])
		if err != nil {
			return nil, fmt.Errorf("encode document %s: %w", posts[i].ID, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(name),
	)
	if err != nil {
		return nil, fmt.Errorf("bulk: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("bulk: status %d: %s", res.StatusCode, raw)
	}

	var dto bulkResponseDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode bulk response: %w", err)
	}

	resp := &BulkResponse{
		Took:   time.Duration(dto.Took) * time.Millisecond,
		Errors: dto.Errors,
		Items:  make([]BulkItem, 0, len(dto.Items)),
	}
	for _, entry := range dto.Items {
		// Each entry carries exactly one op type key ("index").
		for _, it := range entry {
			resp.Items = append(resp.Items, BulkItem{
				ID:     it.ID,
				Status: it.Status,
				Err:    it.Error,
			})
		}
	}
	return resp, nil
}

// Count returns the number of documents in the index.
func (s *OpenSearchStore) Count(ctx context.Context, name string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(name),
	)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return 0, fmt.Errorf("count: status %d", res.StatusCode)
	}

	var dto countResponseDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return dto.Count, nil
}

// Refresh makes recent writes visible.
func (s *OpenSearchStore) Refresh(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	res, err := s.client.Indices.Refresh(
		s.client.Indices.Refresh.WithContext(ctx),
		s.client.Indices.Refresh.WithIndex(name),
	)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return fmt.Errorf("refresh: status %d", res.StatusCode)
	}
	return nil
}

// Search executes a prepared query body. A 400-class rejection of the hybrid
// clause maps to domain.ErrHybridNotSupported so the caller can fall back.
func (s *OpenSearchStore) Search(ctx context.Context, name string, body []byte, size int) (*SearchPage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(name),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		if res.StatusCode >= 400 && res.StatusCode < 500 && bytes.Contains(raw, []byte("hybrid")) {
			return nil, fmt.Errorf("%w: status %d", domain.ErrHybridNotSupported, res.StatusCode)
		}
		return nil, fmt.Errorf("search: status %d: %s", res.StatusCode, raw)
	}

	var dto searchResponseDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	page := &SearchPage{
		Took: time.Duration(dto.Took) * time.Millisecond,
		Hits: make([]domain.Hit, len(dto.Hits.Hits)),
	}
	for i, h := range dto.Hits.Hits {
		page.Hits[i] = toHit(h)
	}
	return page, nil
}

// Histogram runs a zero-hit calendar-interval histogram over a date field and
// returns the buckets in the order the engine produced them (chronological).
func (s *OpenSearchStore) Histogram(ctx context.Context, name, field, interval string) ([]Bucket, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"size": 0,
		"aggs": map[string]any{
			"per_period": map[string]any{
				"date_histogram": map[string]any{
					"field":             field,
					"calendar_interval": interval,
					"format":            "yyyy-MM",
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode histogram query: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(name),
		s.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, fmt.Errorf("histogram: status %d", res.StatusCode)
	}

	var dto histogramResponseDTO
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("decode histogram response: %w", err)
	}

	buckets := make([]Bucket, len(dto.Aggregations.PerPeriod.Buckets))
	for i, b := range dto.Aggregations.PerPeriod.Buckets {
		buckets[i] = Bucket{Key: b.KeyAsString, Count: b.DocCount}
	}
	return buckets, nil
}

func closeBody(res *opensearchapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
