package ingest

import (
	"context"
	"errors"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/index"
)

// fakeStore is an in-memory index.Store for pipeline tests.
type fakeStore struct {
	pingErr   error
	ensureErr error

	// bulkErrs is consumed one entry per Bulk call; nil entries succeed.
	// When exhausted, calls succeed.
	bulkErrs []error
	// respFor overrides the default all-OK response for successful calls.
	respFor func(posts []domain.Post) *index.BulkResponse

	ensureCalls  int
	bulkCalls    int
	refreshCalls int
	batches      [][]domain.Post

	docs     int
	countErr error
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) EnsureIndex(context.Context, string) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeStore) Bulk(_ context.Context, _ string, posts []domain.Post) (*index.BulkResponse, error) {
	call := f.bulkCalls
	f.bulkCalls++
	if call < len(f.bulkErrs) && f.bulkErrs[call] != nil {
		return nil, f.bulkErrs[call]
	}

	f.batches = append(f.batches, posts)
	if f.respFor != nil {
		return f.respFor(posts), nil
	}
	return okResponse(posts), nil
}

func (f *fakeStore) Count(context.Context, string) (int, error) {
	return f.docs, f.countErr
}

func (f *fakeStore) Refresh(context.Context, string) error {
	f.refreshCalls++
	return nil
}

func (f *fakeStore) Search(context.Context, string, []byte, int) (*index.SearchPage, error) {
	return nil, errors.New("not used in ingest tests")
}

func (f *fakeStore) Histogram(context.Context, string, string, string) ([]index.Bucket, error) {
	return nil, errors.New("not used in ingest tests")
}

func okResponse(posts []domain.Post) *index.BulkResponse {
	resp := &index.BulkResponse{Items: make([]index.BulkItem, len(posts))}
	for i, p := range posts {
		resp.Items[i] = index.BulkItem{ID: p.ID, Status: 201}
	}
	return resp
}

// failingResponse marks the first n items as rejected.
func failingResponse(posts []domain.Post, n int) *index.BulkResponse {
	resp := okResponse(posts)
	for i := 0; i < n && i < len(resp.Items); i++ {
		resp.Items[i].Status = 400
		resp.Items[i].Err = &index.ItemError{
			Type:   "mapper_parsing_exception",
			Reason: "failed to parse field",
		}
	}
	resp.Errors = n > 0
	return resp
}
