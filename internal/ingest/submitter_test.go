package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/metrics"
)

func testBatch(n int) Batch {
	b := NewBatcher("posts", n)
	for i := 0; i < n-1; i++ {
		b.Add(domain.Post{ID: "x"})
	}
	batch, _ := b.Add(domain.Post{ID: "x"})
	return batch
}

func TestSubmit_SucceedsFirstAttempt(t *testing.T) {
	store := &fakeStore{}
	s := NewSubmitter(store, 3, 0, zap.NewNop(), nil)

	resp, err := s.Submit(context.Background(), testBatch(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("got %d items, want 2", len(resp.Items))
	}
	if store.bulkCalls != 1 {
		t.Errorf("bulk called %d times, want 1", store.bulkCalls)
	}
}

func TestSubmit_RetriesTransportFailure(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{bulkErrs: []error{boom, boom}}
	s := NewSubmitter(store, 3, 0, zap.NewNop(), nil)

	_, err := s.Submit(context.Background(), testBatch(1))
	if err != nil {
		t.Fatalf("third attempt should have succeeded: %v", err)
	}
	if store.bulkCalls != 3 {
		t.Errorf("bulk called %d times, want 3", store.bulkCalls)
	}
}

func TestSubmit_StopsAfterMaxAttempts(t *testing.T) {
	boom := errors.New("connection refused")
	store := &fakeStore{bulkErrs: []error{boom, boom, boom, boom}}
	s := NewSubmitter(store, 3, 0, zap.NewNop(), nil)

	_, err := s.Submit(context.Background(), testBatch(1))
	if !errors.Is(err, domain.ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("last transport error should be wrapped, got %v", err)
	}
	// No fourth attempt.
	if store.bulkCalls != 3 {
		t.Errorf("bulk called %d times, want exactly 3", store.bulkCalls)
	}
}

func TestSubmit_RetryCounterExcludesFirstAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewIngest(reg)

	boom := errors.New("connection refused")
	store := &fakeStore{bulkErrs: []error{boom, boom}}
	s := NewSubmitter(store, 3, 0, zap.NewNop(), m)

	if _, err := s.Submit(context.Background(), testBatch(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Attempts 2 and 3 are retries; the first attempt is not.
	if got := testutil.ToFloat64(m.RetriesTotal); got != 2 {
		t.Errorf("retries counter = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.BatchesTotal); got != 1 {
		t.Errorf("batches counter = %v, want 1", got)
	}
}

func TestSubmit_NoRetryCountOnFirstSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewIngest(reg)

	s := NewSubmitter(&fakeStore{}, 3, 0, zap.NewNop(), m)
	if _, err := s.Submit(context.Background(), testBatch(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(m.RetriesTotal); got != 0 {
		t.Errorf("retries counter = %v, want 0", got)
	}
}

func TestSubmit_CancelledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	boom := errors.New("connection refused")
	store := &fakeStore{bulkErrs: []error{boom, boom, boom}}
	s := NewSubmitter(store, 3, 0, zap.NewNop(), nil)

	_, err := s.Submit(ctx, testBatch(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.bulkCalls != 1 {
		t.Errorf("bulk called %d times after cancel, want 1", store.bulkCalls)
	}
}
