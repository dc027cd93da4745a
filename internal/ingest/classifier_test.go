package ingest

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

func TestClassify_AllSucceeded(t *testing.T) {
	c := NewClassifier(0.25, zap.NewNop(), nil)
	batch := testBatch(4)

	failed, err := c.Classify(batch, okResponse(batch.Posts))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 0 {
		t.Errorf("failed = %d, want 0", failed)
	}
}

func TestClassify_BelowRatioContinues(t *testing.T) {
	c := NewClassifier(0.25, zap.NewNop(), nil)
	batch := testBatch(4)

	// 1 of 4 is exactly 25%: at the limit, not above it.
	failed, err := c.Classify(batch, failingResponse(batch.Posts, 1))
	if err != nil {
		t.Fatalf("25%% must not be fatal: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestClassify_AboveRatioFatal(t *testing.T) {
	c := NewClassifier(0.25, zap.NewNop(), nil)
	batch := testBatch(4)

	failed, err := c.Classify(batch, failingResponse(batch.Posts, 2))
	if !errors.Is(err, domain.ErrBatchRejected) {
		t.Fatalf("expected ErrBatchRejected, got %v", err)
	}
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
}

func TestClassify_StatusWithoutErrorBody(t *testing.T) {
	// Some failures carry only an HTTP status, no error object.
	c := NewClassifier(0.5, zap.NewNop(), nil)
	batch := testBatch(2)

	resp := okResponse(batch.Posts)
	resp.Items[0].Status = 429
	resp.Items[0].Err = nil

	failed, err := c.Classify(batch, resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}
