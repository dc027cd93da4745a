package ingest

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
)

func TestNormalize_OffsetGrammar(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	cases := []struct {
		raw  string
		want string
	}{
		{"2023-01-15 10:30:00+00:00", "2023-01-15T10:30:00Z"},
		{"2023-01-15 10:30:00+02:00", "2023-01-15T08:30:00Z"},
		{"2023-06-01 23:59:59-05:00", "2023-06-02T04:59:59Z"},
		{"2023-01-15 10:30:00+0200", "2023-01-15T08:30:00Z"},
		// Already canonical input passes through unchanged in instant.
		{"2023-01-15T10:30:00Z", "2023-01-15T10:30:00Z"},
	}

	for _, tc := range cases {
		got := n.Normalize(domain.Post{CreatedAt: tc.raw})
		if got.CreatedAt != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got.CreatedAt, tc.want)
		}
	}
}

func TestNormalize_PreservesInstant(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	raw := "2023-03-10 08:15:00+05:30"

	got := n.Normalize(domain.Post{CreatedAt: raw})

	parsed, err := time.Parse(time.RFC3339, got.CreatedAt)
	if err != nil {
		t.Fatalf("output not canonical: %v", err)
	}
	original, _ := time.Parse("2006-01-02 15:04:05-07:00", raw)
	if !parsed.Equal(original) {
		t.Errorf("instant changed: %v vs %v", parsed, original)
	}
}

func TestNormalize_UnparsableGetsSentinel(t *testing.T) {
	n := NewNormalizer(zap.NewNop())

	for _, raw := range []string{"yesterday", "15/01/2023", "2023-13-45 99:99:99+00:00"} {
		got := n.Normalize(domain.Post{ID: "x", CreatedAt: raw})
		if got.CreatedAt != domain.UnknownTime {
			t.Errorf("Normalize(%q) = %q, want sentinel", raw, got.CreatedAt)
		}
		// Record is kept, only the timestamp is rewritten.
		if got.ID != "x" {
			t.Error("record mutated beyond timestamp")
		}
	}
}

func TestNormalize_MissingTimestamp(t *testing.T) {
	n := NewNormalizer(zap.NewNop())
	got := n.Normalize(domain.Post{})
	if got.CreatedAt != domain.UnknownTime {
		t.Errorf("missing created_at = %q, want sentinel", got.CreatedAt)
	}
}
