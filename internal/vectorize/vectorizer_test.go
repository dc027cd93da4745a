package vectorize

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

type fakeEmbedder struct {
	calls   int
	batches [][]string
	err     error
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.batches = append(f.batches, texts)
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i])), 0.5}
	}
	return vectors, nil
}

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("output line is not JSON: %v", err)
		}
		records = append(records, rec)
	}
	return records
}

func TestRun_AppendsVector(t *testing.T) {
	in := "id_str,full_text,screen_name\n1,hello world,alice\n2,second post,bob\n"
	var out bytes.Buffer
	emb := &fakeEmbedder{}
	v := New(emb, 10, zap.NewNop())

	sum, err := v.Run(context.Background(), strings.NewReader(in), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.RowsRead != 2 || sum.RowsWritten != 2 || sum.RowsSkipped != 0 {
		t.Errorf("summary = %+v", sum)
	}

	records := decodeLines(t, &out)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["full_text"] != "hello world" || records[0]["screen_name"] != "alice" {
		t.Errorf("columns not carried over: %v", records[0])
	}
	vec, ok := records[0]["full_text_vector"].([]any)
	if !ok || len(vec) != 2 {
		t.Errorf("vector missing or wrong length: %v", records[0]["full_text_vector"])
	}
}

func TestRun_SkipsEmptyText(t *testing.T) {
	in := "id_str,full_text\n1,hello\n2,\n3,world\n"
	var out bytes.Buffer
	emb := &fakeEmbedder{}
	v := New(emb, 10, zap.NewNop())

	sum, err := v.Run(context.Background(), strings.NewReader(in), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.RowsSkipped != 1 || sum.RowsWritten != 2 {
		t.Errorf("summary = %+v", sum)
	}
	if len(emb.batches) != 1 || len(emb.batches[0]) != 2 {
		t.Errorf("embedder saw %v, empty texts must never be embedded", emb.batches)
	}
}

func TestRun_FlushesInBatches(t *testing.T) {
	var b strings.Builder
	b.WriteString("id_str,full_text\n")
	for i := 0; i < 5; i++ {
		b.WriteString("1,text\n")
	}
	var out bytes.Buffer
	emb := &fakeEmbedder{}
	v := New(emb, 2, zap.NewNop())

	sum, err := v.Run(context.Background(), strings.NewReader(b.String()), &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5 rows with batch size 2: two full batches plus a trailing single.
	if emb.calls != 3 {
		t.Errorf("embedder called %d times, want 3", emb.calls)
	}
	if sum.RowsWritten != 5 {
		t.Errorf("written = %d, want 5", sum.RowsWritten)
	}
}

func TestRun_TruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", maxTextLen+50)
	in := "id_str,full_text\n1," + long + "\n"
	var out bytes.Buffer
	emb := &fakeEmbedder{}
	v := New(emb, 10, zap.NewNop())

	if _, err := v.Run(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(emb.batches[0][0]); got != maxTextLen {
		t.Errorf("embedded text length = %d, want %d", got, maxTextLen)
	}
}

func TestRun_TruncationKeepsRuneBoundary(t *testing.T) {
	// Multibyte text must never be cut mid-sequence.
	long := strings.Repeat("é", maxTextLen+10)
	in := "id_str,full_text\n1," + long + "\n"
	var out bytes.Buffer
	emb := &fakeEmbedder{}
	v := New(emb, 10, zap.NewNop())

	if _, err := v.Run(context.Background(), strings.NewReader(in), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := emb.batches[0][0]
	if !utf8.ValidString(got) {
		t.Error("truncated text is not valid UTF-8")
	}
	if n := utf8.RuneCountInString(got); n != maxTextLen {
		t.Errorf("truncated to %d runes, want %d", n, maxTextLen)
	}
}

func TestRun_MissingTextColumn(t *testing.T) {
	in := "id_str,body\n1,hello\n"
	v := New(&fakeEmbedder{}, 10, zap.NewNop())

	if _, err := v.Run(context.Background(), strings.NewReader(in), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing full_text column")
	}
}

func TestRun_EmbedderErrorAborts(t *testing.T) {
	boom := errors.New("rate limited")
	in := "id_str,full_text\n1,hello\n"
	v := New(&fakeEmbedder{err: boom}, 1, zap.NewNop())

	if _, err := v.Run(context.Background(), strings.NewReader(in), &bytes.Buffer{}); !errors.Is(err, boom) {
		t.Fatalf("expected embedder error, got %v", err)
	}
}
