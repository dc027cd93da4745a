package search

import (
	"os"
	"path/filepath"
	"testing"
)

func writeState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model_state.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModelID(t *testing.T) {
	path := writeState(t, `{"model_id":"abc123","task_id":"t1"}`)

	id, err := LoadModelID(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "abc123" {
		t.Errorf("model id = %q, want abc123", id)
	}
}

func TestLoadModelID_MissingFile(t *testing.T) {
	if _, err := LoadModelID(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadModelID_EmptyID(t *testing.T) {
	path := writeState(t, `{"task_id":"t1"}`)
	if _, err := LoadModelID(path); err == nil {
		t.Fatal("expected error for state without model_id")
	}
}
