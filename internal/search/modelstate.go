package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// modelState is the run state persisted by the provisioning tooling after it
// registers and deploys the embedding model.
type modelState struct {
	ModelID string `json:"model_id"`
}

// LoadModelID reads the deployed model identifier from the persisted run
// state. The identifier is externally supplied, never re-derived here.
func LoadModelID(path string) (string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("read model state %s: %w", path, err)
	}
	var state modelState
	if err := json.Unmarshal(data, &state); err != nil {
		return "", fmt.Errorf("parse model state %s: %w", path, err)
	}
	if state.ModelID == "" {
		return "", fmt.Errorf("model state %s has no model_id", path)
	}
	return state.ModelID, nil
}
