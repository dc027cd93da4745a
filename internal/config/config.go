package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the memeticsearch configuration.
type Config struct {
	Index     IndexConfig     `yaml:"index"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Search    SearchConfig    `yaml:"search"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// IndexConfig holds index service connection settings.
type IndexConfig struct {
	URL               string `yaml:"url"`
	Name              string `yaml:"name"`
	VectorDims        int    `yaml:"vector_dims"`
	RequestTimeoutSec int    `yaml:"request_timeout_sec"`
	PingTimeoutSec    int    `yaml:"ping_timeout_sec"`
}

// IngestConfig holds the batching and retry policy of the ingestion pipeline.
// MaxAttempts and MaxFailureRatio mirror observed production values; they are
// configurable rather than hard-coded because nobody has documented why 3 and
// 0.25 are the right numbers.
type IngestConfig struct {
	BatchSize       int     `yaml:"batch_size"`
	MaxAttempts     int     `yaml:"max_attempts"`
	RetryDelaySec   int     `yaml:"retry_delay_sec"`
	MaxFailureRatio float64 `yaml:"max_failure_ratio"`
	MetricsPort     int     `yaml:"metrics_port"` // 0 = metrics listener disabled
}

// SearchConfig holds query defaults and the model state location.
type SearchConfig struct {
	// ModelStatePath points at the run state written by the provisioning
	// tooling; the model identifier is read from it, never re-derived.
	ModelStatePath string `yaml:"model_state_path"`
	DefaultSize    int    `yaml:"default_size"`
	DefaultK       int    `yaml:"default_k"`
}

// EmbeddingConfig holds the embedding provider settings for the vectorize command.
type EmbeddingConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	BatchSize int    `yaml:"batch_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Index.URL == "" {
		c.Index.URL = "http://localhost:9200"
	}
	if c.Index.Name == "" {
		c.Index.Name = "posts"
	}
	if c.Index.VectorDims <= 0 {
		c.Index.VectorDims = 384
	}
	if c.Index.RequestTimeoutSec <= 0 {
		c.Index.RequestTimeoutSec = 60
	}
	if c.Index.PingTimeoutSec <= 0 {
		c.Index.PingTimeoutSec = 5
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 100
	}
	if c.Ingest.MaxAttempts <= 0 {
		c.Ingest.MaxAttempts = 3
	}
	if c.Ingest.RetryDelaySec <= 0 {
		c.Ingest.RetryDelaySec = 5
	}
	if c.Ingest.MaxFailureRatio <= 0 {
		c.Ingest.MaxFailureRatio = 0.25
	}
	if c.Search.ModelStatePath == "" {
		c.Search.ModelStatePath = "model_state.json"
	}
	if c.Search.DefaultSize <= 0 {
		c.Search.DefaultSize = 10
	}
	if c.Search.DefaultK <= 0 {
		c.Search.DefaultK = 50
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 256
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Index.URL, "http://") && !strings.HasPrefix(c.Index.URL, "https://") {
		return fmt.Errorf("index.url must be an http(s) URL, got %q", c.Index.URL)
	}
	if c.Index.Name == "" {
		return fmt.Errorf("index.name is required")
	}
	if c.Ingest.MaxFailureRatio > 1 {
		return fmt.Errorf("ingest.max_failure_ratio must be within (0, 1], got %g", c.Ingest.MaxFailureRatio)
	}
	if c.Ingest.MetricsPort < 0 || c.Ingest.MetricsPort > 65535 {
		return fmt.Errorf("ingest.metrics_port must be between 0 and 65535, got %d", c.Ingest.MetricsPort)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
