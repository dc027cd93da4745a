// memeticsearch loads vectorized social-media posts into a search index and
// answers semantic and hybrid queries against it.
//
// Usage:
//
//	memeticsearch ingest -file posts_with_vectors.jsonl
//	memeticsearch search -query "memetics" -size 5
//	memeticsearch search -query "ai" -size 3 -hybrid -by-time
//	memeticsearch stats
//	memeticsearch vectorize -in post.csv -out posts_with_vectors.jsonl
//
// Env vars:
//
//	ENV                config environment name (default: local)
//	OPENSEARCH_URL     index service base URL (default: http://localhost:9200)
//	EMBEDDING_API_KEY  embedding provider key (vectorize only)
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/config"
	"github.com/memeticlab/memeticsearch/internal/index"
	"github.com/memeticlab/memeticsearch/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "memeticsearch",
		Short:        "Load vectorized posts into a search index and query them",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newIngestCmd(),
		newSearchCmd(),
		newStatsCmd(),
		newVectorizeCmd(),
	)
	return cmd
}

// app bundles the per-invocation config and logger.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func newApp() (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &app{cfg: cfg, logger: log}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// store builds the explicitly owned index client handle for this run.
func (a *app) store() (index.Store, error) {
	return index.NewOpenSearchStore(index.Config{
		URL:            a.cfg.Index.URL,
		VectorDims:     a.cfg.Index.VectorDims,
		RequestTimeout: time.Duration(a.cfg.Index.RequestTimeoutSec) * time.Second,
		PingTimeout:    time.Duration(a.cfg.Index.PingTimeoutSec) * time.Second,
	}, a.logger)
}
