package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/ingest"
	"github.com/memeticlab/memeticsearch/internal/metrics"
)

func newIngestCmd() *cobra.Command {
	var (
		file      string
		indexName string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Run the batched ingestion pipeline over a JSON Lines file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if indexName != "" {
				a.cfg.Index.Name = indexName
			}

			f, err := os.Open(filepath.Clean(file))
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = f.Close() }()

			reg := prometheus.NewRegistry()
			m := metrics.NewIngest(reg)
			if port := a.cfg.Ingest.MetricsPort; port > 0 {
				srv := metrics.Serve(port, reg, a.logger)
				defer func() {
					shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutCtx)
				}()
			}

			store, err := a.store()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()

			pipe := ingest.New(store, ingest.Options{
				Index:           a.cfg.Index.Name,
				BatchSize:       a.cfg.Ingest.BatchSize,
				MaxAttempts:     a.cfg.Ingest.MaxAttempts,
				RetryDelay:      time.Duration(a.cfg.Ingest.RetryDelaySec) * time.Second,
				MaxFailureRatio: a.cfg.Ingest.MaxFailureRatio,
			}, a.logger, m)

			sum, err := pipe.Run(ctx, f)
			if err != nil {
				a.logger.Error("ingestion aborted",
					zap.Int("submitted", sum.Submitted),
					zap.Int("batches", sum.Batches),
					zap.Error(err),
				)
				return err
			}

			fmt.Printf("ingested %d posts in %d batches (%d rejected, %d bad lines); index now holds %d documents\n",
				sum.Submitted-sum.Failed, sum.Batches, sum.Failed, sum.SkippedLines, sum.IndexDocs)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "input JSON Lines file (required)")
	_ = cmd.MarkFlagRequired("file")
	cmd.Flags().StringVar(&indexName, "index", "", "target index name (default from config)")
	return cmd
}
