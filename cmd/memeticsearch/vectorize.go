package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memeticlab/memeticsearch/internal/vectorize"
)

func newVectorizeCmd() *cobra.Command {
	var inPath, outPath string

	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Embed a CSV export into the JSON Lines file the ingest command consumes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Embedding.APIKey == "" {
				return fmt.Errorf("embedding.api_key is required for vectorize (set EMBEDDING_API_KEY)")
			}

			in, err := os.Open(filepath.Clean(inPath))
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer func() { _ = in.Close() }()

			out, err := os.Create(filepath.Clean(outPath))
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = out.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, os.Interrupt)
			defer stop()

			embedder := vectorize.NewEmbedder(a.cfg.Embedding)
			v := vectorize.New(embedder, a.cfg.Embedding.BatchSize, a.logger)
			sum, err := v.Run(ctx, in, out)
			if err != nil {
				return err
			}

			fmt.Printf("vectorized %d of %d rows (%d without text) into %s\n",
				sum.RowsWritten, sum.RowsRead, sum.RowsSkipped, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "input CSV file (required)")
	_ = cmd.MarkFlagRequired("in")
	cmd.Flags().StringVar(&outPath, "out", "", "output JSON Lines file (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
