package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memeticlab/memeticsearch/internal/domain"
	"github.com/memeticlab/memeticsearch/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		query  string
		size   int
		k      int
		hybrid bool
		byTime bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a semantic or hybrid query against the post index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			if size <= 0 {
				size = a.cfg.Search.DefaultSize
			}
			if k <= 0 {
				k = a.cfg.Search.DefaultK
			}
			mode := domain.ModeSemantic
			if hybrid {
				mode = domain.ModeHybrid
			}

			spec, err := domain.NewQuerySpec(query, mode, size, k, byTime)
			if err != nil {
				return err
			}

			modelID, err := search.LoadModelID(a.cfg.Search.ModelStatePath)
			if err != nil {
				return err
			}

			store, err := a.store()
			if err != nil {
				return err
			}

			engine := search.NewEngine(store, search.NewBuilder(modelID), a.cfg.Index.Name, a.logger)
			result, err := engine.Search(cmd.Context(), spec)
			if err != nil {
				a.logger.Error("search failed", zap.String("query", query), zap.Error(err))
				return err
			}

			for i, h := range result.Hits {
				fmt.Printf("%2d. score=%.4f  %s  @%s  fav=%d rt=%d\n    %s\n",
					i+1, h.Score, h.CreatedAt, h.ScreenName,
					h.FavoriteCount, h.RetweetCount, h.FullText)
			}
			fmt.Printf("%d hits in %s (%s mode)\n", len(result.Hits), result.Took, result.Mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "free-text query (required)")
	_ = cmd.MarkFlagRequired("query")
	cmd.Flags().IntVar(&size, "size", 0, "number of results (default from config)")
	cmd.Flags().IntVar(&k, "k", 0, "neighbor count / recall breadth (default from config)")
	cmd.Flags().BoolVar(&hybrid, "hybrid", false, "fuse semantic and keyword relevance")
	cmd.Flags().BoolVar(&byTime, "by-time", false, "re-sort the candidate pool by creation time")
	return cmd
}
