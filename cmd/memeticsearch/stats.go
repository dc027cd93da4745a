package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/memeticlab/memeticsearch/internal/stats"
)

func newStatsCmd() *cobra.Command {
	var indexName string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print monthly post volume for the index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()
			if indexName != "" {
				a.cfg.Index.Name = indexName
			}

			store, err := a.store()
			if err != nil {
				return err
			}

			counts, err := stats.New(store, a.cfg.Index.Name).Monthly(cmd.Context())
			if err != nil {
				return err
			}

			total := 0
			for _, mc := range counts {
				fmt.Printf("%s  %d\n", mc.Month, mc.Count)
				total += mc.Count
			}
			fmt.Printf("total  %d\n", total)
			return nil
		},
	}

	cmd.Flags().StringVar(&indexName, "index", "", "index name (default from config)")
	return cmd
}
