package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Cache maintenance",
	}
	cmd.AddCommand(newCacheStatsCmd(a), newCacheClearCmd(a))
	return cmd
}

func newCacheStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print cache record counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("cache stats: %w", err)
			}

			cmd.Printf("database: %s\n", a.cfg.Database.Path)
			cmd.Printf("metrics:       %d\n", stats.Metrics)
			cmd.Printf("series:        %d\n", stats.Series)
			cmd.Printf("series points: %d\n", stats.SeriesPoints)
			return nil
		},
	}
}

func newCacheClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached data",
		Long:  "Deletes every cached metric and series point. The next refresh re-fetches everything from the upstream sources.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("cache clear: %w", err)
			}
			cmd.Println("cache cleared")
			return nil
		},
	}
}
