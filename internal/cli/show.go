package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinelmon/sentinel/internal/engine"
	"github.com/sentinelmon/sentinel/internal/registry"
	"github.com/sentinelmon/sentinel/internal/store"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print cached metrics without fetching anything",
		Long:  "Reads the cache database directly and prints every catalog entry with its cached value, fetch time, and whether the freshness policy still considers it fresh.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			policy := engine.Policy{
				MacroWindow:  a.cfg.Freshness.MacroWindow,
				MarketWindow: a.cfg.Freshness.MarketWindow,
			}
			now := time.Now()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tVALUE\tFETCHED\tFRESHNESS\tSOURCE")

			for _, m := range registry.Metrics() {
				rec, err := st.GetMetric(cmd.Context(), m.Key)
				switch {
				case errors.Is(err, store.ErrNotFound):
					fmt.Fprintf(w, "%s\t-\t-\tnever fetched\t%s\n", m.Key, m.Source)
				case err != nil:
					return fmt.Errorf("read cache: %w", err)
				default:
					fmt.Fprintf(w, "%s\t%.4f\t%s\t%s\t%s\n",
						m.Key, rec.Value, rec.FetchedAt.Local().Format(time.RFC3339),
						policy.Classify(m.Category, rec.FetchedAt, now), m.Source)
				}
			}

			for _, s := range registry.AllSeries() {
				rec, err := st.GetSeries(cmd.Context(), s.Key)
				switch {
				case errors.Is(err, store.ErrNotFound):
					fmt.Fprintf(w, "%s\t-\t-\tnever fetched\t%s\n", s.Key, s.Source)
				case err != nil:
					return fmt.Errorf("read cache: %w", err)
				default:
					fmt.Fprintf(w, "%s\t%d points\t%s\t%s\t%s\n",
						s.Key, len(rec.Points), rec.LastRefreshedAt.Local().Format(time.RFC3339),
						policy.Classify(s.Category, rec.LastRefreshedAt, now), s.Source)
				}
			}

			return w.Flush()
		},
	}
}
