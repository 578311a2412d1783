package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sentinelmon/sentinel/internal/engine"
)

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run one refresh tick and print every envelope",
		Long:  "Resolves the full metric catalog once, fetching whatever is expired, and prints the resulting values with their cache state. Suitable for cron and scripts.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			eng := a.buildEngine(st)
			envelopes, err := eng.ResolveAll(cmd.Context())
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}

			printEnvelopes(cmd, envelopes)

			if degraded := eng.DegradedSources(); len(degraded) > 0 {
				names := make([]string, 0, len(degraded))
				for _, s := range degraded {
					names = append(names, string(s))
				}
				cmd.PrintErrf("warning: auth failing for source(s): %s\n", strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func printEnvelopes(cmd *cobra.Command, envelopes map[string]engine.Envelope) {
	keys := make([]string, 0, len(envelopes))
	for k := range envelopes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tSTATE\tAGE\tSOURCE")
	for _, key := range keys {
		env := envelopes[key]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			key, envelopeValue(env), env.State, envelopeAge(env, now), env.Source)
	}
	_ = w.Flush()
}

// envelopeValue renders the payload: the scalar, or a point count for series.
func envelopeValue(env engine.Envelope) string {
	if !env.Available() {
		return "-"
	}
	if env.Kind == engine.KindSeries {
		return fmt.Sprintf("%d points", len(env.Points))
	}
	return fmt.Sprintf("%.4f", env.Value)
}

func envelopeAge(env engine.Envelope, now time.Time) string {
	if !env.Available() {
		return "-"
	}
	return env.Age(now).Truncate(time.Second).String()
}
