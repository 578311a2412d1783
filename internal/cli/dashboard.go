package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sentinelmon/sentinel/internal/news"
	"github.com/sentinelmon/sentinel/internal/tui"
)

func newDashboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Start the interactive dashboard (the default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDashboard(cmd)
		},
	}
}

func (a *app) runDashboard(cmd *cobra.Command) error {
	if !isTerminal(os.Stdout) {
		return fmt.Errorf("stdout is not a terminal; use 'sentinel refresh' for plain output")
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	eng := a.buildEngine(st)

	ticker := news.NewTicker(
		news.WithFeeds(a.cfg.News.Feeds),
		news.WithRefreshInterval(a.cfg.News.RefreshInterval),
	)

	model := tui.NewModel(cmd.Context(), eng, ticker, a.cfg.Refresh.Interval)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
