package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinelmon/sentinel/internal/analysis"
	"github.com/sentinelmon/sentinel/internal/engine"
	"github.com/sentinelmon/sentinel/internal/registry"
)

const (
	metricColWidth = 22
	valueColWidth  = 24
	statusColWidth = 14

	chartWidth = 44
)

// View renders the current view (Bubble Tea interface).
func (m Model) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateError:
		return CriticalStyle.Render(fmt.Sprintf("Storage error: %v", m.err)) +
			"\n\n" + SubtleStyle.Render("Press q to quit.")
	case ViewStateLoading:
		return m.spin.View() + " Loading dashboard..."
	case ViewStateDashboard:
		return m.renderDashboard()
	default:
		return ""
	}
}

func (m Model) renderDashboard() string {
	var sections []string

	sections = append(sections, m.renderHeader(), m.renderTabBar())

	switch tabNames[m.activeTab] {
	case "US":
		sections = append(sections, m.renderUSView())
	case "SA":
		sections = append(sections, m.renderSAView())
	}

	if len(m.degraded) > 0 {
		sections = append(sections, m.renderDegradedBar())
	}
	if m.headlines != nil {
		sections = append(sections, m.renderTicker())
	}
	sections = append(sections, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("SENTINEL")
	sub := LabelStyle.Render(" Sovereign Debt & Fiscal Dominance Monitor")
	refresh := ""
	if !m.lastRefresh.IsZero() {
		refresh = SubtleStyle.Render(fmt.Sprintf("  refreshed %s", m.lastRefresh.Format("15:04:05")))
	}
	if m.loading {
		refresh += SubtleStyle.Render("  refreshing...")
	}
	return title + sub + refresh
}

func (m Model) renderTabBar() string {
	parts := make([]string, 0, len(tabNames))
	for i, name := range tabNames {
		if i == m.activeTab {
			parts = append(parts, ActiveTabStyle.Render(name))
		} else {
			parts = append(parts, TabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// --- US tab ---

func (m Model) renderUSView() string {
	now := time.Now()

	fiscal := renderStatsTable("FISCAL", m.usFiscalRows(now))
	monetary := renderStatsTable("MONETARY", m.usMonetaryRows(now))
	tables := lipgloss.JoinHorizontal(lipgloss.Top, fiscal, "  ", monetary)

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		BoxStyle.Render(m.renderSeries("US 10Y Yield", registry.SeriesUS10YYield)),
		" ",
		BoxStyle.Render(m.renderSeries("Gold", registry.SeriesGold)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, tables, charts, m.renderUSAlerts())
}

func (m Model) usFiscalRows(now time.Time) []table.Row {
	var rows []table.Row

	debt, debtOK := m.scalar(registry.KeyUSTotalDebt)
	gdp, gdpOK := m.scalar(registry.KeyUSGDP)
	interest, interestOK := m.scalar(registry.KeyUSInterestPayments)
	receipts, receiptsOK := m.scalar(registry.KeyUSTaxReceipts)
	y10, y10OK := m.scalar(registry.KeyUS10YYield)

	// GFDEBTN reports millions; everything else on this tab is billions.
	debtBillions := debt / 1000

	rows = append(rows, m.statRow(registry.KeyUSTotalDebt, "Total Debt",
		FormatBillions(debtBillions, "USD"), OKStyle, now))

	if debtOK && gdpOK {
		ratio := analysis.DebtToGDPRatio(debtBillions, gdp)
		rows = append(rows, m.statRow(registry.KeyUSGDP, "Debt/GDP",
			FormatPercent(ratio), StatusStyle(analysis.DebtGDPStatus(ratio, false)), now))
	}

	if interestOK && receiptsOK {
		ratio := analysis.InterestRevenueRatio(interest, receipts)
		rows = append(rows, m.statRow(registry.KeyUSInterestPayments, "Interest/Revenue",
			FormatPercent(ratio*100), StatusStyle(analysis.InterestRatioStatus(ratio)), now))
	}

	if debtOK && y10OK {
		daily := analysis.DailyInterestCost(debtBillions, y10)
		rows = append(rows, m.statRow(registry.KeyUSTotalDebt, "Daily Interest Cost",
			printer.Sprintf("%.2f B USD", daily), CriticalStyle, now))
	}

	rows = append(rows, m.dayZeroRow(now))
	return rows
}

// dayZeroRow projects when interest consumes all tax revenue, from the
// cached fiscal history series.
func (m Model) dayZeroRow(now time.Time) table.Row {
	interestEnv, iok := m.envelope(registry.SeriesUSInterest)
	receiptsEnv, rok := m.envelope(registry.SeriesUSReceipts)
	if !iok || !rok || !interestEnv.Available() || !receiptsEnv.Available() {
		return table.Row{"Day Zero", SubtleStyle.Render("unavailable"), ""}
	}

	ratios := analysis.RatioSeries(interestEnv.Points, receiptsEnv.Points)
	f, err := analysis.DayZeroForecast(ratios, now)
	switch {
	case errors.Is(err, analysis.ErrInsufficientData):
		return table.Row{"Day Zero", SubtleStyle.Render("insufficient history"), ""}
	case err != nil:
		return table.Row{"Day Zero", SubtleStyle.Render("unavailable"), ""}
	case f.Improving:
		return table.Row{"Day Zero", OKStyle.Render("trend improving"), OKStyle.Render("SAFE")}
	case f.AlreadyPassed:
		return table.Row{"Day Zero", CriticalStyle.Render("passed"), CriticalStyle.Render("CRITICAL")}
	default:
		value := fmt.Sprintf("%s (%.1fy)", f.Date.Format("2006-01"), f.YearsRemaining)
		style := OKStyle
		if f.YearsRemaining < 10 {
			style = WarningStyle
		}
		return table.Row{"Day Zero", style.Render(value), ""}
	}
}

func (m Model) usMonetaryRows(now time.Time) []table.Row {
	var rows []table.Row

	if y10, ok := m.scalar(registry.KeyUS10YYield); ok {
		status := analysis.StatusSafe
		switch {
		case analysis.BondVigilante(y10):
			status = analysis.StatusCritical
		case y10 >= analysis.US10YWarning:
			status = analysis.StatusWarning
		}
		rows = append(rows, m.statRow(registry.KeyUS10YYield, "10Y Yield",
			fmt.Sprintf("%.2f%%", y10), StatusStyle(status), now))
	} else {
		rows = append(rows, m.statRow(registry.KeyUS10YYield, "10Y Yield", "", OKStyle, now))
	}

	if gold, ok := m.scalar(registry.KeyGold); ok {
		rows = append(rows, m.statRow(registry.KeyGold, "Gold",
			printer.Sprintf("$%.0f", gold), OKStyle, now))
	} else {
		rows = append(rows, m.statRow(registry.KeyGold, "Gold", "", OKStyle, now))
	}

	rows = append(rows, m.usdZARRow(now))
	return rows
}

func (m Model) usdZARRow(now time.Time) table.Row {
	zar, ok := m.scalar(registry.KeyUSDZAR)
	if !ok {
		return m.statRow(registry.KeyUSDZAR, "USD/ZAR", "", OKStyle, now)
	}
	status := analysis.StatusSafe
	switch {
	case analysis.CurrencyRisk(zar):
		status = analysis.StatusCritical
	case zar >= analysis.USDZARWarning:
		status = analysis.StatusWarning
	}
	return m.statRow(registry.KeyUSDZAR, "USD/ZAR",
		fmt.Sprintf("%.2f", zar), StatusStyle(status), now)
}

func (m Model) renderUSAlerts() string {
	var alerts []string

	if interest, iok := m.scalar(registry.KeyUSInterestPayments); iok {
		if receipts, rok := m.scalar(registry.KeyUSTaxReceipts); rok {
			if analysis.InterestRevenueRatio(interest, receipts) > analysis.InterestRevenueCritical {
				alerts = append(alerts, "CRITICAL: DEBT SPIRAL DETECTED (Int/Rev > 20%)")
			}
		}
	}
	if y10, ok := m.scalar(registry.KeyUS10YYield); ok && analysis.BondVigilante(y10) {
		alerts = append(alerts, "BOND VIGILANTES ACTIVE (10Y > 5%)")
	}

	return renderAlertBar(alerts)
}

// --- SA tab ---

func (m Model) renderSAView() string {
	now := time.Now()

	fiscal := renderStatsTable("FISCAL", m.saFiscalRows(now))
	monetary := renderStatsTable("MONETARY", m.saMonetaryRows(now))
	tables := lipgloss.JoinHorizontal(lipgloss.Top, fiscal, "  ", monetary)

	charts := lipgloss.JoinHorizontal(lipgloss.Top,
		BoxStyle.Render(m.renderSeries("USD/ZAR", registry.SeriesUSDZAR)),
		" ",
		BoxStyle.Render(m.renderSeries("Gold", registry.SeriesGold)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, tables, charts, m.renderSAAlerts())
}

func (m Model) saFiscalRows(now time.Time) []table.Row {
	var rows []table.Row

	debt, debtOK := m.scalar(registry.KeySADebt)
	revenue, revenueOK := m.scalar(registry.KeySARevenue)
	interest, interestOK := m.scalar(registry.KeySAInterestExpense)
	y10, y10OK := m.scalar(registry.KeySA10YYield)

	rows = append(rows, m.statRow(registry.KeySADebt, "Total Debt",
		FormatBillions(debt, "ZAR"), OKStyle, now))

	if interestOK && revenueOK {
		ratio := analysis.InterestRevenueRatio(interest, revenue)
		rows = append(rows, m.statRow(registry.KeySAInterestExpense, "Interest/Revenue",
			FormatPercent(ratio*100), StatusStyle(analysis.InterestRatioStatus(ratio)), now))
	}

	if debtOK && y10OK {
		daily := analysis.DailyInterestCost(debt, y10)
		rows = append(rows, m.statRow(registry.KeySADebt, "Daily Interest Cost",
			printer.Sprintf("%.2f B ZAR", daily), CriticalStyle, now))
	}

	if growth, ok := m.scalar(registry.KeySAGDPGrowth); ok && y10OK {
		spread := analysis.GrowthSpread(y10, growth)
		rows = append(rows, m.statRow(registry.KeySAGDPGrowth, "r - g Spread",
			fmt.Sprintf("%+.1f pp", spread), StatusStyle(analysis.GrowthSpreadStatus(spread)), now))
	}

	return rows
}

func (m Model) saMonetaryRows(now time.Time) []table.Row {
	var rows []table.Row

	if y10, ok := m.scalar(registry.KeySA10YYield); ok {
		rows = append(rows, m.statRow(registry.KeySA10YYield, "10Y Yield",
			fmt.Sprintf("%.2f%%", y10), OKStyle, now))
	} else {
		rows = append(rows, m.statRow(registry.KeySA10YYield, "10Y Yield", "", OKStyle, now))
	}

	rows = append(rows, m.usdZARRow(now))
	return rows
}

func (m Model) renderSAAlerts() string {
	var alerts []string

	if interest, iok := m.scalar(registry.KeySAInterestExpense); iok {
		if revenue, rok := m.scalar(registry.KeySARevenue); rok {
			if analysis.InterestRevenueRatio(interest, revenue) > analysis.InterestRevenueCritical {
				alerts = append(alerts, "CRITICAL: DEBT SPIRAL DETECTED (Int/Rev > 20%)")
			}
		}
	}
	if y10, yok := m.scalar(registry.KeySA10YYield); yok {
		if growth, gok := m.scalar(registry.KeySAGDPGrowth); gok {
			if analysis.GrowthSpread(y10, growth) > 0 {
				alerts = append(alerts, "CRITICAL: r > g (debt grows faster than the economy)")
			}
		}
	}
	if zar, ok := m.scalar(registry.KeyUSDZAR); ok && analysis.CurrencyRisk(zar) {
		alerts = append(alerts, "CURRENCY CRISIS RISK (USD/ZAR > 19)")
	}

	return renderAlertBar(alerts)
}

// --- shared rendering ---

// scalar returns the envelope value for a scalar key when it is available.
func (m Model) scalar(key string) (float64, bool) {
	env, ok := m.envelope(key)
	if !ok || !env.Available() {
		return 0, false
	}
	return env.Value, true
}

// statRow builds a table row for key: label, styled value (or "unavailable"),
// and the staleness badge.
func (m Model) statRow(key, label, value string, style lipgloss.Style, now time.Time) table.Row {
	env, ok := m.envelope(key)
	if !ok {
		return table.Row{label, SubtleStyle.Render("unavailable"), ""}
	}
	if !env.Available() {
		return table.Row{label, SubtleStyle.Render("unavailable"), AgeBadge(env, now)}
	}
	return table.Row{label, style.Render(value), AgeBadge(env, now)}
}

func (m Model) renderSeries(title, key string) string {
	env, ok := m.envelope(key)
	if !ok || !env.Available() {
		return RenderSeriesPanel(title, nil, chartWidth)
	}
	panel := RenderSeriesPanel(title, env.Points, chartWidth)
	if env.State == engine.StateStale {
		panel += "\n" + StaleStyle.Render(fmt.Sprintf("stale %s", FormatAge(env.Age(time.Now()))))
	}
	return panel
}

func renderStatsTable(title string, rows []table.Row) string {
	columns := []table.Column{
		{Title: "Metric", Width: metricColWidth},
		{Title: "Value", Width: valueColWidth},
		{Title: "", Width: statusColWidth},
	}

	styles := table.DefaultStyles()
	styles.Selected = styles.Cell
	styles.Header = styles.Header.Foreground(ColorLabel).Bold(true)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithStyles(styles),
	)

	return lipgloss.JoinVertical(lipgloss.Left, HeaderStyle.Render(title), t.View())
}

func renderAlertBar(alerts []string) string {
	if len(alerts) == 0 {
		return AlertBarStyle.Render("System Status: STABLE")
	}
	return AlertCriticalStyle.Render(strings.Join(alerts, " | "))
}

func (m Model) renderDegradedBar() string {
	names := make([]string, 0, len(m.degraded))
	for _, s := range m.degraded {
		names = append(names, string(s))
	}
	return WarningStyle.Render(
		fmt.Sprintf("DEGRADED: auth failing for %s (check API keys)", strings.Join(names, ", ")))
}

func (m Model) renderTicker() string {
	if len(m.newsLines) == 0 {
		return TickerStyle.Width(m.width).Render("Fetching market news...")
	}
	line := m.newsLines[m.newsIdx%len(m.newsLines)]
	return TickerStyle.Width(m.width).Render(line)
}

func (m Model) renderHelp() string {
	return SubtleStyle.Render("tab/←→ switch country • r refresh • q quit")
}
