package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sentinelmon/sentinel/internal/analysis"
)

// Color palette shared across views.
var (
	ColorHeader    = lipgloss.Color("14")  // bright cyan
	ColorLabel     = lipgloss.Color("245") // grey
	ColorValue     = lipgloss.Color("15")  // white
	ColorMuted     = lipgloss.Color("240")
	ColorBorder    = lipgloss.Color("240")
	ColorOK        = lipgloss.Color("10") // green
	ColorWarning   = lipgloss.Color("11") // yellow
	ColorCritical  = lipgloss.Color("9")  // red
	ColorHighlight = lipgloss.Color("13") // magenta
)

// Shared styles.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorValue)
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	OKStyle       = lipgloss.NewStyle().Foreground(ColorOK)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Padding(0, 2)
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorHeader).
			Bold(true).
			Underline(true).
			Padding(0, 2)

	AlertBarStyle = lipgloss.NewStyle().
			Foreground(ColorOK).
			Bold(true).
			Padding(0, 1)
	AlertCriticalStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(ColorCritical).
				Bold(true).
				Padding(0, 1)

	TickerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 1)

	StaleStyle = lipgloss.NewStyle().Foreground(ColorWarning)
)

// StatusStyle maps an alert status to its display style.
func StatusStyle(s analysis.Status) lipgloss.Style {
	switch s {
	case analysis.StatusCritical:
		return CriticalStyle
	case analysis.StatusWarning:
		return WarningStyle
	default:
		return OKStyle
	}
}
