package tui

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sentinelmon/sentinel/internal/engine"
)

// printer renders thousands-separated figures.
var printer = message.NewPrinter(language.English)

// FormatBillions renders a billions-denominated amount with its currency tag.
func FormatBillions(v float64, currency string) string {
	return printer.Sprintf("%.0f B %s", v, currency)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatAge renders a data age compactly: 42s, 12m, 5h, 3d.
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// AgeBadge annotates a rendered value with its cache state and age. Fresh
// values carry no badge; stale ones show how old the served data is.
func AgeBadge(env engine.Envelope, now time.Time) string {
	switch env.State {
	case engine.StateMissing:
		return SubtleStyle.Render("unavailable")
	case engine.StateStale:
		return StaleStyle.Render(fmt.Sprintf("stale %s", FormatAge(env.Age(now))))
	default:
		return ""
	}
}
