package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/folio/internal/resolve"
)

func tierLabel(res resolve.Result) string {
	switch {
	case res.Unconfigured:
		return "not configured"
	case res.Tier == resolve.TierStale:
		return "offline copy"
	case res.Tier == resolve.TierSeed:
		return "bundled data"
	}
	return ""
}

func renderStatusBar(count int, category string, res resolve.Result, width int, searching bool) string {
	warnStyle := lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	left := fmt.Sprintf(" %d items", count)
	if category != "All" {
		left += " · " + category
	}
	if label := tierLabel(res); label != "" {
		left += " · " + warnStyle.Render(label)
	}
	if res.IsLoading {
		left += " (loading...)"
	}

	right := " h home  / search  f filter  r refresh  q quit "
	if searching {
		right = " esc cancel  enter search "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + fmt.Sprintf("%*s", gap, "") + right

	return statusBarStyle.Width(width).Render(bar)
}

func renderBottomBar(hints string, width int) string {
	right := " " + hints + " "

	gap := width - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(width).Render(fmt.Sprintf("%*s", gap, "") + right)
}
