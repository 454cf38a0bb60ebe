package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/folio/internal/resolve"
)

var asciiLogo = []string{
	`███████╗ ██████╗ ██╗     ██╗ ██████╗ `,
	`██╔════╝██╔═══██╗██║     ██║██╔═══██╗`,
	`█████╗  ██║   ██║██║     ██║██║   ██║`,
	`██╔══╝  ██║   ██║██║     ██║██║   ██║`,
	`██║     ╚██████╔╝███████╗██║╚██████╔╝`,
	`╚═╝      ╚═════╝ ╚══════╝╚═╝ ╚═════╝ `,
}

type homeEntry struct {
	name   string
	result resolve.Result
}

func domainSummary(res resolve.Result) string {
	switch {
	case res.IsLoading && len(res.Items) == 0:
		return "loading..."
	case res.Unconfigured:
		return "not configured"
	}
	s := fmt.Sprintf("%d items", len(res.Items))
	switch res.Tier {
	case resolve.TierStale:
		s += " · offline copy"
	case resolve.TierSeed:
		s += " · bundled"
	}
	return s
}

func renderHomeScreen(width, height int, entries []homeEntry, updateVersion string) string {
	logoStyle := lipgloss.NewStyle().Foreground(colorAccent)
	keyStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(colorSecondary)

	var lines []string
	for _, l := range asciiLogo {
		lines = append(lines, logoStyle.Render(l))
	}
	lines = append(lines, "", "")

	for i, e := range entries {
		key := keyStyle.Render(fmt.Sprintf("[%d]", i+1))
		label := labelStyle.Render(fmt.Sprintf("%-10s", e.name))
		lines = append(lines, "    "+key+"  "+label+"  "+itemTimeStyle.Render(domainSummary(e.result)))
	}
	lines = append(lines, "")
	lines = append(lines, "    "+keyStyle.Render("[q]")+"  "+labelStyle.Render("Quit"))

	if updateVersion != "" {
		lines = append(lines, "")
		lines = append(lines, "    "+logoStyle.Render("Update available: v"+updateVersion))
	}

	content := strings.Join(lines, "\n")
	contentHeight := strings.Count(content, "\n") + 1

	topPad := (height - contentHeight) / 3
	if topPad < 0 {
		topPad = 0
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Repeat("\n", topPad)+content)
}
