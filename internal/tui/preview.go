package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/folio/internal/item"
)

func renderPreview(it *item.DisplayItem, width, height, scroll int) string {
	if it == nil {
		return lipglossCenter("Select an item", width, height)
	}

	contentWidth := width - 2
	if contentWidth < 10 {
		contentWidth = 10
	}

	title := previewTitleStyle.Width(contentWidth).Render(it.Title)
	meta := it.Category
	if !it.PublishedAt.IsZero() {
		meta += " · " + it.PublishedAt.Format("Jan 2, 2006")
	}
	category := previewCategoryStyle.Render(meta)

	desc := it.Description
	if desc == "" {
		desc = "(No description available)"
	}
	body := previewBodyStyle.Width(contentWidth).Render(wrapText(desc, contentWidth))

	var links []string
	if it.PrimaryURL != "" {
		links = append(links, "Open:   "+it.PrimaryURL)
	}
	if it.SecondaryURL != "" {
		links = append(links, "Source: "+it.SecondaryURL)
	}
	if it.ImageURL != "" {
		links = append(links, "Image:  "+it.ImageURL)
	}
	link := previewLinkStyle.Width(contentWidth).Render(strings.Join(links, "\n"))

	content := lipgloss.JoinVertical(lipgloss.Left, title, category, "", body, "", link)

	lines := strings.Split(content, "\n")
	if scroll > 0 && scroll < len(lines) {
		lines = lines[scroll:]
	}

	if len(lines) < height {
		lines = append(lines, make([]string, height-len(lines))...)
	} else if len(lines) > height {
		lines = lines[:height]
	}

	return strings.Join(lines, "\n")
}

func wrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) > width {
			lines = append(lines, line)
			line = w
		} else {
			line += " " + w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
