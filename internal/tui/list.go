package tui

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/folio/internal/item"
)

// listPage is what renderList needs to draw one domain's items.
type listPage struct {
	items  []item.DisplayItem
	cursor int
	// stale dims every row: the items come from an offline copy or the seed.
	stale bool
	empty string
	now   time.Time
}

// age formats how long ago t was, relative to now.
func age(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case t.Year() == now.Year():
		return t.Format("Jan 2")
	default:
		return t.Format("Jan 2006")
	}
}

// linkHost returns the host an item opens, without a leading "www.".
func linkHost(it item.DisplayItem) string {
	u, err := url.Parse(it.Link())
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// itemMeta is the second row of a list entry: category, host and age.
func itemMeta(it item.DisplayItem, now time.Time) string {
	parts := []string{itemCategoryStyle.Render(it.Category)}
	if host := linkHost(it); host != "" {
		parts = append(parts, itemTimeStyle.Render(host))
	}
	if !it.PublishedAt.IsZero() {
		parts = append(parts, itemTimeStyle.Render(age(it.PublishedAt, now)))
	}
	return "  " + strings.Join(parts, itemTimeStyle.Render(" · "))
}

func renderListItem(it item.DisplayItem, selected, stale bool, width int, now time.Time) string {
	if width < 10 {
		width = 30
	}

	title := truncateStr(it.Title, width-4)
	var style lipgloss.Style
	switch {
	case selected:
		style, title = itemSelectedStyle, "> "+title
	case stale:
		style, title = itemStaleStyle, "  "+title
	default:
		style, title = itemTitleStyle, "  "+title
	}

	meta := itemMeta(it, now)
	if lipgloss.Width(meta) > width {
		meta = "  " + itemCategoryStyle.Render(truncateStr(it.Category, width-2))
	}
	return style.Render(title) + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// window returns the [start, end) range of n rows of which visible fit,
// keeping cursor on screen.
func window(n, cursor, visible int) (int, int) {
	if visible < 1 {
		visible = 1
	}
	start := max(0, cursor-visible+1)
	end := min(n, start+visible)
	return max(0, end-visible), end
}

func renderList(p listPage, height, width int) string {
	if len(p.items) == 0 {
		return lipglossCenter(p.empty, width, height)
	}
	if p.now.IsZero() {
		p.now = time.Now()
	}

	// two rows per item plus a blank line
	start, end := window(len(p.items), p.cursor, height/3)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, renderListItem(p.items[i], i == p.cursor, p.stale, width, p.now))
	}
	return strings.Join(rows, "\n")
}

func lipglossCenter(s string, width, height int) string {
	pad := max(0, (width-lipgloss.Width(s))/2)
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", pad) + s
}
