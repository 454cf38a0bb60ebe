package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/folio/internal/item"
)

// filterBar selects a single category. Index 0 is always "All".
type filterBar struct {
	categories   []string
	selected     int
	filterMode   bool
	filterCursor int
}

func newFilterBar() filterBar {
	return filterBar{categories: []string{item.AllCategory}}
}

// setCategories replaces the category list, keeping the selection when the
// selected category still exists.
func (f *filterBar) setCategories(cats []string) {
	current := f.active()
	if len(cats) == 0 {
		cats = []string{item.AllCategory}
	}
	f.categories = cats
	f.selected = 0
	for i, c := range cats {
		if c == current {
			f.selected = i
			break
		}
	}
	if f.filterCursor >= len(cats) {
		f.filterCursor = len(cats) - 1
	}
}

func (f *filterBar) active() string {
	if f.selected < len(f.categories) {
		return f.categories[f.selected]
	}
	return item.AllCategory
}

func (f *filterBar) selectCurrent() {
	if f.filterCursor < len(f.categories) {
		f.selected = f.filterCursor
	}
}

func (f *filterBar) selectIndex(i int) bool {
	if i < 0 || i >= len(f.categories) {
		return false
	}
	f.selected = i
	f.filterCursor = i
	return true
}

func (f *filterBar) render(width int) string {
	sep := tabSeparatorStyle.Render(" · ")

	var parts []string
	for i, c := range f.categories {
		style := tabInactiveStyle
		if i == f.selected {
			style = tabActiveStyle
		}
		label := c
		if f.filterMode && i == f.filterCursor {
			label = "[" + c + "]"
		}
		parts = append(parts, style.Render(label))
	}

	// Build row with · separators, stopping when we'd exceed width
	var row string
	for i, part := range parts {
		candidate := row
		if i > 0 {
			candidate += sep
		}
		candidate += part
		if lipgloss.Width(candidate) > width && row != "" {
			break
		}
		row = candidate
	}

	barStyle := lipgloss.NewStyle().
		Background(colorSurface).
		Width(width).
		PaddingLeft(1)
	return barStyle.Render(row)
}
