// Package transform maps source records into display items. Every function
// here is pure: identical inputs give identical outputs.
package transform

import (
	"slices"
	"strings"

	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/source"
)

// DefaultPreviewTemplate renders a screenshot of the page at {raw}.
const DefaultPreviewTemplate = "https://image.thum.io/get/width/1280/crop/720/noanimate/{raw}"

type Options struct {
	DefaultCategory string
	// PreviewTemplate builds preview image URLs. Empty disables previews.
	PreviewTemplate string
}

func index(configs []item.ItemConfig) map[string]item.ItemConfig {
	m := make(map[string]item.ItemConfig, len(configs))
	for _, c := range configs {
		if _, dup := m[c.Key]; dup {
			continue
		}
		m[c.Key] = c
	}
	return m
}

func (o Options) category(c item.ItemConfig) string {
	if c.Category != "" {
		return c.Category
	}
	return o.DefaultCategory
}

func title(c item.ItemConfig, native string) string {
	if c.Name != "" {
		return c.Name
	}
	return native
}

// Projects keeps the repositories enabled in configs, in listing order.
func Projects(repos []source.Repo, configs []item.ItemConfig, opts Options) []item.DisplayItem {
	byKey := index(configs)
	out := make([]item.DisplayItem, 0, len(configs))
	for _, r := range repos {
		c, ok := byKey[r.Name]
		if !ok || !c.Enabled {
			continue
		}
		out = append(out, item.DisplayItem{
			Title:        title(c, r.Name),
			Category:     opts.category(c),
			ImageURL:     Preview(opts.PreviewTemplate, r.Homepage),
			PrimaryURL:   withScheme(r.Homepage),
			SecondaryURL: r.HTMLURL,
			Description:  r.Description,
			PublishedAt:  r.UpdatedAt,
		})
	}
	return out
}

// Posts keeps the fetched pages enabled in configs. pages is keyed by the
// configured post URL; iteration follows configs since pages carry no order
// of their own.
func Posts(pages map[string]*source.Page, configs []item.ItemConfig, opts Options) []item.DisplayItem {
	out := make([]item.DisplayItem, 0, len(configs))
	seen := make(map[string]bool, len(configs))
	for _, c := range configs {
		if !c.Enabled || seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		p := pages[c.Key]
		if p == nil {
			continue
		}
		out = append(out, Post(p, c, opts))
	}
	return out
}

// Post converts one fetched page.
func Post(p *source.Page, c item.ItemConfig, opts Options) item.DisplayItem {
	image := p.Image
	if image == "" {
		image = Preview(opts.PreviewTemplate, c.Key)
	}
	return item.DisplayItem{
		Title:       title(c, p.Title),
		Category:    opts.category(c),
		ImageURL:    image,
		PrimaryURL:  c.Key,
		Description: p.Description,
		PublishedAt: p.PublishedAt,
	}
}

// FeedPosts converts feed entries, all under category.
func FeedPosts(posts []source.FeedPost, category string, opts Options) []item.DisplayItem {
	if category == "" {
		category = opts.DefaultCategory
	}
	out := make([]item.DisplayItem, 0, len(posts))
	for _, p := range posts {
		if p.Link == "" {
			continue
		}
		image := p.Image
		if image == "" {
			image = Preview(opts.PreviewTemplate, p.Link)
		}
		out = append(out, item.DisplayItem{
			Title:       p.Title,
			Category:    category,
			ImageURL:    image,
			PrimaryURL:  p.Link,
			Description: p.Description,
			PublishedAt: p.Published,
		})
	}
	return out
}

// Categories returns "All" followed by the distinct categories of items in
// first-seen order.
func Categories(items []item.DisplayItem) []string {
	cats := []string{item.AllCategory}
	seen := map[string]bool{item.AllCategory: true}
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		cats = append(cats, it.Category)
	}
	return cats
}

// Filter returns the items in category. "All" or empty matches everything.
func Filter(items []item.DisplayItem, category string) []item.DisplayItem {
	if category == "" || category == item.AllCategory {
		return items
	}
	out := []item.DisplayItem{}
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// SortByRecency returns a copy of items sorted newest first. Undated items go
// last and ties keep their input order.
func SortByRecency(items []item.DisplayItem) []item.DisplayItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b item.DisplayItem) int {
		switch {
		case a.PublishedAt.IsZero() && b.PublishedAt.IsZero():
			return 0
		case a.PublishedAt.IsZero():
			return 1
		case b.PublishedAt.IsZero():
			return -1
		}
		return b.PublishedAt.Compare(a.PublishedAt)
	})
	return out
}

// Preview builds the preview image URL for target. A missing scheme defaults
// to https. Empty target or template yields "".
func Preview(template, target string) string {
	target = withScheme(target)
	if template == "" || target == "" {
		return ""
	}
	return source.Expand(template, target)
}

func withScheme(u string) string {
	u = strings.TrimSpace(u)
	if u == "" || strings.Contains(u, "://") {
		return u
	}
	return "https://" + u
}
