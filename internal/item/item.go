package item

import "time"

// AllCategory is the category sentinel that always leads a category list.
const AllCategory = "All"

// DisplayItem is a renderer-ready record derived from a remote source record.
type DisplayItem struct {
	Title        string    `json:"title" yaml:"title"`
	Category     string    `json:"category" yaml:"category"`
	ImageURL     string    `json:"image_url" yaml:"image_url"`
	PrimaryURL   string    `json:"primary_url,omitempty" yaml:"primary_url,omitempty"`
	SecondaryURL string    `json:"secondary_url,omitempty" yaml:"secondary_url,omitempty"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	PublishedAt  time.Time `json:"published_at,omitzero" yaml:"published_at,omitempty"`
}

// Link returns the best URL to open for the item.
func (d DisplayItem) Link() string {
	if d.PrimaryURL != "" {
		return d.PrimaryURL
	}
	return d.SecondaryURL
}

// ItemConfig selects and overrides one expected source record.
// Key is the repository name for projects and the post URL for blog posts.
type ItemConfig struct {
	Key      string `yaml:"key" validate:"required"`
	Name     string `yaml:"name,omitempty"`
	Category string `yaml:"category,omitempty"`
	Enabled  bool   `yaml:"enabled"`
}

// Enabled returns the enabled configs in their configured order.
func Enabled(configs []ItemConfig) []ItemConfig {
	var out []ItemConfig
	for _, c := range configs {
		if c.Enabled {
			out = append(out, c)
		}
	}
	return out
}
