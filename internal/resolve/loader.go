package resolve

//go:generate mockgen -package=mock -source=loader.go -destination=mock/loader.go

import (
	"context"

	"github.com/matheuskafuri/folio/internal/item"
)

// Loader fetches and normalizes the items of one domain. previous holds the
// items last stored for the domain, fresh or stale, or nil when there are
// none. An empty slice with a nil error counts as an empty result.
type Loader interface {
	Load(ctx context.Context, previous []item.DisplayItem) ([]item.DisplayItem, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, previous []item.DisplayItem) ([]item.DisplayItem, error)

func (f LoaderFunc) Load(ctx context.Context, previous []item.DisplayItem) ([]item.DisplayItem, error) {
	return f(ctx, previous)
}
