// Package loader implements the per-domain loads behind the resolver: list
// or fetch the remote records, then normalize them.
package loader

import (
	"context"

	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/resolve"
	"github.com/matheuskafuri/folio/internal/source"
	"github.com/matheuskafuri/folio/internal/transform"
)

// Projects loads the configured repositories of one GitHub owner.
type Projects struct {
	Lister  source.RepoLister
	Owner   string
	Items   []item.ItemConfig
	Options transform.Options
	Logger  *zap.Logger
}

var _ resolve.Loader = (*Projects)(nil)

func (p *Projects) Load(ctx context.Context, _ []item.DisplayItem) ([]item.DisplayItem, error) {
	if p.Owner == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "github username is not configured")
	}
	if len(item.Enabled(p.Items)) == 0 {
		return nil, errors.New(errors.CodeInvalidConfig, "no projects are enabled")
	}

	repos, err := p.Lister.ListRepos(ctx, p.Owner)
	if err != nil {
		return nil, err
	}

	items := transform.Projects(repos, p.Items, p.Options)
	if len(items) == 0 {
		return nil, fault.Empty("none of the %d listed repositories is enabled", len(repos))
	}
	logger(p.Logger).Debug("Loaded projects", zap.Int("repos", len(repos)), zap.Int("items", len(items)))
	return items, nil
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
