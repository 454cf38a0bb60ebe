package source

//go:generate mockgen -package=mock -source=github.go -destination=mock/github.go

import (
	"context"
	"net/http"
	"time"

	"github.com/google/go-github/v67/github"
	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/metrics"
)

// Repo is the subset of a repository listing the transform layer needs.
type Repo struct {
	Name        string
	Description string
	HTMLURL     string
	Homepage    string
	Language    string
	Topics      []string
	UpdatedAt   time.Time
}

// RepoLister lists the repositories of an owner.
type RepoLister interface {
	ListRepos(ctx context.Context, owner string) ([]Repo, error)
}

// GitHubLister lists public repositories through the GitHub REST API.
type GitHubLister struct {
	client *github.Client
	logger *zap.Logger
}

var _ RepoLister = (*GitHubLister)(nil)

// NewGitHubLister wraps client; a nil client uses an unauthenticated default.
func NewGitHubLister(client *github.Client, logger *zap.Logger) *GitHubLister {
	if client == nil {
		client = github.NewClient(&http.Client{Timeout: 15 * time.Second})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitHubLister{client: client, logger: logger}
}

// NewGitHubClient builds a go-github client, authenticated when token is set.
func NewGitHubClient(token string, timeout time.Duration) *github.Client {
	client := github.NewClient(&http.Client{Timeout: timeout})
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// ListRepos fetches one page of up to 100 repositories sorted by last update.
// An empty listing is reported as EmptyResult: callers cannot tell "no
// repositories" from a degraded upstream.
func (g *GitHubLister) ListRepos(ctx context.Context, owner string) ([]Repo, error) {
	opts := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	repos, resp, err := g.client.Repositories.ListByUser(ctx, owner, opts)
	if err != nil {
		metrics.RecordSourceRequest("github", "error")
		if resp != nil && resp.Response != nil {
			return nil, fault.Status(resp.StatusCode, "github")
		}
		return nil, fault.Network(err, "listing repositories for %s", owner)
	}

	if len(repos) == 0 {
		metrics.RecordSourceRequest("github", "empty")
		return nil, fault.Empty("no repositories listed for %s", owner)
	}
	metrics.RecordSourceRequest("github", "ok")

	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		out = append(out, convertRepo(r))
	}
	g.logger.Debug("Listed repositories", zap.String("owner", owner), zap.Int("count", len(out)))
	return out, nil
}

func convertRepo(r *github.Repository) Repo {
	repo := Repo{
		Name:        r.GetName(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
		Homepage:    r.GetHomepage(),
		Language:    r.GetLanguage(),
		Topics:      r.Topics,
	}
	if updated := r.GetUpdatedAt(); !updated.IsZero() {
		repo.UpdatedAt = updated.Time
	}
	return repo
}
