// Package update checks GitHub releases for a newer folio.
package update

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v67/github"
)

const (
	owner = "matheuskafuri"
	repo  = "folio"
)

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

type Checker struct {
	client *github.Client
}

// NewChecker wraps client; nil uses an unauthenticated default.
func NewChecker(client *github.Client) *Checker {
	if client == nil {
		client = github.NewClient(&http.Client{Timeout: 10 * time.Second})
	}
	return &Checker{client: client}
}

// Check reports the latest release when it differs from currentVersion.
// Returns nil on any error (non-fatal).
func (c *Checker) Check(ctx context.Context, currentVersion string) *Result {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	release, _, err := c.client.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return nil
	}

	latest := strings.TrimPrefix(release.GetTagName(), "v")
	current := strings.TrimPrefix(currentVersion, "v")

	if latest == "" || latest == current || current == "dev" {
		return nil
	}

	return &Result{LatestVersion: latest, URL: release.GetHTMLURL()}
}
