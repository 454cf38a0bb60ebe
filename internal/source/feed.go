package source

//go:generate mockgen -package=mock -source=feed.go -destination=mock/feed.go

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/metrics"
)

// FeedPost is one entry of an RSS or Atom feed.
type FeedPost struct {
	Title       string
	Link        string
	Description string
	Image       string
	Published   time.Time
}

// FeedReader reads the entries of a syndication feed.
type FeedReader interface {
	ReadFeed(ctx context.Context, url string) ([]FeedPost, error)
}

// FeedClient reads RSS and Atom feeds with gofeed.
type FeedClient struct {
	parser *gofeed.Parser
	logger *zap.Logger
}

var _ FeedReader = (*FeedClient)(nil)

func NewFeedClient(client *http.Client, logger *zap.Logger) *FeedClient {
	p := gofeed.NewParser()
	if client != nil {
		p.Client = client
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedClient{parser: p, logger: logger}
}

func (f *FeedClient) ReadFeed(ctx context.Context, url string) ([]FeedPost, error) {
	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		metrics.RecordSourceRequest("feed", "error")
		var httpErr gofeed.HTTPError
		if asHTTPError(err, &httpErr) {
			return nil, fault.Status(httpErr.StatusCode, url)
		}
		return nil, fault.Network(err, "reading feed %s", url)
	}
	if len(feed.Items) == 0 {
		metrics.RecordSourceRequest("feed", "empty")
		return nil, fault.Empty("feed %s has no entries", url)
	}
	metrics.RecordSourceRequest("feed", "ok")

	posts := make([]FeedPost, 0, len(feed.Items))
	for _, it := range feed.Items {
		var pub time.Time
		if it.PublishedParsed != nil {
			pub = *it.PublishedParsed
		} else if it.UpdatedParsed != nil {
			pub = *it.UpdatedParsed
		}

		desc := it.Description
		if desc == "" {
			desc = it.Content
		}

		var image string
		if it.Image != nil {
			image = it.Image.URL
		} else if len(it.Enclosures) > 0 && strings.HasPrefix(it.Enclosures[0].Type, "image/") {
			image = it.Enclosures[0].URL
		}

		posts = append(posts, FeedPost{
			Title:       strings.TrimSpace(it.Title),
			Link:        it.Link,
			Description: truncate(stripHTML(desc), 300),
			Image:       image,
			Published:   pub.UTC(),
		})
	}
	f.logger.Debug("Read feed", zap.String("url", url), zap.Int("count", len(posts)))
	return posts, nil
}

func asHTTPError(err error, target *gofeed.HTTPError) bool {
	switch e := err.(type) {
	case gofeed.HTTPError:
		*target = e
		return true
	case *gofeed.HTTPError:
		*target = *e
		return true
	}
	return false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func stripHTML(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
