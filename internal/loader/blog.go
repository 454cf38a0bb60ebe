package loader

import (
	"context"
	"sync"
	"time"

	"github.com/jmgilman/go/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/resolve"
	"github.com/matheuskafuri/folio/internal/source"
	"github.com/matheuskafuri/folio/internal/transform"
)

// Feed is a syndication feed whose entries join the blog.
type Feed struct {
	URL      string
	Category string
}

// Blog fetches every configured post page and feed in parallel. Posts and
// feeds that fail keep their previously loaded items so a partial outage
// does not shrink the list.
type Blog struct {
	Pages   source.PageFetcher
	Feeds   source.FeedReader
	Posts   []item.ItemConfig
	Sources []Feed
	Options transform.Options

	// ItemTimeout bounds one post or feed, BatchTimeout the whole load.
	ItemTimeout  time.Duration
	BatchTimeout time.Duration
	// Limit caps concurrent fetches. Zero means no limit.
	Limit int

	Logger *zap.Logger

	mu sync.Mutex
	// origins holds the links each feed produced on its last good read.
	origins map[string][]string
}

var _ resolve.Loader = (*Blog)(nil)

func (b *Blog) Load(ctx context.Context, previous []item.DisplayItem) ([]item.DisplayItem, error) {
	posts := item.Enabled(b.Posts)
	if len(posts) == 0 && len(b.Sources) == 0 {
		return nil, errors.New(errors.CodeInvalidConfig, "no blog posts or feeds are configured")
	}
	log := logger(b.Logger)

	batchCtx := ctx
	if b.BatchTimeout > 0 {
		var cancel context.CancelFunc
		batchCtx, cancel = context.WithTimeout(ctx, b.BatchTimeout)
		defer cancel()
	}

	var g errgroup.Group
	if b.Limit > 0 {
		g.SetLimit(b.Limit)
	}

	pages := make([]*source.Page, len(posts))
	for i, c := range posts {
		g.Go(func() error {
			ictx, cancel := b.itemContext(batchCtx)
			defer cancel()
			p, err := b.Pages.FetchPage(ictx, c.Key)
			if err != nil {
				log.Info("Post fetch failed", zap.String("url", c.Key), zap.Error(err))
				return nil
			}
			pages[i] = p
			return nil
		})
	}

	feeds := make([][]item.DisplayItem, len(b.Sources))
	for i, f := range b.Sources {
		if b.Feeds == nil {
			break
		}
		g.Go(func() error {
			ictx, cancel := b.itemContext(batchCtx)
			defer cancel()
			entries, err := b.Feeds.ReadFeed(ictx, f.URL)
			if err != nil {
				log.Info("Feed read failed", zap.String("url", f.URL), zap.Error(err))
				return nil
			}
			feeds[i] = transform.FeedPosts(entries, f.Category, b.Options)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fetched := make(map[string]*source.Page, len(posts))
	var failed []string
	for i, c := range posts {
		if pages[i] == nil {
			failed = append(failed, c.Key)
			continue
		}
		fetched[c.Key] = pages[i]
	}
	items := transform.Posts(fetched, posts, b.Options)

	var failedFeeds []string
	for i, f := range b.Sources {
		if feeds[i] == nil {
			failedFeeds = append(failedFeeds, f.URL)
			continue
		}
		items = append(items, feeds[i]...)
		b.remember(f.URL, feeds[i])
	}

	if len(items) == 0 {
		if len(failed) > 0 || len(failedFeeds) > 0 {
			return nil, fault.Network(batchCtx.Err(), "all %d blog posts and %d feeds failed", len(failed), len(failedFeeds))
		}
		return nil, fault.Empty("no blog entries loaded")
	}

	items = append(items, carryOver(previous, failed)...)
	items = append(items, b.carryOverFeeds(previous, failedFeeds, posts, items)...)
	log.Debug("Loaded blog",
		zap.Int("fetched", len(fetched)),
		zap.Int("failed", len(failed)),
		zap.Int("failed_feeds", len(failedFeeds)),
		zap.Int("items", len(items)))
	return transform.SortByRecency(dedupe(items)), nil
}

func (b *Blog) remember(feedURL string, items []item.DisplayItem) {
	links := make([]string, 0, len(items))
	for _, it := range items {
		links = append(links, it.Link())
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.origins == nil {
		b.origins = make(map[string][]string)
	}
	b.origins[feedURL] = links
}

// carryOverFeeds returns the previous items of feeds that failed this round.
// A feed with no good read since startup claims every previous item that is
// neither a configured post nor produced this round.
func (b *Blog) carryOverFeeds(previous []item.DisplayItem, failedFeeds []string, posts []item.ItemConfig, produced []item.DisplayItem) []item.DisplayItem {
	if len(previous) == 0 || len(failedFeeds) == 0 {
		return nil
	}

	b.mu.Lock()
	known := make(map[string]bool)
	unknownOrigin := false
	for _, u := range failedFeeds {
		links, ok := b.origins[u]
		if !ok {
			unknownOrigin = true
			continue
		}
		for _, l := range links {
			known[l] = true
		}
	}
	b.mu.Unlock()

	skip := make(map[string]bool, len(posts)+len(produced))
	for _, c := range posts {
		skip[c.Key] = true
	}
	for _, it := range produced {
		skip[it.Link()] = true
	}

	var out []item.DisplayItem
	for _, it := range previous {
		link := it.Link()
		if known[link] || (unknownOrigin && !skip[link] && !skip[it.PrimaryURL]) {
			out = append(out, it)
		}
	}
	return out
}

func (b *Blog) itemContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.ItemTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.ItemTimeout)
}

// carryOver returns the previous items for the given post URLs.
func carryOver(previous []item.DisplayItem, keys []string) []item.DisplayItem {
	if len(previous) == 0 || len(keys) == 0 {
		return nil
	}
	byURL := make(map[string]item.DisplayItem, len(previous))
	for _, it := range previous {
		byURL[it.PrimaryURL] = it
	}
	var out []item.DisplayItem
	for _, k := range keys {
		if it, ok := byURL[k]; ok {
			out = append(out, it)
		}
	}
	return out
}

// dedupe drops items whose link was already seen.
func dedupe(items []item.DisplayItem) []item.DisplayItem {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, it := range items {
		link := it.Link()
		if link != "" && seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, it)
	}
	return out
}
