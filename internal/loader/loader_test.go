package loader

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/matheuskafuri/folio/internal/fault"
	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/source"
	"github.com/matheuskafuri/folio/internal/source/mock"
	"github.com/matheuskafuri/folio/internal/transform"
)

func TestProjectsLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mock.NewMockRepoLister(ctrl)
	lister.EXPECT().ListRepos(gomock.Any(), "octo").Return([]source.Repo{
		{Name: "one", HTMLURL: "https://github.com/octo/one"},
		{Name: "two", HTMLURL: "https://github.com/octo/two", Homepage: "two.dev"},
	}, nil)

	p := &Projects{
		Lister:  lister,
		Owner:   "octo",
		Items:   []item.ItemConfig{{Key: "two", Enabled: true}},
		Options: transform.Options{DefaultCategory: "Open Source"},
	}
	items, err := p.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "two", items[0].Title)
	assert.Equal(t, "https://two.dev", items[0].PrimaryURL)
}

func TestProjectsLoadErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	lister := mock.NewMockRepoLister(ctrl)

	p := &Projects{Lister: lister, Items: []item.ItemConfig{{Key: "x", Enabled: true}}}
	_, err := p.Load(context.Background(), nil)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	assert.Equal(t, fault.KindUnconfigured, fault.KindOf(err))

	p.Owner = "octo"
	lister.EXPECT().ListRepos(gomock.Any(), "octo").Return(nil, fault.Network(nil, "down"))
	_, err = p.Load(context.Background(), nil)
	assert.Equal(t, fault.KindNetwork, fault.KindOf(err))

	lister.EXPECT().ListRepos(gomock.Any(), "octo").Return([]source.Repo{{Name: "other"}}, nil)
	_, err = p.Load(context.Background(), nil)
	assert.Equal(t, fault.KindEmptyResult, fault.KindOf(err))
}

const (
	postA = "https://www.linkedin.com/posts/me_activity-1700000000000-a"
	postB = "https://www.linkedin.com/posts/me_activity-1710000000000-b"
	postC = "https://www.linkedin.com/posts/me_activity-1720000000000-c"
)

func blogConfigs() []item.ItemConfig {
	return []item.ItemConfig{
		{Key: postA, Enabled: true},
		{Key: postB, Enabled: true},
		{Key: postC, Enabled: true},
		{Key: "https://disabled", Enabled: false},
	}
}

func TestBlogLoadSortsAndCarriesOver(t *testing.T) {
	ctrl := gomock.NewController(t)
	pages := mock.NewMockPageFetcher(ctrl)
	pages.EXPECT().FetchPage(gomock.Any(), postA).Return(&source.Page{Title: "A", PublishedAt: time.UnixMilli(1700000000000)}, nil)
	pages.EXPECT().FetchPage(gomock.Any(), postB).Return(nil, fault.Network(nil, "proxies down"))
	pages.EXPECT().FetchPage(gomock.Any(), postC).Return(&source.Page{Title: "C", PublishedAt: time.UnixMilli(1720000000000)}, nil)

	previous := []item.DisplayItem{
		{Title: "B (cached)", PrimaryURL: postB, PublishedAt: time.UnixMilli(1710000000000)},
		{Title: "A (cached)", PrimaryURL: postA},
	}

	b := &Blog{
		Pages:       pages,
		Posts:       blogConfigs(),
		Options:     transform.Options{DefaultCategory: "LinkedIn Post"},
		ItemTimeout: time.Second,
	}
	items, err := b.Load(context.Background(), previous)
	require.NoError(t, err)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.Equal(t, []string{"C", "B (cached)", "A"}, titles)
}

func TestBlogLoadAllFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	pages := mock.NewMockPageFetcher(ctrl)
	pages.EXPECT().FetchPage(gomock.Any(), gomock.Any()).Return(nil, fault.Network(nil, "down")).Times(3)

	b := &Blog{Pages: pages, Posts: blogConfigs()}
	_, err := b.Load(context.Background(), []item.DisplayItem{{Title: "old", PrimaryURL: postA}})
	assert.Equal(t, fault.KindNetwork, fault.KindOf(err))
}

func TestBlogLoadIncludesFeeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	feeds := mock.NewMockFeedReader(ctrl)
	feeds.EXPECT().ReadFeed(gomock.Any(), "https://blog.example.com/rss").Return([]source.FeedPost{
		{Title: "Feed post", Link: "https://blog.example.com/1", Published: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Duplicate", Link: "https://blog.example.com/1"},
	}, nil)

	b := &Blog{
		Feeds:   feeds,
		Sources: []Feed{{URL: "https://blog.example.com/rss", Category: "Articles"}},
	}
	items, err := b.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Articles", items[0].Category)
}

func TestBlogLoadFeedFailureKeepsPreviousEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	pages := mock.NewMockPageFetcher(ctrl)
	pages.EXPECT().FetchPage(gomock.Any(), postA).Return(&source.Page{Title: "A"}, nil)
	feeds := mock.NewMockFeedReader(ctrl)
	feeds.EXPECT().ReadFeed(gomock.Any(), "https://blog.example.com/rss").Return(nil, fault.Network(nil, "down"))

	b := &Blog{
		Pages:   pages,
		Feeds:   feeds,
		Posts:   []item.ItemConfig{{Key: postA, Enabled: true}},
		Sources: []Feed{{URL: "https://blog.example.com/rss"}},
	}
	previous := []item.DisplayItem{
		{Title: "A (cached)", PrimaryURL: postA},
		{Title: "Feed 1", PrimaryURL: "https://blog.example.com/1"},
		{Title: "Feed 2", PrimaryURL: "https://blog.example.com/2"},
	}
	items, err := b.Load(context.Background(), previous)
	require.NoError(t, err)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.ElementsMatch(t, []string{"A", "Feed 1", "Feed 2"}, titles)
}

func TestBlogLoadFeedFailureUsesKnownOrigins(t *testing.T) {
	const (
		rss1 = "https://one.example.com/rss"
		rss2 = "https://two.example.com/rss"
	)
	ctrl := gomock.NewController(t)
	feeds := mock.NewMockFeedReader(ctrl)
	gomock.InOrder(
		feeds.EXPECT().ReadFeed(gomock.Any(), rss1).Return([]source.FeedPost{
			{Title: "X", Link: "https://one.example.com/x"},
			{Title: "Y", Link: "https://one.example.com/y"},
		}, nil),
		feeds.EXPECT().ReadFeed(gomock.Any(), rss1).Return(nil, fault.Network(nil, "down")),
	)
	feeds.EXPECT().ReadFeed(gomock.Any(), rss2).Return([]source.FeedPost{
		{Title: "Z", Link: "https://two.example.com/z"},
	}, nil).Times(2)

	b := &Blog{Feeds: feeds, Sources: []Feed{{URL: rss1}, {URL: rss2}}, Limit: 1}
	first, err := b.Load(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, first, 3)

	previous := append(first, item.DisplayItem{Title: "W", PrimaryURL: "https://gone.example.com/w"})
	items, err := b.Load(context.Background(), previous)
	require.NoError(t, err)

	var titles []string
	for _, it := range items {
		titles = append(titles, it.Title)
	}
	assert.ElementsMatch(t, []string{"X", "Y", "Z"}, titles, "only the failed feed's own entries are kept")
}

func TestBlogLoadRunsInParallel(t *testing.T) {
	var inFlight, peak atomic.Int32
	fetch := func(ctx context.Context, target string) (*source.Page, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		inFlight.Add(-1)
		return &source.Page{Title: target}, nil
	}

	b := &Blog{Pages: fetcherFunc(fetch), Posts: blogConfigs()}
	items, err := b.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int32(3), peak.Load())
}

func TestBlogLoadItemTimeout(t *testing.T) {
	fetch := func(ctx context.Context, target string) (*source.Page, error) {
		if target == postB {
			<-ctx.Done()
			return nil, fault.Network(ctx.Err(), "slow")
		}
		return &source.Page{Title: target}, nil
	}

	b := &Blog{Pages: fetcherFunc(fetch), Posts: blogConfigs(), ItemTimeout: 50 * time.Millisecond, BatchTimeout: time.Second}
	start := time.Now()
	items, err := b.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBlogLoadNothingConfigured(t *testing.T) {
	_, err := (&Blog{}).Load(context.Background(), nil)
	assert.Equal(t, fault.KindUnconfigured, fault.KindOf(err))
}

type fetcherFunc func(ctx context.Context, target string) (*source.Page, error)

func (f fetcherFunc) FetchPage(ctx context.Context, target string) (*source.Page, error) {
	return f(ctx, target)
}
