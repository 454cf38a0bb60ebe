package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/matheuskafuri/folio/internal/cache"
	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/resolve"
)

var testItems = []item.DisplayItem{
	{Title: "folio", Category: "Open Source", PrimaryURL: "https://folio.dev"},
	{Title: "Scaling Go services", Category: "LinkedIn Post", PrimaryURL: "https://example.com/a"},
	{Title: "gofeed internals", Category: "Open Source", PrimaryURL: "https://example.com/b"},
}

func newTestApp(domains ...resolve.Domain) *App {
	if len(domains) == 0 {
		domains = []resolve.Domain{{Name: "projects"}, {Name: "blog"}}
	}
	a := NewApp(RunOpts{Domains: domains, BrowseMode: true})
	a.width, a.height = 120, 40
	return a
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(domain int, items []item.DisplayItem) resultMsg {
	res := resolve.Result{Items: items, Tier: resolve.TierRemote, Categories: []string{"All", "Open Source", "LinkedIn Post"}}
	return resultMsg{domain: domain, result: res}
}

func TestResultMsgUpdatesView(t *testing.T) {
	a := newTestApp()
	a.Update(loaded(0, testItems))

	assert.Len(t, a.visible(), 3)
	assert.Equal(t, []string{"All", "Open Source", "LinkedIn Post"}, a.views[0].filter.categories)
	assert.True(t, a.loading(), "blog has not published yet")
}

func TestStaleGenerationDropped(t *testing.T) {
	a := newTestApp()
	a.views[0].gen = 2

	msg := loaded(0, testItems)
	msg.gen = 1
	a.Update(msg)
	assert.Empty(t, a.visible(), "result of a replaced session is ignored")

	msg.gen = 2
	a.Update(msg)
	assert.Len(t, a.visible(), 3)
}

func TestCategoryFilterKeys(t *testing.T) {
	a := newTestApp()
	a.Update(loaded(0, testItems))

	a.Update(key("f"))
	require.Equal(t, modeFilter, a.mode)
	a.Update(key("3"))
	a.Update(key("esc"))

	got := a.visible()
	require.Len(t, got, 1)
	assert.Equal(t, "Scaling Go services", got[0].Title)

	// selection survives a new result carrying the same category
	a.Update(loaded(0, testItems))
	assert.Equal(t, "LinkedIn Post", a.views[0].filter.active())
}

func TestSearchFiltersTitles(t *testing.T) {
	a := newTestApp()
	a.Update(loaded(0, testItems))

	a.Update(key("/"))
	require.Equal(t, modeSearch, a.mode)
	for _, r := range "GOFEED" {
		a.Update(key(string(r)))
	}
	a.Update(key("enter"))

	got := a.visible()
	require.Len(t, got, 1)
	assert.Equal(t, "gofeed internals", got[0].Title)
	assert.Equal(t, modeNormal, a.mode)
}

func TestCursorClampedOnShrink(t *testing.T) {
	a := newTestApp()
	a.Update(loaded(0, testItems))
	a.Update(key("j"))
	a.Update(key("j"))
	assert.Equal(t, 2, a.views[0].cursor)

	a.Update(loaded(0, testItems[:1]))
	assert.Equal(t, 0, a.views[0].cursor)
}

func TestOpenSelectedItem(t *testing.T) {
	a := newTestApp()
	var opened item.DisplayItem
	a.open = func(it item.DisplayItem) error {
		opened = it
		return nil
	}
	a.Update(loaded(0, testItems))
	a.Update(key("j"))

	_, cmd := a.Update(key("o"))
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	assert.Equal(t, "Scaling Go services", opened.Title)
}

func TestSwitchDomain(t *testing.T) {
	a := newTestApp()
	a.Update(loaded(0, testItems))
	a.Update(key("]"))
	assert.Equal(t, 1, a.active)
	assert.Empty(t, a.visible())

	a.Update(key("1"))
	assert.Equal(t, 0, a.active)
	a.Update(key("["))
	assert.Equal(t, 0, a.active, "no domain before the first")
}

func TestViewRendersStates(t *testing.T) {
	a := newTestApp()
	assert.Contains(t, a.View(), "Loading")

	a.Update(resultMsg{domain: 0, result: resolve.Result{Unconfigured: true, Tier: resolve.TierUnconfigured}})
	assert.Contains(t, a.View(), "projects is not configured")

	a.Update(loaded(0, testItems))
	assert.Contains(t, a.View(), "Scaling Go services")
}

func TestRefreshStartsNewSession(t *testing.T) {
	backend, err := cache.NewMemory(time.Hour, 0)
	require.NoError(t, err)
	c := cache.New(backend)
	t.Cleanup(func() { c.Close() })

	loads := make(chan struct{}, 4)
	d := resolve.Domain{
		Name:     "projects",
		CacheKey: "projects",
		TTL:      time.Hour,
		Loader: resolve.LoaderFunc(func(context.Context, []item.DisplayItem) ([]item.DisplayItem, error) {
			loads <- struct{}{}
			return testItems, nil
		}),
	}

	msgs := make(chan tea.Msg, 16)
	a := NewApp(RunOpts{Resolver: resolve.New(c, zap.NewNop()), Domains: []resolve.Domain{d}, BrowseMode: true})
	a.send = func(m tea.Msg) { msgs <- m }
	t.Cleanup(a.Close)

	a.Init()
	<-a.views[0].session.Done()
	for len(msgs) > 0 {
		a.Update(<-msgs)
	}
	assert.Len(t, a.visible(), 3)
	assert.Equal(t, 1, a.views[0].gen)

	_, cmd := a.Update(key("r"))
	require.NotNil(t, cmd)
	assert.Equal(t, 2, a.views[0].gen)
	<-a.views[0].session.Done()
	assert.Len(t, loads, 2, "forced refresh loads again despite a fresh cache")
}
