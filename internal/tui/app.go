package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/folio/internal/browser"
	"github.com/matheuskafuri/folio/internal/item"
	"github.com/matheuskafuri/folio/internal/resolve"
	"github.com/matheuskafuri/folio/internal/transform"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeHome mode = iota
	modeNormal
	modeSearch
	modeFilter
	modeHelp
)

// domainView is the per-domain state: its live session and the last result
// that session published.
type domainView struct {
	domain  resolve.Domain
	session *resolve.Session
	gen     int
	result  resolve.Result
	filter  filterBar
	cursor  int
}

type App struct {
	ctx      context.Context
	resolver *resolve.Resolver
	views    []*domainView
	active   int
	focus    focusPane
	mode     mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model

	previewScroll int
	updateVersion string
	err           error

	// send delivers session updates to the running program.
	send func(tea.Msg)
	open func(item.DisplayItem) error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Context       context.Context
	Resolver      *resolve.Resolver
	Domains       []resolve.Domain
	UpdateVersion string
	// BrowseMode skips the home screen.
	BrowseMode bool
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search titles..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	views := make([]*domainView, 0, len(opts.Domains))
	for _, d := range opts.Domains {
		views = append(views, &domainView{
			domain: d,
			result: resolve.Result{IsLoading: true, Tier: resolve.TierLoading, Categories: []string{item.AllCategory}},
			filter: newFilterBar(),
		})
	}

	startMode := modeHome
	if opts.BrowseMode {
		startMode = modeNormal
	}

	return &App{
		ctx:           ctx,
		resolver:      opts.Resolver,
		views:         views,
		mode:          startMode,
		searchInput:   ti,
		spinner:       sp,
		updateVersion: opts.UpdateVersion,
		send:          func(tea.Msg) {},
		open:          browser.OpenItem,
	}
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	for i := range a.views {
		cmds = append(cmds, a.activate(i))
	}
	return tea.Batch(cmds...)
}

// activate starts a new session for view i. The replaced session is closed
// from a command: Close waits for an in-flight update, and updates are
// delivered by this event loop.
func (a *App) activate(i int, opts ...resolve.ActivateOption) tea.Cmd {
	v := a.views[i]
	old := v.session
	v.gen++
	gen := v.gen
	send := a.send

	v.session = a.resolver.Activate(a.ctx, v.domain, func(res resolve.Result) {
		send(resultMsg{domain: i, gen: gen, result: res})
	}, opts...)

	if old == nil {
		return nil
	}
	return func() tea.Msg {
		old.Close()
		return nil
	}
}

// Close tears down every session.
func (a *App) Close() {
	for _, v := range a.views {
		if v.session != nil {
			v.session.Close()
		}
	}
}

func (a *App) view() *domainView {
	if a.active < len(a.views) {
		return a.views[a.active]
	}
	return nil
}

// visible returns the items of the active domain after the category filter
// and the search query.
func (a *App) visible() []item.DisplayItem {
	v := a.view()
	if v == nil {
		return nil
	}
	items := transform.Filter(v.result.Items, v.filter.active())

	q := strings.ToLower(strings.TrimSpace(a.searchInput.Value()))
	if q == "" {
		return items
	}
	var out []item.DisplayItem
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
		}
	}
	return out
}

func (a *App) loading() bool {
	for _, v := range a.views {
		if v.result.IsLoading {
			return true
		}
	}
	return false
}

func (a *App) clampCursor() {
	v := a.view()
	if v == nil {
		return
	}
	n := len(a.visible())
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (a *App) openCmd(it item.DisplayItem) tea.Cmd {
	open := a.open
	return func() tea.Msg {
		if err := open(it); err != nil {
			return openErrMsg{err: err}
		}
		return nil
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case resultMsg:
		if msg.domain >= len(a.views) {
			return a, nil
		}
		v := a.views[msg.domain]
		if msg.gen != v.gen {
			return a, nil
		}
		v.result = msg.result
		v.filter.setCategories(msg.result.Categories)
		a.clampCursor()
		if msg.result.IsLoading {
			return a, a.spinner.Tick
		}
		return a, nil

	case openErrMsg:
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if a.loading() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	v := a.view()
	if v == nil {
		if msg.String() == "q" {
			return a, tea.Quit
		}
		return a, nil
	}
	items := a.visible()

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && v.cursor < len(items)-1 {
			v.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && v.cursor > 0 {
			v.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "]", "right":
		a.switchDomain(a.active + 1)
		return a, nil
	case "[", "left":
		a.switchDomain(a.active - 1)
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		a.switchDomain(int(msg.String()[0] - '1'))
		return a, nil
	case "o", "enter":
		if v.cursor < len(items) {
			return a, a.openCmd(items[v.cursor])
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "f":
		a.mode = modeFilter
		v.filter.filterMode = true
		v.filter.filterCursor = v.filter.selected
		return a, nil
	case "r":
		if !v.result.IsLoading {
			return a, tea.Batch(a.activate(a.active, resolve.ForceRefresh()), a.spinner.Tick)
		}
		return a, nil
	case "h":
		a.mode = modeHome
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) switchDomain(i int) {
	if i < 0 || i >= len(a.views) || i == a.active {
		return
	}
	a.active = i
	a.previewScroll = 0
	a.clampCursor()
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "enter", "e":
		a.mode = modeNormal
		return a, nil
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		idx := int(s[0] - '1')
		if idx < len(a.views) {
			a.active = idx
			a.mode = modeNormal
			a.clampCursor()
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.clampCursor()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.clampCursor()
		return a, nil
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	a.clampCursor()
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := a.view()
	if v == nil {
		a.mode = modeNormal
		return a, nil
	}
	f := &v.filter

	switch msg.String() {
	case "esc", "f":
		a.mode = modeNormal
		f.filterMode = false
		return a, nil
	case "left", "h":
		if f.filterCursor > 0 {
			f.filterCursor--
		}
		return a, nil
	case "right", "l":
		if f.filterCursor < len(f.categories)-1 {
			f.filterCursor++
		}
		return a, nil
	case " ", "enter":
		f.selectCurrent()
		v.cursor = 0
		return a, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if f.selectIndex(int(msg.String()[0] - '1')) {
			v.cursor = 0
		}
		return a, nil
	}
	return a, nil
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) renderDomainTabs() string {
	var parts []string
	for i, v := range a.views {
		label := fmt.Sprintf("%d %s", i+1, v.domain.Name)
		if i == a.active {
			parts = append(parts, domainTabActiveStyle.Render(label))
		} else {
			parts = append(parts, domainTabStyle.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  folio")
	}

	if a.mode == modeHome {
		entries := make([]homeEntry, 0, len(a.views))
		for _, v := range a.views {
			entries = append(entries, homeEntry{name: v.domain.Name, result: v.result})
		}
		return a.withBottomBar(renderHomeScreen(a.width, a.height, entries, a.updateVersion), "1-9 open  enter browse  q quit")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  h home  q quit")
	}

	v := a.view()
	if v == nil {
		return a.withBottomBar(lipglossCenter("Nothing configured", a.width, a.height), "q quit")
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.35)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	headerLeft := headerStyle.Render("folio")
	headerRight := a.renderDomainTabs()
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := v.filter.render(a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	items := a.visible()
	empty := "No items found"
	switch {
	case v.result.IsLoading && len(v.result.Items) == 0:
		empty = a.spinner.View() + " Loading"
	case v.result.Unconfigured:
		empty = v.domain.Name + " is not configured"
	}

	innerListW := listWidth - 4
	listContent := renderList(listPage{
		items:  items,
		cursor: v.cursor,
		stale:  v.result.IsStale,
		empty:  empty,
	}, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	var selected *item.DisplayItem
	if v.cursor < len(items) {
		selected = &items[v.cursor]
	}
	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(selected, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(len(items), v.filter.active(), v.result, a.width, a.mode == modeSearch)
	if v.result.IsLoading {
		status = a.spinner.View() + " " + status
	}

	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("folio")
	dim := helpDimStyle

	help := title + dim.Render(": keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓      Navigate the list\n" +
		"  [/], ←/→      Switch projects and blog\n" +
		"  1-9           Jump to a section\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open in browser\n" +
		"  r             Refresh from the network\n" +
		"  /             Search titles\n" +
		"  f             Category filter mode\n\n" +
		dim.Render("Filter Mode") + "\n" +
		"  ←/→, h/l      Move between categories\n" +
		"  space/enter   Select category\n" +
		"  1-9           Select category by number\n" +
		"  esc, f        Exit filter mode\n\n" +
		dim.Render("General") + "\n" +
		"  h             Go to home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c     Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	app.send = p.Send
	defer app.Close()
	_, err := p.Run()
	return err
}
