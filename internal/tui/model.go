// Package tui is the terminal client: a three-pane reader with feeds on the
// left, items in the middle and the selected article on the right.
package tui

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cli/browser"

	"readr/internal/client"
	"readr/internal/viewstate"
)

const (
	// pixelsPerColumn converts the stored web panel widths to columns.
	pixelsPerColumn = 10

	addFailedError = "Failed to add feed"
	emptyURLError  = "Please enter a feed URL"
	badURLError    = "Please enter a valid http(s) URL"
)

type pane int

const (
	paneFeeds pane = iota
	paneItems
	paneReader
)

type Model struct {
	api   client.API
	feeds *client.Feeds
	user  client.User

	state  viewstate.State
	snap   client.Snapshot
	styles styles

	width  int
	height int
	focus  pane

	sidebarCursor int
	itemCursor    int

	search    textinput.Model
	searching bool

	adding      bool
	addURL      textinput.Model
	addCategory textinput.Model
	addField    int
	addErr      string

	reader viewport.Model

	loading  bool
	loadedAt time.Time
	status   string

	openURL func(string) error
}

// New builds the client for an authenticated user. feeds must wrap api.
func New(api client.API, feeds *client.Feeds, user client.User) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search articles"

	addURL := textinput.New()
	addURL.Prompt = "URL: "
	addURL.Placeholder = "https://example.com/feed.xml"

	addCategory := textinput.New()
	addCategory.Prompt = "Category: "
	addCategory.Placeholder = "optional"

	state := viewstate.Initial()
	if user.Theme != "" {
		state = viewstate.Reduce(state, viewstate.SetTheme{Theme: user.Theme})
	}

	return Model{
		api:         api,
		feeds:       feeds,
		user:        user,
		state:       state,
		styles:      newStyles(state.Theme),
		search:      search,
		addURL:      addURL,
		addCategory: addCategory,
		reader:      viewport.New(0, 0),
		loading:     true,
		openURL:     browser.OpenURL,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadCmd(m.feeds), prefsCmd(m.api))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.state = viewstate.Reduce(m.state, viewstate.SetPanelSizes{
			Sizes: viewstate.Fit(m.state.Panels, m.width, viewstate.MinPanelWidth),
		})
		m.syncReader()
		return m, nil

	case loadedMsg:
		m.loading = false
		m.snap = msg.snap
		m.state = m.state.ClearOverrides()
		if msg.snap.Error == "" {
			m.loadedAt = time.Now()
		} else {
			m.status = msg.snap.Error
		}
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		m.clampCursors()
		m.syncReader()
		return m, nil

	case prefsMsg:
		if msg.err != nil {
			m.status = "Failed to load preferences"
			return m, nil
		}
		m.applyPreferences(msg.prefs)
		return m, nil

	case feedAddedMsg:
		if msg.err != nil {
			m.addErr = addErrorText(msg.err)
			return m, nil
		}
		m.closeAddModal()
		m.snap = m.feeds.Snapshot()
		m.status = "Added " + msg.feed.DisplayTitle()
		m.clampCursors()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		} else if msg.status != "" {
			m.status = msg.status
		}
		if msg.reload {
			return m, loadCmd(m.feeds)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.updateAddModal(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}

	cmd := viewstate.KeyCommand(msg.String(), false)
	switch cmd {
	case viewstate.CmdQuit:
		return m, tea.Quit

	case viewstate.CmdNext, viewstate.CmdPrev:
		if m.focus == paneReader {
			var vcmd tea.Cmd
			m.reader, vcmd = m.reader.Update(msg)
			return m, vcmd
		}
		m.moveCursor(cmd == viewstate.CmdNext)
		return m, nil

	case viewstate.CmdFocusNext:
		m.focus = (m.focus + 1) % 3
		return m, nil

	case viewstate.CmdOpen:
		return m.open()

	case viewstate.CmdEscape:
		m.escape()
		return m, nil

	case viewstate.CmdSearch:
		m.searching = true
		m.search.SetValue(m.state.SearchQuery)
		focus := m.search.Focus()
		return m, focus

	case viewstate.CmdAdd:
		m.adding = true
		m.addErr = ""
		m.addField = 0
		m.addURL.SetValue("")
		m.addCategory.SetValue(m.state.SelectedCategory)
		m.addCategory.Blur()
		focus := m.addURL.Focus()
		return m, focus

	case viewstate.CmdRefresh:
		m.loading = true
		m.status = "Refreshing feeds"
		return m, refreshCmd(m.feeds)

	case viewstate.CmdToggleUnreadOnly:
		m.state = viewstate.Reduce(m.state, viewstate.ToggleUnreadOnly{})
		m.clampCursors()
		return m, nil

	case viewstate.CmdToggleRead:
		return m.toggleRead()

	case viewstate.CmdStar:
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		starred := !m.state.IsStarred(item)
		m.state = viewstate.Reduce(m.state, viewstate.SetItemStarred{ItemID: item.ID, Starred: starred})
		return m, starCmd(m.api, item.ID, starred)

	case viewstate.CmdRemoveFeed:
		row, ok := m.currentRow()
		if !ok || row.kind != rowFeed {
			return m, nil
		}
		if m.state.SelectedFeedID == row.feedID {
			m.state = viewstate.Reduce(m.state, viewstate.SelectFeed{})
		}
		return m, removeFeedCmd(m.feeds, row.feedID, row.label)

	case viewstate.CmdShrinkLeft, viewstate.CmdGrowLeft:
		delta := viewstate.ResizeStep
		if cmd == viewstate.CmdShrinkLeft {
			delta = -delta
		}
		return m.resize(viewstate.ResizeLeft(m.state.Panels, m.width, delta, viewstate.MinPanelWidth))

	case viewstate.CmdShrinkMiddle, viewstate.CmdGrowMiddle:
		delta := viewstate.ResizeStep
		if cmd == viewstate.CmdShrinkMiddle {
			delta = -delta
		}
		return m.resize(viewstate.ResizeRight(m.state.Panels, m.width, delta, viewstate.MinPanelWidth))
	}

	if m.focus == paneReader {
		var vcmd tea.Cmd
		m.reader, vcmd = m.reader.Update(msg)
		return m, vcmd
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch viewstate.KeyCommand(msg.String(), true) {
	case viewstate.CmdQuit:
		return m, tea.Quit
	case viewstate.CmdEscape:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.state = viewstate.Reduce(m.state, viewstate.SetSearchQuery{})
		m.clampCursors()
		return m, nil
	case viewstate.CmdSubmit:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.state = viewstate.Reduce(m.state, viewstate.SetSearchQuery{Query: m.search.Value()})
	m.itemCursor = 0
	m.clampCursors()
	return m, cmd
}

func (m Model) updateAddModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "tab" || msg.String() == "shift+tab" {
		m.addField = 1 - m.addField
		if m.addField == 0 {
			m.addCategory.Blur()
			focus := m.addURL.Focus()
			return m, focus
		}
		m.addURL.Blur()
		focus := m.addCategory.Focus()
		return m, focus
	}

	switch viewstate.KeyCommand(msg.String(), true) {
	case viewstate.CmdQuit:
		return m, tea.Quit
	case viewstate.CmdEscape:
		m.closeAddModal()
		return m, nil
	case viewstate.CmdSubmit:
		feedURL := strings.TrimSpace(m.addURL.Value())
		if err := validateFeedURL(feedURL); err != "" {
			m.addErr = err
			return m, nil
		}
		m.addErr = ""
		m.status = "Adding feed"
		return m, addFeedCmd(m.feeds, feedURL, m.addCategory.Value())
	}

	var cmd tea.Cmd
	if m.addField == 0 {
		m.addURL, cmd = m.addURL.Update(msg)
	} else {
		m.addCategory, cmd = m.addCategory.Update(msg)
	}
	return m, cmd
}

func (m *Model) closeAddModal() {
	m.adding = false
	m.addErr = ""
	m.addURL.Blur()
	m.addCategory.Blur()
}

// validateFeedURL returns the message to show for an unusable URL, or "".
func validateFeedURL(raw string) string {
	if raw == "" {
		return emptyURLError
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return badURLError
	}
	return ""
}

func addErrorText(err error) string {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	return addFailedError
}

// open acts on the focused pane: select a sidebar row, open an item in the
// reader, or open an already selected item in the browser.
func (m Model) open() (tea.Model, tea.Cmd) {
	switch m.focus {
	case paneFeeds:
		row, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		switch row.kind {
		case rowAll:
			m.state = viewstate.Reduce(m.state, viewstate.SelectCategory{})
			m.state = viewstate.Reduce(m.state, viewstate.SelectFeed{})
		case rowCategory:
			m.state = viewstate.Reduce(m.state, viewstate.SelectCategory{Name: row.category})
		case rowFeed:
			m.state = viewstate.Reduce(m.state, viewstate.SelectFeed{FeedID: row.feedID})
		}
		m.itemCursor = 0
		m.focus = paneItems
		m.syncReader()
		return m, nil

	case paneItems:
		item, ok := m.currentItem()
		if !ok {
			return m, nil
		}
		if m.state.SelectedItemID == item.ID {
			return m, openLinkCmd(m.openURL, item.Link)
		}
		m.state = viewstate.Reduce(m.state, viewstate.SelectItem{ItemID: item.ID})
		m.reader.GotoTop()
		m.syncReader()
		if m.state.IsRead(item, m.user.ID) {
			return m, nil
		}
		m.state = viewstate.Reduce(m.state, viewstate.MarkItemRead{ItemID: item.ID})
		return m, markReadCmd(m.api, item.ID, true)

	default:
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m, openLinkCmd(m.openURL, item.Link)
	}
}

// escape clears the innermost selection: item, then feed, then category.
func (m *Model) escape() {
	switch {
	case m.state.SelectedItemID != "":
		m.state = viewstate.Reduce(m.state, viewstate.SelectItem{})
		if m.focus == paneReader {
			m.focus = paneItems
		}
	case m.state.SelectedFeedID != "":
		m.state = viewstate.Reduce(m.state, viewstate.SelectFeed{})
		m.focus = paneFeeds
	case m.state.SelectedCategory != "":
		m.state = viewstate.Reduce(m.state, viewstate.SelectCategory{})
		m.focus = paneFeeds
	}
	m.clampCursors()
	m.syncReader()
}

func (m Model) toggleRead() (tea.Model, tea.Cmd) {
	item, ok := m.currentItem()
	if !ok {
		return m, nil
	}
	if m.state.IsRead(item, m.user.ID) {
		m.state = viewstate.Reduce(m.state, viewstate.MarkItemUnread{ItemID: item.ID})
		return m, markReadCmd(m.api, item.ID, false)
	}
	m.state = viewstate.Reduce(m.state, viewstate.MarkItemRead{ItemID: item.ID})
	return m, markReadCmd(m.api, item.ID, true)
}

func (m Model) resize(sizes viewstate.PanelSizes) (tea.Model, tea.Cmd) {
	if m.width == 0 || sizes == m.state.Panels {
		return m, nil
	}
	m.state = viewstate.Reduce(m.state, viewstate.SetPanelSizes{Sizes: sizes})
	m.syncReader()
	return m, savePanelsCmd(m.api, sizes)
}

// applyPreferences loads theme, sort order and stored panel widths.
func (m *Model) applyPreferences(prefs client.Preferences) {
	if prefs.Theme != "" {
		m.state = viewstate.Reduce(m.state, viewstate.SetTheme{Theme: prefs.Theme})
		m.styles = newStyles(m.state.Theme)
	}
	if prefs.DefaultSortOrder != "" {
		m.state = viewstate.Reduce(m.state, viewstate.SetSortOrder{Order: viewstate.SortOrder(prefs.DefaultSortOrder)})
	}
	if prefs.SidebarWidth > 0 && prefs.ArticleWidth > 0 {
		sizes := m.state.Panels
		sizes.Left = prefs.SidebarWidth / pixelsPerColumn
		sizes.Right = prefs.ArticleWidth / pixelsPerColumn
		if m.width > 0 {
			sizes.Middle = max(m.width-sizes.Left-sizes.Right, viewstate.MinPanelWidth)
			sizes = viewstate.Fit(sizes, m.width, viewstate.MinPanelWidth)
		}
		m.state = viewstate.Reduce(m.state, viewstate.SetPanelSizes{Sizes: sizes})
	}
	m.clampCursors()
	m.syncReader()
}

func (m *Model) moveCursor(down bool) {
	step := -1
	if down {
		step = 1
	}
	switch m.focus {
	case paneFeeds:
		m.sidebarCursor += step
	case paneItems:
		m.itemCursor += step
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	rows := len(m.sidebarRows())
	m.sidebarCursor = max(0, min(m.sidebarCursor, rows-1))
	items := len(m.visibleItems())
	m.itemCursor = max(0, min(m.itemCursor, items-1))
}

func (m Model) visibleItems() []client.Item {
	return viewstate.Visible(m.snap.Items, m.snap.Feeds, m.state, m.user.ID)
}

func (m Model) currentItem() (client.Item, bool) {
	items := m.visibleItems()
	if m.focus == paneReader {
		return m.selectedItem()
	}
	if m.itemCursor < 0 || m.itemCursor >= len(items) {
		return client.Item{}, false
	}
	return items[m.itemCursor], true
}

func (m Model) selectedItem() (client.Item, bool) {
	if m.state.SelectedItemID == "" {
		return client.Item{}, false
	}
	for _, item := range m.snap.Items {
		if item.ID == m.state.SelectedItemID {
			return item, true
		}
	}
	return client.Item{}, false
}

func (m Model) currentRow() (sidebarRow, bool) {
	rows := m.sidebarRows()
	if m.sidebarCursor < 0 || m.sidebarCursor >= len(rows) {
		return sidebarRow{}, false
	}
	return rows[m.sidebarCursor], true
}
