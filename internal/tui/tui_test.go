package tui

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"readr/internal/client"
	"readr/internal/viewstate"
)

type fakeAPI struct {
	client.API

	mu      sync.Mutex
	read    map[string]bool
	starred map[string]bool
	prefs   []client.PreferencesUpdate
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{read: map[string]bool{}, starred: map[string]bool{}}
}

func (f *fakeAPI) ListSubscriptions(context.Context, string) (client.Page[client.Subscription], error) {
	return client.Page[client.Subscription]{Items: []client.Subscription{
		{ID: "s1", FeedID: "f1", Category: "Tech"},
		{ID: "s2", FeedID: "f2"},
	}}, nil
}

func (f *fakeAPI) ListFeeds(context.Context) (client.Page[client.Feed], error) {
	return client.Page[client.Feed]{Items: []client.Feed{
		{ID: "f1", Title: "Go Blog", Category: "Tech"},
		{ID: "f2", URL: "https://loose.example/feed.xml"},
	}}, nil
}

func (f *fakeAPI) ListCategories(context.Context) (client.Page[client.Category], error) {
	return client.Page[client.Category]{Items: []client.Category{{ID: "c1", Name: "Tech"}}}, nil
}

func (f *fakeAPI) ListItems(context.Context, string, int, int) (client.Page[client.Item], error) {
	return client.Page[client.Item]{Items: []client.Item{
		{ID: "i1", FeedID: "f1", Title: "Generics", Link: "https://go.dev/generics", Content: "<p>Type <b>params</b></p><p>&amp; more</p>", Published: "2024-01-02T00:00:00Z"},
		{ID: "i2", FeedID: "f1", Title: "Modules", Published: "2024-01-01T00:00:00Z", ReadBy: []string{"u1"}},
		{ID: "i3", FeedID: "f2", Title: "Loose post", Published: "2024-01-03T00:00:00Z"},
	}}, nil
}

func (f *fakeAPI) MarkRead(_ context.Context, id string) (client.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read[id] = true
	return client.Item{ID: id}, nil
}

func (f *fakeAPI) MarkUnread(_ context.Context, id string) (client.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.read[id] = false
	return client.Item{ID: id}, nil
}

func (f *fakeAPI) SetStarred(_ context.Context, id string, starred bool) (client.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starred[id] = starred
	return client.Item{ID: id}, nil
}

func (f *fakeAPI) UpdatePreferences(_ context.Context, update client.PreferencesUpdate) (client.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefs = append(f.prefs, update)
	return client.Preferences{}, nil
}

func newTestModel(t *testing.T) (Model, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	feeds := client.NewFeeds(api, "u1")
	m := New(api, feeds, client.User{ID: "u1"})
	m.openURL = func(string) error { return nil }

	m = update(t, m, tea.WindowSizeMsg{Width: 130, Height: 40})
	m = update(t, m, loadCmd(feeds)())
	return m, api
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func press(t *testing.T, m Model, key string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m, _ = press(t, m, string(r))
	}
	return m
}

func TestModel_SidebarTree(t *testing.T) {
	m, _ := newTestModel(t)

	rows := m.sidebarRows()
	require.Len(t, rows, 4)
	require.Equal(t, rowAll, rows[0].kind)
	require.Equal(t, 2, rows[0].unread)
	require.Equal(t, sidebarRow{kind: rowCategory, category: "Tech", label: "Tech", unread: 1}, rows[1])
	require.Equal(t, "f1", rows[2].feedID)
	require.Equal(t, "Tech", rows[2].category)
	require.Equal(t, "https://loose.example/feed.xml", rows[3].label)
	require.Empty(t, rows[3].category)

	require.Equal(t, viewstate.PanelSizes{Left: 30, Middle: 40, Right: 60}, m.state.Panels)
	require.Contains(t, m.View(), "Go Blog")
}

func TestModel_SelectFeedAndOpenItem(t *testing.T) {
	m, api := newTestModel(t)

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "enter")
	require.Equal(t, "f1", m.state.SelectedFeedID)
	require.Equal(t, paneItems, m.focus)

	items := m.visibleItems()
	require.Equal(t, []string{"i1", "i2"}, []string{items[0].ID, items[1].ID})

	m, cmd := press(t, m, "enter")
	require.Equal(t, "i1", m.state.SelectedItemID)
	require.True(t, m.state.IsRead(items[0], "u1"))
	require.NotNil(t, cmd)
	cmd()
	require.True(t, api.read["i1"])
	require.Contains(t, m.reader.View(), "Generics")

	// A second open of the selected item goes to the browser.
	var opened string
	m.openURL = func(link string) error {
		opened = link
		return nil
	}
	m, cmd = press(t, m, "enter")
	require.NotNil(t, cmd)
	cmd()
	require.Equal(t, "https://go.dev/generics", opened)
}

func TestModel_OpenReadItemSkipsRequest(t *testing.T) {
	m, api := newTestModel(t)
	m.focus = paneItems
	m.state = viewstate.Reduce(m.state, viewstate.SelectFeed{FeedID: "f1"})
	m.itemCursor = 1

	m, cmd := press(t, m, "enter")
	require.Equal(t, "i2", m.state.SelectedItemID)
	require.Nil(t, cmd)
	require.Empty(t, api.read)
}

func TestModel_EscapeClearsInnermostSelection(t *testing.T) {
	m, _ := newTestModel(t)
	m.state = viewstate.Reduce(m.state, viewstate.SelectCategory{Name: "Tech"})
	m.state = viewstate.Reduce(m.state, viewstate.SelectItem{ItemID: "i1"})

	m, _ = press(t, m, "esc")
	require.Empty(t, m.state.SelectedItemID)
	require.Equal(t, "Tech", m.state.SelectedCategory)

	m, _ = press(t, m, "esc")
	require.Empty(t, m.state.SelectedCategory)
	require.Equal(t, paneFeeds, m.focus)
}

func TestModel_ToggleReadAndUnreadOnly(t *testing.T) {
	m, api := newTestModel(t)
	m.focus = paneItems

	m, _ = press(t, m, "u")
	require.True(t, m.state.ShowUnreadOnly)
	require.Len(t, m.visibleItems(), 2)

	// Newest unread first: i3.
	m, cmd := press(t, m, "m")
	cmd()
	require.True(t, api.read["i3"])
	require.Len(t, m.visibleItems(), 1)

	m, _ = press(t, m, "u")
	m.itemCursor = 0
	m, cmd = press(t, m, "m")
	cmd()
	require.False(t, api.read["i3"])
}

func TestModel_StarReloads(t *testing.T) {
	m, api := newTestModel(t)
	m.focus = paneItems

	m, cmd := press(t, m, "s")
	require.True(t, m.state.IsStarred(m.visibleItems()[0]))
	msg := cmd()
	require.True(t, api.starred["i3"])
	require.Equal(t, actionDoneMsg{status: "Starred", reload: true}, msg)

	// A second press before the reload lands toggles back.
	m, cmd = press(t, m, "s")
	require.Equal(t, actionDoneMsg{status: "Unstarred", reload: true}, cmd())
	require.False(t, api.starred["i3"])

	m = update(t, m, loadCmd(m.feeds)())
	require.Empty(t, m.state.StarOverrides)
}

func TestModel_SearchFiltersLive(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, "/")
	require.True(t, m.searching)
	m = typeText(t, m, "gen")
	require.Equal(t, "gen", m.state.SearchQuery)
	require.Len(t, m.visibleItems(), 1)

	m, _ = press(t, m, "esc")
	require.False(t, m.searching)
	require.Empty(t, m.state.SearchQuery)
	require.Len(t, m.visibleItems(), 3)
}

func TestModel_AddFeedValidation(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, "a")
	require.True(t, m.adding)

	m, cmd := press(t, m, "enter")
	require.Nil(t, cmd)
	require.Equal(t, emptyURLError, m.addErr)

	m = typeText(t, m, "ftp://x")
	m, _ = press(t, m, "enter")
	require.Equal(t, badURLError, m.addErr)

	// Keys go to the input, not the key map.
	require.True(t, m.adding)
	require.Contains(t, m.View(), "Add feed")

	m, _ = press(t, m, "esc")
	require.False(t, m.adding)
	require.Empty(t, m.addErr)
}

func TestModel_AddFeedError(t *testing.T) {
	m, _ := newTestModel(t)
	m.adding = true

	m = update(t, m, feedAddedMsg{err: &client.HTTPError{Status: 409, Message: "feed already exists"}})
	require.Equal(t, "feed already exists", m.addErr)
	require.True(t, m.adding)

	m = update(t, m, feedAddedMsg{err: context.DeadlineExceeded})
	require.Equal(t, addFailedError, m.addErr)
}

func TestModel_ResizeSavesPreferences(t *testing.T) {
	m, api := newTestModel(t)

	m, cmd := press(t, m, "]")
	require.Equal(t, 32, m.state.Panels.Left)
	require.Equal(t, 130, m.state.Panels.Total())
	cmd()
	require.Len(t, api.prefs, 1)
	require.Equal(t, 320, *api.prefs[0].SidebarWidth)
	require.Equal(t, m.state.Panels.Right*pixelsPerColumn, *api.prefs[0].ArticleWidth)
}

func TestModel_ApplyPreferences(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, prefsMsg{prefs: client.Preferences{
		Theme:            "dark",
		DefaultSortOrder: "oldest",
		SidebarWidth:     250,
		ArticleWidth:     500,
	}})
	require.Equal(t, "dark", m.state.Theme)
	require.Equal(t, viewstate.SortOldest, m.state.SortOrder)
	require.Equal(t, viewstate.PanelSizes{Left: 25, Middle: 55, Right: 50}, m.state.Panels)
}

func TestArticleText(t *testing.T) {
	text := articleText(client.Item{Content: "<p>Type <b>params</b></p><p>&amp; more</p><script>x()</script>"})
	require.Equal(t, "Type params\n\n& more", text)

	require.True(t, strings.HasPrefix(articleText(client.Item{}), "No content"))
}

func TestValidateFeedURL(t *testing.T) {
	require.Equal(t, emptyURLError, validateFeedURL(""))
	require.Equal(t, badURLError, validateFeedURL("example.com/feed"))
	require.Equal(t, badURLError, validateFeedURL("ftp://example.com/feed"))
	require.Empty(t, validateFeedURL("https://example.com/feed.xml"))
}
