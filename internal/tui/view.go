package tui

import (
	"cmp"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"

	"readr/internal/client"
)

type rowKind int

const (
	rowAll rowKind = iota
	rowCategory
	rowFeed
)

type sidebarRow struct {
	kind     rowKind
	category string
	feedID   string
	label    string
	unread   int
	failed   bool
}

var (
	strictPolicy = bluemonday.StrictPolicy()
	blockBreaks  = strings.NewReplacer(
		"</p>", "\n\n", "<br>", "\n", "<br/>", "\n", "<br />", "\n",
		"</li>", "\n", "</h1>", "\n\n", "</h2>", "\n\n", "</h3>", "\n\n",
		"</blockquote>", "\n\n", "</div>", "\n",
	)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// sidebarRows flattens the feed tree: All, each category followed by its
// feeds, then feeds without a category.
func (m Model) sidebarRows() []sidebarRow {
	total := 0
	for _, f := range m.snap.Feeds {
		total += f.UnreadCount
	}
	rows := []sidebarRow{{kind: rowAll, label: "All articles", unread: total}}

	var names []string
	seen := make(map[string]bool)
	for _, c := range m.snap.Categories {
		key := strings.ToLower(c.Name)
		if !seen[key] {
			seen[key] = true
			names = append(names, c.Name)
		}
	}
	for _, f := range m.snap.Feeds {
		key := strings.ToLower(f.Category)
		if f.Category != "" && !seen[key] {
			seen[key] = true
			names = append(names, f.Category)
		}
	}

	placed := make(map[string]bool)
	for _, name := range names {
		var feeds []sidebarRow
		unread := 0
		for _, f := range m.snap.Feeds {
			if !strings.EqualFold(f.Category, name) {
				continue
			}
			placed[f.ID] = true
			unread += f.UnreadCount
			feeds = append(feeds, feedRow(f, name))
		}
		rows = append(rows, sidebarRow{kind: rowCategory, category: name, label: name, unread: unread})
		rows = append(rows, feeds...)
	}
	for _, f := range m.snap.Feeds {
		if !placed[f.ID] {
			rows = append(rows, feedRow(f, ""))
		}
	}
	return rows
}

func feedRow(f client.Feed, category string) sidebarRow {
	return sidebarRow{
		kind:     rowFeed,
		category: category,
		feedID:   f.ID,
		label:    f.DisplayTitle(),
		unread:   f.UnreadCount,
		failed:   f.FetchStatus == "error",
	}
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.adding {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.addModalView())
	}

	bodyHeight := max(m.height-1, 3)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.paneView(paneFeeds, m.state.Panels.Left, bodyHeight, m.sidebarView(m.state.Panels.Left-2, bodyHeight-2)),
		m.paneView(paneItems, m.state.Panels.Middle, bodyHeight, m.itemsView(m.state.Panels.Middle-2, bodyHeight-2)),
		m.paneView(paneReader, m.state.Panels.Right, bodyHeight, m.reader.View()),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView())
}

func (m Model) paneView(p pane, width, height int, content string) string {
	style := m.styles.pane
	if m.focus == p {
		style = m.styles.focusedPane
	}
	return style.
		Width(max(width-2, 0)).
		Height(max(height-2, 0)).
		MaxHeight(height).
		Render(content)
}

func (m Model) sidebarView(width, height int) string {
	rows := m.sidebarRows()
	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		label := row.label
		switch row.kind {
		case rowFeed:
			if row.category != "" {
				label = "  " + label
			}
			if row.failed {
				label += " !"
			}
		case rowCategory:
			label = "▸ " + label
		}
		if row.unread > 0 {
			label = fmt.Sprintf("%s (%d)", label, row.unread)
		}
		label = truncate(label, width)

		switch {
		case i == m.sidebarCursor && m.focus == paneFeeds:
			label = m.styles.cursor.Render(label)
		case m.rowSelected(row):
			label = m.styles.selected.Render(label)
		case row.kind == rowCategory || row.kind == rowAll:
			label = m.styles.heading.Render(label)
		case row.failed:
			label = m.styles.errorText.Render(label)
		}
		lines = append(lines, label)
	}
	return strings.Join(window(lines, m.sidebarCursor, height), "\n")
}

func (m Model) rowSelected(row sidebarRow) bool {
	switch row.kind {
	case rowAll:
		return m.state.SelectedFeedID == "" && m.state.SelectedCategory == ""
	case rowCategory:
		return m.state.SelectedFeedID == "" && m.state.SelectedCategory == row.category
	default:
		return m.state.SelectedFeedID == row.feedID
	}
}

func (m Model) itemsView(width, height int) string {
	var header string
	if m.searching {
		header = m.search.View()
	} else if m.state.SearchQuery != "" {
		header = m.styles.muted.Render("/ " + m.state.SearchQuery)
	}

	items := m.visibleItems()
	if len(items) == 0 {
		empty := "No articles"
		if m.loading {
			empty = "Loading..."
		} else if m.state.ShowUnreadOnly || m.state.SearchQuery != "" {
			empty = "No matching articles"
		}
		return joinNonEmpty(header, m.styles.muted.Render(empty))
	}

	titles := make(map[string]string, len(m.snap.Feeds))
	for _, f := range m.snap.Feeds {
		titles[f.ID] = f.DisplayTitle()
	}

	listHeight := height
	if header != "" {
		listHeight--
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		marker := " "
		if m.state.IsStarred(item) {
			marker = "★"
		} else if !m.state.IsRead(item, m.user.ID) {
			marker = "●"
		}
		meta := cmp.Or(item.FeedTitle, titles[item.FeedID])
		if when := relativeTime(item); when != "" {
			meta += " · " + when
		}
		title := truncate(marker+" "+cmp.Or(item.Title, "(untitled)"), width)
		meta = truncate("  "+meta, width)

		switch {
		case i == m.itemCursor && m.focus == paneItems:
			title = m.styles.cursor.Render(title)
		case item.ID == m.state.SelectedItemID:
			title = m.styles.selected.Render(title)
		case !m.state.IsRead(item, m.user.ID):
			title = m.styles.unread.Render(title)
		}
		lines = append(lines, title+"\n"+m.styles.muted.Render(meta))
	}
	// Each item takes two lines.
	visible := window(lines, m.itemCursor, max(listHeight/2, 1))
	return joinNonEmpty(header, strings.Join(visible, "\n"))
}

func (m Model) statusView() string {
	unread := 0
	for _, f := range m.snap.Feeds {
		unread += f.UnreadCount
	}
	parts := []string{
		fmt.Sprintf("%d feeds", len(m.snap.Feeds)),
		fmt.Sprintf("%d unread", unread),
	}
	switch {
	case m.loading:
		parts = append(parts, "loading")
	case !m.loadedAt.IsZero():
		parts = append(parts, "updated "+humanize.Time(m.loadedAt))
	}
	if m.state.ShowUnreadOnly {
		parts = append(parts, "unread only")
	}
	line := strings.Join(parts, " · ")
	if m.status != "" {
		line += "  " + m.status
	}
	line += "  " + m.styles.muted.Render("a add · / search · r refresh · u unread · m read · s star · d remove · q quit")
	return m.styles.status.Render(truncate(line, max(m.width-2, 0)))
}

func (m Model) addModalView() string {
	lines := []string{
		m.styles.title.Render("Add feed"),
		"",
		m.addURL.View(),
		m.addCategory.View(),
	}
	if m.addErr != "" {
		lines = append(lines, "", m.styles.errorText.Render(m.addErr))
	}
	lines = append(lines, "", m.styles.muted.Render("enter add · tab switch field · esc cancel"))
	return m.styles.modal.Width(min(60, max(m.width-4, 20))).Render(strings.Join(lines, "\n"))
}

// syncReader sizes the reader viewport and fills it with the selected item.
func (m *Model) syncReader() {
	bodyHeight := max(m.height-1, 3)
	width := max(m.state.Panels.Right-2, 1)
	m.reader.Width = width
	m.reader.Height = max(bodyHeight-2, 1)

	item, ok := m.selectedItem()
	if !ok {
		m.reader.SetContent(m.styles.muted.Render("Select an article"))
		return
	}

	meta := []string{}
	if item.FeedTitle != "" {
		meta = append(meta, item.FeedTitle)
	}
	if item.Author != "" {
		meta = append(meta, item.Author)
	}
	if when := relativeTime(item); when != "" {
		meta = append(meta, when)
	}

	wrap := lipgloss.NewStyle().Width(width)
	content := []string{
		wrap.Inherit(m.styles.title).Render(cmp.Or(item.Title, "(untitled)")),
		m.styles.muted.Render(strings.Join(meta, " · ")),
	}
	if item.Link != "" {
		content = append(content, m.styles.muted.Render(truncate(item.Link, width)))
	}
	content = append(content, "", wrap.Render(articleText(item)))
	m.reader.SetContent(strings.Join(content, "\n"))
}

// articleText reduces the best available body to plain text.
func articleText(item client.Item) string {
	raw := cmp.Or(item.ReadableContent, item.Content, item.Summary)
	if raw == "" {
		return "No content. Press enter to open the article in a browser."
	}
	text := html.UnescapeString(strictPolicy.Sanitize(blockBreaks.Replace(raw)))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}

func relativeTime(item client.Item) string {
	t, err := time.Parse(time.RFC3339, cmp.Or(item.Published, item.Created))
	if err != nil {
		return ""
	}
	return humanize.Time(t)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

// window returns the slice of lines of at most height entries that keeps
// cursor visible.
func window(lines []string, cursor, height int) []string {
	if height <= 0 || len(lines) <= height {
		return lines
	}
	start := max(0, cursor-height+1)
	end := min(len(lines), start+height)
	return lines[start:end]
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
