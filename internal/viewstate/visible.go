package viewstate

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"readr/internal/client"
)

// IsRead resolves an item's read state, preferring local changes.
func (s State) IsRead(item client.Item, userID string) bool {
	if read, ok := s.ReadOverrides[item.ID]; ok {
		return read
	}
	return item.IsRead || item.IsReadBy(userID)
}

func (s State) IsStarred(item client.Item) bool {
	if starred, ok := s.StarOverrides[item.ID]; ok {
		return starred
	}
	return item.IsStarred
}

// Visible returns the items the middle pane shows: scoped to the selected
// feed or category, then filtered by unread-only and the search query, then
// sorted by publish date. items is not modified.
func Visible(items []client.Item, feeds []client.Feed, s State, userID string) []client.Item {
	var inCategory map[string]bool
	if s.SelectedFeedID == "" && s.SelectedCategory != "" {
		inCategory = make(map[string]bool)
		for _, f := range feeds {
			if f.Category == s.SelectedCategory {
				inCategory[f.ID] = true
			}
		}
	}
	query := strings.ToLower(s.SearchQuery)

	out := make([]client.Item, 0, len(items))
	for _, item := range items {
		switch {
		case s.SelectedFeedID != "":
			if item.FeedID != s.SelectedFeedID {
				continue
			}
		case inCategory != nil:
			if !inCategory[item.FeedID] {
				continue
			}
		}
		if s.ShowUnreadOnly && s.IsRead(item, userID) {
			continue
		}
		if query != "" && !Matches(item, query) {
			continue
		}
		out = append(out, item)
	}

	slices.SortStableFunc(out, func(a, b client.Item) int {
		c := publishedAt(a).Compare(publishedAt(b))
		if s.SortOrder == SortOldest {
			return c
		}
		return -c
	})
	return out
}

// Matches reports whether the lower-cased query occurs in the item's title,
// summary or author, ignoring case.
func Matches(item client.Item, query string) bool {
	for _, field := range []string{item.Title, item.Summary, item.Author} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func publishedAt(item client.Item) time.Time {
	raw := cmp.Or(item.Published, item.Created)
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
