// Package viewstate holds the terminal client's UI state: selection,
// filtering, sort order, panel sizes and the key bindings that drive them.
// Everything here is pure; the tui package owns side effects.
package viewstate

type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

type State struct {
	SelectedFeedID   string
	SelectedItemID   string
	SelectedCategory string

	Panels         PanelSizes
	SearchQuery    string
	SortOrder      SortOrder
	ShowUnreadOnly bool
	Theme          string

	// ReadOverrides and StarOverrides hold state changed locally since the
	// last load, keyed by item id.
	ReadOverrides map[string]bool
	StarOverrides map[string]bool
}

// Initial returns the state a fresh session starts from.
func Initial() State {
	return State{
		Panels:    PanelSizes{Left: 30, Middle: 40, Right: 60},
		SortOrder: SortNewest,
		Theme:     "system",
	}
}

type Action interface {
	apply(State) State
}

type SelectFeed struct{ FeedID string }

type SelectItem struct{ ItemID string }

// SelectCategory scopes the item list to feeds labelled Name.
type SelectCategory struct{ Name string }

type SetPanelSizes struct{ Sizes PanelSizes }

type SetSearchQuery struct{ Query string }

type SetSortOrder struct{ Order SortOrder }

type ToggleUnreadOnly struct{}

type MarkItemRead struct{ ItemID string }

type MarkItemUnread struct{ ItemID string }

// SetItemStarred records a star toggle before the server confirms it.
type SetItemStarred struct {
	ItemID  string
	Starred bool
}

type SetTheme struct{ Theme string }

// Reduce returns the state after a. s is never modified.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}

func (a SelectFeed) apply(s State) State {
	s.SelectedFeedID = a.FeedID
	s.SelectedItemID = ""
	s.SelectedCategory = ""
	return s
}

func (a SelectItem) apply(s State) State {
	s.SelectedItemID = a.ItemID
	return s
}

func (a SelectCategory) apply(s State) State {
	s.SelectedCategory = a.Name
	s.SelectedFeedID = ""
	s.SelectedItemID = ""
	return s
}

func (a SetPanelSizes) apply(s State) State {
	s.Panels = a.Sizes
	return s
}

func (a SetSearchQuery) apply(s State) State {
	s.SearchQuery = a.Query
	return s
}

func (a SetSortOrder) apply(s State) State {
	if a.Order != SortNewest && a.Order != SortOldest {
		return s
	}
	s.SortOrder = a.Order
	return s
}

func (ToggleUnreadOnly) apply(s State) State {
	s.ShowUnreadOnly = !s.ShowUnreadOnly
	return s
}

func (a MarkItemRead) apply(s State) State {
	return s.withRead(a.ItemID, true)
}

func (a MarkItemUnread) apply(s State) State {
	return s.withRead(a.ItemID, false)
}

func (a SetItemStarred) apply(s State) State {
	if a.ItemID == "" {
		return s
	}
	s.StarOverrides = withOverride(s.StarOverrides, a.ItemID, a.Starred)
	return s
}

func (a SetTheme) apply(s State) State {
	s.Theme = a.Theme
	return s
}

func (s State) withRead(itemID string, read bool) State {
	if itemID == "" {
		return s
	}
	s.ReadOverrides = withOverride(s.ReadOverrides, itemID, read)
	return s
}

// withOverride copies m with id set to v.
func withOverride(m map[string]bool, id string, v bool) map[string]bool {
	out := make(map[string]bool, len(m)+1)
	for k, old := range m {
		out[k] = old
	}
	out[id] = v
	return out
}

// ClearOverrides drops local read and star state once a reload has picked
// it up.
func (s State) ClearOverrides() State {
	s.ReadOverrides = nil
	s.StarOverrides = nil
	return s
}
