package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"readr/internal/client"
	"readr/internal/logger"
	"readr/internal/viewstate"
)

const requestTimeout = 30 * time.Second

type loadedMsg struct {
	snap client.Snapshot
	err  error
}

type prefsMsg struct {
	prefs client.Preferences
	err   error
}

type feedAddedMsg struct {
	feed client.Feed
	err  error
}

type actionDoneMsg struct {
	status string
	reload bool
	err    error
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func loadCmd(feeds *client.Feeds) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		return loadedMsg{snap: feeds.Load(ctx)}
	}
}

func refreshCmd(feeds *client.Feeds) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if err := feeds.Refresh(ctx); err != nil {
			logger.Error("refresh failed", "module", "tui", "action", "refresh", "resource", "feeds", "result", "failed", "error", err)
			return loadedMsg{snap: feeds.Snapshot(), err: err}
		}
		return loadedMsg{snap: feeds.Snapshot()}
	}
}

func prefsCmd(api client.API) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		prefs, err := api.Preferences(ctx)
		if err != nil {
			logger.Warn("preferences load failed", "module", "tui", "action", "load", "resource", "preferences", "result", "failed", "error", err)
		}
		return prefsMsg{prefs: prefs, err: err}
	}
}

func addFeedCmd(feeds *client.Feeds, feedURL, category string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		feed, err := feeds.AddFeed(ctx, feedURL, category)
		if err != nil {
			logger.Warn("add feed failed", "module", "tui", "action", "create", "resource", "feed", "result", "failed", "url", feedURL, "error", err)
		}
		return feedAddedMsg{feed: feed, err: err}
	}
}

func removeFeedCmd(feeds *client.Feeds, feedID, title string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if err := feeds.RemoveFeed(ctx, feedID); err != nil {
			logger.Warn("remove feed failed", "module", "tui", "action", "delete", "resource", "subscription", "result", "failed", "feed_id", feedID, "error", err)
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Removed " + title, reload: true}
	}
}

// markReadCmd persists a read toggle. The state already carries the change,
// so success needs no reload.
func markReadCmd(api client.API, itemID string, read bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		var err error
		if read {
			_, err = api.MarkRead(ctx, itemID)
		} else {
			_, err = api.MarkUnread(ctx, itemID)
		}
		if err != nil {
			logger.Warn("mark read failed", "module", "tui", "action", "update", "resource", "item", "result", "failed", "item_id", itemID, "read", read, "error", err)
			return actionDoneMsg{err: err, reload: true}
		}
		return actionDoneMsg{}
	}
}

func starCmd(api client.API, itemID string, starred bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		if _, err := api.SetStarred(ctx, itemID, starred); err != nil {
			logger.Warn("star failed", "module", "tui", "action", "update", "resource", "item", "result", "failed", "item_id", itemID, "error", err)
			return actionDoneMsg{err: err}
		}
		status := "Unstarred"
		if starred {
			status = "Starred"
		}
		return actionDoneMsg{status: status, reload: true}
	}
}

func savePanelsCmd(api client.API, sizes viewstate.PanelSizes) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout()
		defer cancel()
		sidebar := sizes.Left * pixelsPerColumn
		article := sizes.Right * pixelsPerColumn
		if _, err := api.UpdatePreferences(ctx, client.PreferencesUpdate{
			SidebarWidth: &sidebar,
			ArticleWidth: &article,
		}); err != nil {
			logger.Warn("save panel sizes failed", "module", "tui", "action", "update", "resource", "preferences", "result", "failed", "error", err)
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{}
	}
}

func openLinkCmd(open func(string) error, link string) tea.Cmd {
	if link == "" {
		return nil
	}
	return func() tea.Msg {
		if err := open(link); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Opened in browser"}
	}
}
