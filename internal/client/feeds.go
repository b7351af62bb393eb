package client

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"readr/internal/logger"
)

const (
	recentItems     = 100
	defaultColor    = "#6366F1"
	loadFailedError = "Failed to load feeds"
)

// Snapshot is the loaded state of the caller's subscriptions. Unread counts
// are computed from the loaded items.
type Snapshot struct {
	Feeds      []Feed
	Categories []Category
	Items      []Item
	Error      string
}

// Feeds loads and mutates the caller's subscriptions. Every mutation
// reloads; nothing is cached across loads.
type Feeds struct {
	api    API
	userID string

	mu   sync.RWMutex
	snap Snapshot
}

func NewFeeds(api API, userID string) *Feeds {
	return &Feeds{api: api, userID: userID}
}

// Snapshot returns the result of the last Load.
func (f *Feeds) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap
}

// Load fetches subscriptions, feeds, categories and recent items. A failure
// keeps the previous data and sets Error.
func (f *Feeds) Load(ctx context.Context) Snapshot {
	snap, err := f.load(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		logger.Error("feeds load failed", "module", "client", "action", "load", "resource", "feeds", "result", "failed", "error", err)
		f.snap.Error = loadFailedError
		return f.snap
	}
	f.snap = snap
	return f.snap
}

func (f *Feeds) load(ctx context.Context) (Snapshot, error) {
	subs, err := f.api.ListSubscriptions(ctx, f.userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list subscriptions: %w", err)
	}
	if len(subs.Items) == 0 {
		return Snapshot{Feeds: []Feed{}, Categories: []Category{}, Items: []Item{}}, nil
	}
	subscribed := make(map[string]bool, len(subs.Items))
	for _, sub := range subs.Items {
		subscribed[sub.FeedID] = true
	}

	all, err := f.api.ListFeeds(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list feeds: %w", err)
	}
	feeds := make([]Feed, 0, len(subs.Items))
	for _, feed := range all.Items {
		if subscribed[feed.ID] {
			feeds = append(feeds, feed)
		}
	}

	var categories Page[Category]
	var items Page[Item]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		categories, err = f.api.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = f.api.ListItems(gctx, "", recentItems, 1)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	unread := make(map[string]int, len(feeds))
	for _, item := range items.Items {
		if !item.IsReadBy(f.userID) {
			unread[item.FeedID]++
		}
	}
	byCategory := make(map[string]int)
	for i := range feeds {
		feeds[i].UnreadCount = unread[feeds[i].ID]
		if feeds[i].Category != "" {
			byCategory[feeds[i].Category] += feeds[i].UnreadCount
		}
	}
	for i := range categories.Items {
		categories.Items[i].UnreadCount = byCategory[categories.Items[i].Name]
	}

	return Snapshot{
		Feeds:      feeds,
		Categories: categories.Items,
		Items:      items.Items,
	}, nil
}

// AddFeed creates the category when no existing one matches, then the feed
// and the caller's subscription. A failed category create is logged and
// ignored.
func (f *Feeds) AddFeed(ctx context.Context, feedURL, category string) (Feed, error) {
	category = strings.TrimSpace(category)
	if category != "" && !f.hasCategory(category) {
		if _, err := f.api.CreateCategory(ctx, category, defaultColor); err != nil {
			logger.Warn("category create failed", "module", "client", "action", "create", "resource", "category", "result", "failed", "category", category, "error", err)
		}
	}

	feed, err := f.api.CreateFeed(ctx, strings.TrimSpace(feedURL), "", category)
	if err != nil {
		return Feed{}, err
	}
	if _, err := f.api.CreateSubscription(ctx, feed.ID, category); err != nil {
		return Feed{}, err
	}
	f.Load(ctx)
	return feed, nil
}

func (f *Feeds) hasCategory(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.snap.Categories {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// RemoveFeed deletes the caller's subscription to feedID. The feed record
// stays for other subscribers.
func (f *Feeds) RemoveFeed(ctx context.Context, feedID string) error {
	subs, err := f.api.ListSubscriptions(ctx, f.userID)
	if err != nil {
		return err
	}
	for _, sub := range subs.Items {
		if sub.FeedID == feedID {
			if err := f.api.DeleteSubscription(ctx, sub.ID); err != nil {
				return err
			}
			break
		}
	}
	f.Load(ctx)
	return nil
}

// Refresh asks the server to fetch every subscribed feed, then reloads.
func (f *Feeds) Refresh(ctx context.Context) error {
	if err := f.api.RefreshFeeds(ctx); err != nil {
		return err
	}
	f.Load(ctx)
	return nil
}
