package client

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAPI serves the loader from in-memory records. Methods the loader does
// not call fall through to the nil embedded API and panic.
type fakeAPI struct {
	API

	mu            sync.Mutex
	subscriptions []Subscription
	feeds         []Feed
	categories    []Category
	items         []Item
	itemsErr      error
	categoryErr   error
	created       []string
	refreshed     int
}

func (f *fakeAPI) ListSubscriptions(_ context.Context, userID string) (Page[Subscription], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Subscription
	for _, s := range f.subscriptions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return Page[Subscription]{Items: out}, nil
}

func (f *fakeAPI) ListFeeds(context.Context) (Page[Feed], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Page[Feed]{Items: append([]Feed(nil), f.feeds...)}, nil
}

func (f *fakeAPI) ListCategories(context.Context) (Page[Category], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Page[Category]{Items: append([]Category(nil), f.categories...)}, nil
}

func (f *fakeAPI) ListItems(_ context.Context, feedID string, perPage, page int) (Page[Item], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemsErr != nil {
		return Page[Item]{}, f.itemsErr
	}
	return Page[Item]{Items: append([]Item(nil), f.items...), PerPage: perPage, Page: page}, nil
}

func (f *fakeAPI) CreateCategory(_ context.Context, name, color string) (Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, "category:"+name)
	if f.categoryErr != nil {
		return Category{}, f.categoryErr
	}
	c := Category{ID: "c-" + name, Name: name, Color: color}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeAPI) CreateFeed(_ context.Context, feedURL, title, category string) (Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, "feed:"+feedURL)
	feed := Feed{ID: "f-" + feedURL, URL: feedURL, Title: title}
	f.feeds = append(f.feeds, feed)
	return feed, nil
}

func (f *fakeAPI) CreateSubscription(_ context.Context, feedID, category string) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, "subscription:"+feedID)
	sub := Subscription{ID: "s-" + feedID, UserID: "u1", FeedID: feedID, Category: category}
	f.subscriptions = append(f.subscriptions, sub)
	for i := range f.feeds {
		if f.feeds[i].ID == feedID {
			f.feeds[i].Category = category
		}
	}
	return sub, nil
}

func (f *fakeAPI) DeleteSubscription(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.subscriptions[:0]
	for _, s := range f.subscriptions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	f.subscriptions = kept
	return nil
}

func (f *fakeAPI) RefreshFeeds(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshed++
	return nil
}

func seededAPI() *fakeAPI {
	return &fakeAPI{
		subscriptions: []Subscription{
			{ID: "s1", UserID: "u1", FeedID: "f1", Category: "Tech"},
			{ID: "s2", UserID: "u1", FeedID: "f2", Category: "Tech"},
			{ID: "s3", UserID: "u1", FeedID: "f3"},
		},
		feeds: []Feed{
			{ID: "f1", URL: "https://a.example/feed", Category: "Tech"},
			{ID: "f2", URL: "https://b.example/feed", Category: "Tech"},
			{ID: "f3", URL: "https://c.example/feed"},
			{ID: "f4", URL: "https://other.example/feed"},
		},
		categories: []Category{{ID: "c1", Name: "Tech"}, {ID: "c2", Name: "News"}},
		items: []Item{
			{ID: "i1", FeedID: "f1"},
			{ID: "i2", FeedID: "f1", ReadBy: []string{"u1"}},
			{ID: "i3", FeedID: "f2"},
			{ID: "i4", FeedID: "f3", ReadBy: []string{"u2"}},
		},
	}
}

func TestFeeds_LoadComputesUnreadCounts(t *testing.T) {
	loader := NewFeeds(seededAPI(), "u1")

	snap := loader.Load(context.Background())
	require.Empty(t, snap.Error)
	require.Len(t, snap.Feeds, 3)

	counts := map[string]int{}
	for _, f := range snap.Feeds {
		counts[f.ID] = f.UnreadCount
	}
	require.Equal(t, map[string]int{"f1": 1, "f2": 1, "f3": 1}, counts)

	byName := map[string]int{}
	for _, c := range snap.Categories {
		byName[c.Name] = c.UnreadCount
	}
	require.Equal(t, map[string]int{"Tech": 2, "News": 0}, byName)
	require.Equal(t, snap, loader.Snapshot())
}

func TestFeeds_LoadWithoutSubscriptions(t *testing.T) {
	api := seededAPI()
	loader := NewFeeds(api, "nobody")

	snap := loader.Load(context.Background())
	require.Empty(t, snap.Feeds)
	require.Empty(t, snap.Categories)
	require.Empty(t, snap.Items)
	require.Empty(t, snap.Error)
}

func TestFeeds_LoadErrorKeepsPreviousData(t *testing.T) {
	api := seededAPI()
	loader := NewFeeds(api, "u1")
	first := loader.Load(context.Background())

	api.itemsErr = errors.New("boom")
	snap := loader.Load(context.Background())
	require.Equal(t, loadFailedError, snap.Error)
	require.Equal(t, first.Feeds, snap.Feeds)
}

func TestFeeds_AddFeed(t *testing.T) {
	api := seededAPI()
	loader := NewFeeds(api, "u1")
	loader.Load(context.Background())

	// Existing category matched case-insensitively.
	_, err := loader.AddFeed(context.Background(), "https://d.example/feed", "tech")
	require.NoError(t, err)
	require.Equal(t, []string{"feed:https://d.example/feed", "subscription:f-https://d.example/feed"}, api.created)

	api.created = nil
	api.categoryErr = errors.New("denied")
	feed, err := loader.AddFeed(context.Background(), " https://e.example/feed ", "Science")
	require.NoError(t, err)
	require.Equal(t, "https://e.example/feed", feed.URL)
	require.Equal(t, []string{"category:Science", "feed:https://e.example/feed", "subscription:f-https://e.example/feed"}, api.created)

	snap := loader.Snapshot()
	require.Len(t, snap.Feeds, 5)
}

func TestFeeds_RemoveAndRefresh(t *testing.T) {
	api := seededAPI()
	loader := NewFeeds(api, "u1")
	loader.Load(context.Background())

	require.NoError(t, loader.RemoveFeed(context.Background(), "f2"))
	snap := loader.Snapshot()
	require.Len(t, snap.Feeds, 2)
	for _, f := range snap.Feeds {
		require.NotEqual(t, "f2", f.ID)
	}

	require.NoError(t, loader.Refresh(context.Background()))
	require.Equal(t, 1, api.refreshed)
}
