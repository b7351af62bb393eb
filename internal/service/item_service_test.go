package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"readr/internal/model"
	"readr/internal/repository"
	"readr/internal/repository/mock"
	"readr/internal/repository/testutil"
	"readr/internal/service"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newItemService(t *testing.T) (service.ItemService, *itemFixture) {
	t.Helper()
	db := testutil.NewTestDB(t)
	fx := &itemFixture{}
	fx.user = testutil.SeedUser(t, db, "reader@example.com")
	fx.other = testutil.SeedUser(t, db, "other@example.com")
	fx.techFeed = testutil.SeedFeed(t, db, model.Feed{Title: "Tech"})
	fx.newsFeed = testutil.SeedFeed(t, db, model.Feed{Title: "News"})
	fx.hiddenFeed = testutil.SeedFeed(t, db, model.Feed{Title: "Hidden"})
	testutil.SeedSubscription(t, db, fx.user, fx.techFeed, "Tech")
	testutil.SeedSubscription(t, db, fx.user, fx.newsFeed, "")
	testutil.SeedSubscription(t, db, fx.other, fx.hiddenFeed, "")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		published := base.Add(time.Duration(i) * time.Hour)
		fx.techItems = append(fx.techItems, testutil.SeedItem(t, db, model.FeedItem{
			FeedID:      fx.techFeed,
			Title:       fmt.Sprintf("Tech %d", i),
			PublishedAt: &published,
		}))
	}
	published := base.Add(10 * time.Hour)
	fx.newsItem = testutil.SeedItem(t, db, model.FeedItem{
		FeedID:      fx.newsFeed,
		Title:       "Breaking",
		Author:      stringPtr("Gopher Desk"),
		PublishedAt: &published,
	})
	fx.hiddenItem = testutil.SeedItem(t, db, model.FeedItem{FeedID: fx.hiddenFeed, Title: "Secret"})

	items := repository.NewItemRepository(db)
	fx.settings = repository.NewUserSettingsRepository(db)
	return service.NewItemService(items, repository.NewFeedRepository(db), fx.settings), fx
}

type itemFixture struct {
	user, other                    int64
	techFeed, newsFeed, hiddenFeed int64
	techItems                      []int64
	newsItem, hiddenItem           int64
	settings                       repository.UserSettingsRepository
}

func itemIDs(items []model.FeedItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestItemService_List_PagingAndSort(t *testing.T) {
	svc, fx := newItemService(t)
	ctx := context.Background()

	page, err := svc.List(ctx, fx.user, service.ItemListParams{Limit: 2})
	require.NoError(t, err)
	require.True(t, page.HasMore)
	require.Equal(t, []int64{fx.newsItem, fx.techItems[2]}, itemIDs(page.Items))

	page, err = svc.List(ctx, fx.user, service.ItemListParams{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.False(t, page.HasMore)
	require.Equal(t, []int64{fx.techItems[1], fx.techItems[0]}, itemIDs(page.Items))

	page, err = svc.List(ctx, fx.user, service.ItemListParams{Sort: model.SortOldest})
	require.NoError(t, err)
	require.Equal(t, fx.techItems[0], page.Items[0].ID)

	_, err = svc.List(ctx, fx.user, service.ItemListParams{Sort: "sideways"})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestItemService_List_UsesPreferredSort(t *testing.T) {
	svc, fx := newItemService(t)
	ctx := context.Background()

	settings := model.DefaultUserSettings(fx.user)
	settings.DefaultSortOrder = model.SortOldest
	_, err := fx.settings.Upsert(ctx, settings)
	require.NoError(t, err)

	page, err := svc.List(ctx, fx.user, service.ItemListParams{})
	require.NoError(t, err)
	require.Equal(t, fx.techItems[0], page.Items[0].ID)
}

func TestItemService_List_ScopesToSubscriptions(t *testing.T) {
	svc, fx := newItemService(t)
	ctx := context.Background()

	page, err := svc.List(ctx, fx.user, service.ItemListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	require.NotContains(t, itemIDs(page.Items), fx.hiddenItem)

	_, err = svc.List(ctx, fx.user, service.ItemListParams{FeedID: &fx.hiddenFeed})
	require.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Get(ctx, fx.user, fx.hiddenItem)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestItemService_UnreadOnlyAndSearchAreConjunctive(t *testing.T) {
	svc, fx := newItemService(t)
	ctx := context.Background()

	require.NoError(t, svc.SetRead(ctx, fx.user, fx.techItems[0], true))

	page, err := svc.List(ctx, fx.user, service.ItemListParams{Search: "TECH"})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)

	page, err = svc.List(ctx, fx.user, service.ItemListParams{Search: "tech", UnreadOnly: true})
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{fx.techItems[1], fx.techItems[2]}, itemIDs(page.Items))

	page, err = svc.List(ctx, fx.user, service.ItemListParams{Search: "gopher"})
	require.NoError(t, err)
	require.Equal(t, []int64{fx.newsItem}, itemIDs(page.Items))
}

func TestItemService_ReadAndStarToggles(t *testing.T) {
	svc, fx := newItemService(t)
	ctx := context.Background()
	id := fx.techItems[1]

	require.NoError(t, svc.SetRead(ctx, fx.user, id, true))
	require.NoError(t, svc.SetRead(ctx, fx.user, id, true))
	item, err := svc.Get(ctx, fx.user, id)
	require.NoError(t, err)
	require.True(t, item.Read)
	require.Equal(t, []int64{fx.user}, item.ReadBy)

	require.NoError(t, svc.SetRead(ctx, fx.user, id, false))
	require.NoError(t, svc.SetRead(ctx, fx.user, id, false))
	item, err = svc.Get(ctx, fx.user, id)
	require.NoError(t, err)
	require.False(t, item.Read)
	require.Empty(t, item.ReadBy)

	require.NoError(t, svc.SetStarred(ctx, fx.user, id, true))
	page, err := svc.List(ctx, fx.user, service.ItemListParams{StarredOnly: true})
	require.NoError(t, err)
	require.Equal(t, []int64{id}, itemIDs(page.Items))

	require.ErrorIs(t, svc.SetRead(ctx, fx.user, fx.hiddenItem, true), service.ErrNotFound)
}

func TestItemService_MarkAllReadAndCounts(t *testing.T) {
	svc, fx := newItemService(t)
	ctx := context.Background()

	counts, err := svc.UnreadCounts(ctx, fx.user)
	require.NoError(t, err)
	require.Equal(t, 3, counts[fx.techFeed])
	require.Equal(t, 1, counts[fx.newsFeed])

	category := "tech"
	changed, err := svc.MarkAllRead(ctx, fx.user, nil, &category)
	require.NoError(t, err)
	require.Equal(t, int64(3), changed)

	counts, err = svc.UnreadCounts(ctx, fx.user)
	require.NoError(t, err)
	require.Equal(t, map[int64]int{fx.techFeed: 0, fx.newsFeed: 1}, counts)

	stats, err := svc.Stats(ctx, fx.user)
	require.NoError(t, err)
	require.Equal(t, 4, stats.Total)
	require.Equal(t, 1, stats.Unread)

	_, err = svc.MarkAllRead(ctx, fx.user, &fx.hiddenFeed, nil)
	require.ErrorIs(t, err, service.ErrNotFound)

	changed, err = svc.MarkAllRead(ctx, fx.user, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), changed)
}

func TestItemService_SortOrderFromPreferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mock.NewMockItemRepository(ctrl)
	settings := mock.NewMockUserSettingsRepository(ctrl)
	svc := service.NewItemService(items, mock.NewMockFeedRepository(ctrl), settings)
	ctx := context.Background()

	settings.EXPECT().Get(gomock.Any(), int64(7)).Return(model.UserSettings{UserID: 7, DefaultSortOrder: model.SortOldest}, nil)
	items.EXPECT().List(gomock.Any(), repository.ItemListFilter{UserID: 7, Search: " go ", Oldest: true, Limit: 51}).
		Return([]model.FeedItem{{ID: 1}}, nil)

	page, err := svc.List(ctx, 7, service.ItemListParams{Search: " go "})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.False(t, page.HasMore)
}

func TestItemService_SortOrderErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mock.NewMockItemRepository(ctrl)
	settings := mock.NewMockUserSettingsRepository(ctrl)
	svc := service.NewItemService(items, mock.NewMockFeedRepository(ctrl), settings)
	ctx := context.Background()

	_, err := svc.List(ctx, 7, service.ItemListParams{Sort: "sideways"})
	require.ErrorIs(t, err, service.ErrInvalid)

	boom := errors.New("database is locked")
	settings.EXPECT().Get(gomock.Any(), int64(7)).Return(model.UserSettings{}, boom)
	_, err = svc.List(ctx, 7, service.ItemListParams{})
	require.ErrorIs(t, err, boom)

	// An explicit order skips the preference lookup.
	items.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, nil)
	_, err = svc.List(ctx, 7, service.ItemListParams{Sort: model.SortNewest})
	require.NoError(t, err)
}

func TestItemService_UnreadCountsError(t *testing.T) {
	ctrl := gomock.NewController(t)
	items := mock.NewMockItemRepository(ctrl)
	svc := service.NewItemService(items, mock.NewMockFeedRepository(ctrl), nil)

	boom := errors.New("database is locked")
	items.EXPECT().UnreadCounts(gomock.Any(), int64(7)).Return(nil, boom)
	_, err := svc.UnreadCounts(context.Background(), 7)
	require.ErrorIs(t, err, boom)
}
