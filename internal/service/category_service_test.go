package service_test

import (
	"context"
	"testing"

	"readr/internal/model"
	"readr/internal/repository"
	"readr/internal/repository/testutil"
	"readr/internal/service"

	"github.com/stretchr/testify/require"
)

func TestCategoryService_CreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.SeedUser(t, db, "user@example.com")
	svc := service.NewCategoryService(repository.NewCategoryRepository(db), repository.NewSubscriptionRepository(db))

	created, err := svc.Create(ctx, userID, " Tech ", stringPtr("#ff0000"))
	require.NoError(t, err)
	require.Equal(t, "Tech", created.Name)
	require.Equal(t, "#ff0000", *created.Color)

	_, err = svc.Create(ctx, userID, "TECH", nil)
	require.ErrorIs(t, err, service.ErrConflict)

	_, err = svc.Create(ctx, userID, "   ", nil)
	require.ErrorIs(t, err, service.ErrInvalid)

	// Names are unique per user only.
	otherID := testutil.SeedUser(t, db, "other@example.com")
	_, err = svc.Create(ctx, otherID, "tech", nil)
	require.NoError(t, err)
}

func TestCategoryService_RenameRelabelsSubscriptions(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.SeedUser(t, db, "user@example.com")
	subs := repository.NewSubscriptionRepository(db)
	svc := service.NewCategoryService(repository.NewCategoryRepository(db), subs)

	feedID := testutil.SeedFeed(t, db, model.Feed{})
	categoryID := testutil.SeedCategory(t, db, userID, "Tech")
	subID := testutil.SeedSubscription(t, db, userID, feedID, "Tech")
	testutil.SeedCategory(t, db, userID, "News")

	_, err := svc.Update(ctx, userID, categoryID, stringPtr("news"), nil)
	require.ErrorIs(t, err, service.ErrConflict)

	// A case-only rename is not a conflict with itself.
	updated, err := svc.Update(ctx, userID, categoryID, stringPtr("TECH"), nil)
	require.NoError(t, err)
	require.Equal(t, "TECH", updated.Name)

	updated, err = svc.Update(ctx, userID, categoryID, stringPtr("Programming"), stringPtr("#00ff00"))
	require.NoError(t, err)
	require.Equal(t, "Programming", updated.Name)

	sub, err := subs.GetByID(ctx, subID)
	require.NoError(t, err)
	require.Equal(t, "Programming", sub.Category)

	require.NoError(t, svc.Delete(ctx, userID, categoryID))
	sub, err = subs.GetByID(ctx, subID)
	require.NoError(t, err)
	require.Empty(t, sub.Category)

	_, err = svc.Get(ctx, userID, categoryID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestCategoryService_OtherUsersCategoryIsHidden(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, db, "owner@example.com")
	intruder := testutil.SeedUser(t, db, "intruder@example.com")
	svc := service.NewCategoryService(repository.NewCategoryRepository(db), repository.NewSubscriptionRepository(db))

	categoryID := testutil.SeedCategory(t, db, owner, "Private")

	_, err := svc.Get(ctx, intruder, categoryID)
	require.ErrorIs(t, err, service.ErrNotFound)
	_, err = svc.Update(ctx, intruder, categoryID, stringPtr("Mine"), nil)
	require.ErrorIs(t, err, service.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, intruder, categoryID), service.ErrNotFound)
}

func TestCategoryService_ListIncludesUnreadCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.SeedUser(t, db, "user@example.com")
	svc := service.NewCategoryService(repository.NewCategoryRepository(db), repository.NewSubscriptionRepository(db))

	testutil.SeedCategory(t, db, userID, "Tech")
	a := testutil.SeedFeed(t, db, model.Feed{})
	b := testutil.SeedFeed(t, db, model.Feed{})
	testutil.SeedSubscription(t, db, userID, a, "Tech")
	testutil.SeedSubscription(t, db, userID, b, "tech")
	testutil.SeedItem(t, db, model.FeedItem{FeedID: a, Title: "a1"})
	testutil.SeedItem(t, db, model.FeedItem{FeedID: b, Title: "b1"})
	read := testutil.SeedItem(t, db, model.FeedItem{FeedID: b, Title: "b2"})
	testutil.MarkRead(t, db, userID, read)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 2, list[0].UnreadCount)
}
