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

func TestOnboardingService_CreatesDefaultFeedOnce(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	feeds := repository.NewFeedRepository(db)
	subs := repository.NewSubscriptionRepository(db)
	categories := repository.NewCategoryRepository(db)

	svc := service.NewOnboardingService(feeds, subs, categories, service.DefaultFeed{
		URL:      "https://news.example.com/rss",
		Title:    "Example News",
		Category: "News",
	})

	first := testutil.SeedUser(t, db, "first@example.com")
	second := testutil.SeedUser(t, db, "second@example.com")
	svc.OnUserCreated(ctx, first)
	svc.OnUserCreated(ctx, second)

	def, err := feeds.FindDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	require.Equal(t, "Example News", def.Title)
	require.Equal(t, model.FetchStatusPending, def.FetchStatus)

	count, err := subs.CountByFeed(ctx, def.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	sub, err := subs.Find(ctx, first, def.ID)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, "News", sub.Category)

	category, err := categories.FindByName(ctx, second, "news")
	require.NoError(t, err)
	require.NotNil(t, category)
}

func TestOnboardingService_PromotesExistingFeed(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	feeds := repository.NewFeedRepository(db)

	existingID := testutil.SeedFeed(t, db, model.Feed{URL: "https://news.example.com/rss", Title: "Already here"})
	svc := service.NewOnboardingService(feeds, repository.NewSubscriptionRepository(db), repository.NewCategoryRepository(db), service.DefaultFeed{
		URL: "https://news.example.com/rss",
	})

	userID := testutil.SeedUser(t, db, "user@example.com")
	svc.OnUserCreated(ctx, userID)

	def, err := feeds.FindDefault(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	require.Equal(t, existingID, def.ID)
	require.Equal(t, "Already here", def.Title)
}

func TestOnboardingService_NoDefaultConfigured(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	subs := repository.NewSubscriptionRepository(db)

	svc := service.NewOnboardingService(repository.NewFeedRepository(db), subs, repository.NewCategoryRepository(db), service.DefaultFeed{})
	userID := testutil.SeedUser(t, db, "user@example.com")
	svc.OnUserCreated(ctx, userID)

	list, err := subs.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, list)
}
