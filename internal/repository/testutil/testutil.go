// Package testutil provides sqlite fixtures for repository and service tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"readr/internal/db"
	"readr/internal/model"
	"readr/internal/repository"
)

var seq atomic.Int64

// NewTestDB opens a migrated database in a temp dir, closed on cleanup.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func SeedUser(t *testing.T, conn *sql.DB, email string) int64 {
	t.Helper()
	user, err := repository.NewUserRepository(conn).Create(context.Background(), model.User{
		Email:        email,
		DisplayName:  email,
		PasswordHash: "x",
	})
	require.NoError(t, err)
	return user.ID
}

// SeedFeed fills a unique URL when feed.URL is empty.
func SeedFeed(t *testing.T, conn *sql.DB, feed model.Feed) int64 {
	t.Helper()
	if feed.URL == "" {
		feed.URL = fmt.Sprintf("https://example.com/%d.xml", seq.Add(1))
	}
	if feed.Title == "" {
		feed.Title = feed.URL
	}
	created, err := repository.NewFeedRepository(conn).Create(context.Background(), feed)
	require.NoError(t, err)
	return created.ID
}

func SeedSubscription(t *testing.T, conn *sql.DB, userID, feedID int64, category string) int64 {
	t.Helper()
	sub, err := repository.NewSubscriptionRepository(conn).Create(context.Background(), model.Subscription{
		UserID:   userID,
		FeedID:   feedID,
		Category: category,
	})
	require.NoError(t, err)
	return sub.ID
}

func SeedCategory(t *testing.T, conn *sql.DB, userID int64, name string) int64 {
	t.Helper()
	category, err := repository.NewCategoryRepository(conn).Create(context.Background(), userID, name, nil)
	require.NoError(t, err)
	return category.ID
}

// SeedItem inserts an item and returns its ID. Link defaults to a unique URL.
func SeedItem(t *testing.T, conn *sql.DB, item model.FeedItem) int64 {
	t.Helper()
	if item.Link == "" {
		item.Link = fmt.Sprintf("https://example.com/item/%d", seq.Add(1))
	}
	require.NoError(t, repository.NewItemRepository(conn).CreateOrUpdate(context.Background(), item))

	var id int64
	err := conn.QueryRow(`SELECT id FROM feed_items WHERE feed_id = ? AND link = ?`, item.FeedID, item.Link).Scan(&id)
	require.NoError(t, err)
	return id
}

func MarkRead(t *testing.T, conn *sql.DB, userID, itemID int64) {
	t.Helper()
	require.NoError(t, repository.NewItemRepository(conn).SetRead(context.Background(), userID, itemID, true))
}
