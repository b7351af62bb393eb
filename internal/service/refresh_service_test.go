package service_test

import (
	"context"
	"database/sql"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"readr/internal/model"
	"readr/internal/network"
	"readr/internal/repository"
	"readr/internal/repository/testutil"
	"readr/internal/service"

	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>Test Feed</title>
<link>https://example.com</link>
<description>Desc</description>
<item>
  <title>Item 1</title>
  <link>https://example.com/1</link>
  <description>Content 1</description>
  <author>ann@example.com (Ann)</author>
  <enclosure url="https://example.com/1.jpg" type="image/jpeg" length="10"/>
  <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
</item>
<item>
  <title></title>
  <link>https://example.com/2</link>
  <media:thumbnail url="https://example.com/2-thumb.png"/>
</item>
<item>
  <title>Item 3</title>
  <description>Missing link</description>
</item>
</channel>
</rss>`

const sampleSiteHTML = `<html><head>
<link rel="stylesheet" href="/style.css">
<link rel="shortcut icon" href="/static/icon.png">
</head><body></body></html>`

func newRefreshService(db *sql.DB, client *http.Client, withIcons bool, retries int) service.RefreshService {
	feeds := repository.NewFeedRepository(db)
	factory := network.NewClientFactoryForTest(client)
	var icons service.IconService
	if withIcons {
		icons = service.NewIconService(feeds, factory)
	}
	return service.NewRefreshService(feeds, repository.NewItemRepository(db), icons, factory, service.RefreshOptions{
		Concurrency:   2,
		MaxRetries:    retries,
		RetryInterval: time.Millisecond,
	})
}

func countItems(t *testing.T, db *sql.DB, feedID int64) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM feed_items WHERE feed_id = ?`, feedID).Scan(&n))
	return n
}

func TestRefreshService_RefreshFeed_StoresItemsAndMetadata(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	feedURL := "https://example.com/feed.xml"
	feedID := testutil.SeedFeed(t, db, model.Feed{URL: feedURL})

	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		switch req.URL.String() {
		case feedURL:
			resp := textResponse(req, http.StatusOK, sampleRSS)
			resp.Header.Set("ETag", `"v1"`)
			resp.Header.Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
			return resp, nil
		case "https://example.com/":
			return textResponse(req, http.StatusOK, sampleSiteHTML), nil
		default:
			return textResponse(req, http.StatusNotFound, ""), nil
		}
	})}

	svc := newRefreshService(db, client, true, 0)
	require.NoError(t, svc.RefreshFeed(ctx, feedID))

	feed, err := repository.NewFeedRepository(db).GetByID(ctx, feedID)
	require.NoError(t, err)
	require.Equal(t, model.FetchStatusSuccess, feed.FetchStatus)
	require.Equal(t, "Test Feed", feed.Title)
	require.NotNil(t, feed.ETag)
	require.Equal(t, `"v1"`, *feed.ETag)
	require.NotNil(t, feed.LastFetched)
	require.NotNil(t, feed.SiteURL)
	require.Equal(t, "https://example.com", *feed.SiteURL)
	require.NotNil(t, feed.Favicon)
	require.Equal(t, "https://example.com/static/icon.png", *feed.Favicon)

	require.Equal(t, 2, countItems(t, db, feedID))

	var title, image string
	require.NoError(t, db.QueryRow(`SELECT title, image_url FROM feed_items WHERE link = ?`, "https://example.com/2").Scan(&title, &image))
	require.Equal(t, "https://example.com/2", title)
	require.Equal(t, "https://example.com/2-thumb.png", image)
	require.NoError(t, db.QueryRow(`SELECT image_url FROM feed_items WHERE link = ?`, "https://example.com/1").Scan(&image))
	require.Equal(t, "https://example.com/1.jpg", image)

	// A second pass upserts rather than duplicating.
	require.NoError(t, svc.RefreshFeed(ctx, feedID))
	require.Equal(t, 2, countItems(t, db, feedID))
}

func TestRefreshService_ConditionalGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	feedID := testutil.SeedFeed(t, db, model.Feed{
		URL:          "https://example.com/feed.xml",
		ETag:         stringPtr(`"v1"`),
		LastModified: stringPtr("Mon, 02 Jan 2006 15:04:05 GMT"),
	})

	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, `"v1"`, req.Header.Get("If-None-Match"))
		require.Equal(t, "Mon, 02 Jan 2006 15:04:05 GMT", req.Header.Get("If-Modified-Since"))
		return textResponse(req, http.StatusNotModified, ""), nil
	})}

	require.NoError(t, newRefreshService(db, client, false, 0).RefreshFeed(ctx, feedID))

	feed, err := repository.NewFeedRepository(db).GetByID(ctx, feedID)
	require.NoError(t, err)
	require.Equal(t, model.FetchStatusSuccess, feed.FetchStatus)
	require.Equal(t, `"v1"`, *feed.ETag)
	require.Equal(t, 0, countItems(t, db, feedID))
}

func TestRefreshService_RetriesServerErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	feedID := testutil.SeedFeed(t, db, model.Feed{URL: "https://example.com/feed.xml"})

	var calls atomic.Int32
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return textResponse(req, http.StatusServiceUnavailable, ""), nil
		}
		return textResponse(req, http.StatusOK, sampleRSS), nil
	})}

	require.NoError(t, newRefreshService(db, client, false, 2).RefreshFeed(context.Background(), feedID))
	require.Equal(t, int32(2), calls.Load())
	require.Equal(t, 2, countItems(t, db, feedID))
}

func TestRefreshService_ClientErrorIsPermanent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	feedID := testutil.SeedFeed(t, db, model.Feed{URL: "https://example.com/feed.xml"})

	var calls atomic.Int32
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		return textResponse(req, http.StatusNotFound, ""), nil
	})}

	err := newRefreshService(db, client, false, 3).RefreshFeed(ctx, feedID)
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load())

	feed, err := repository.NewFeedRepository(db).GetByID(ctx, feedID)
	require.NoError(t, err)
	require.Equal(t, model.FetchStatusFailed, feed.FetchStatus)
	require.NotNil(t, feed.ErrorMessage)
	require.Equal(t, "HTTP 404", *feed.ErrorMessage)
}

func TestRefreshService_ParseErrorMarksFailed(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	feedID := testutil.SeedFeed(t, db, model.Feed{URL: "https://example.com/feed.xml"})

	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return textResponse(req, http.StatusOK, "definitely not a feed"), nil
	})}

	require.Error(t, newRefreshService(db, client, false, 0).RefreshFeed(ctx, feedID))

	feed, err := repository.NewFeedRepository(db).GetByID(ctx, feedID)
	require.NoError(t, err)
	require.Equal(t, model.FetchStatusFailed, feed.FetchStatus)
	require.NotNil(t, feed.ErrorMessage)
}

func TestRefreshService_RefreshFeed_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", req.URL)
		return nil, nil
	})}

	err := newRefreshService(db, client, false, 0).RefreshFeed(context.Background(), 12345)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestRefreshService_RefreshAllRejectsReentry(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedFeed(t, db, model.Feed{URL: "https://example.com/feed.xml"})

	started := make(chan struct{})
	release := make(chan struct{})
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		close(started)
		<-release
		return textResponse(req, http.StatusOK, sampleRSS), nil
	})}
	svc := newRefreshService(db, client, false, 0)

	done := make(chan error, 1)
	go func() { done <- svc.RefreshAll(context.Background()) }()

	<-started
	require.True(t, svc.IsRefreshing())
	require.ErrorIs(t, svc.RefreshAll(context.Background()), service.ErrAlreadyRefreshing)

	close(release)
	require.NoError(t, <-done)
	require.False(t, svc.IsRefreshing())
}

func TestRefreshService_RefreshForUser_OnlySubscribedFeeds(t *testing.T) {
	db := testutil.NewTestDB(t)
	userID := testutil.SeedUser(t, db, "user@example.com")
	mine := testutil.SeedFeed(t, db, model.Feed{URL: "https://mine.example.com/feed.xml"})
	testutil.SeedFeed(t, db, model.Feed{URL: "https://other.example.com/feed.xml"})
	testutil.SeedSubscription(t, db, userID, mine, "")

	var hosts []string
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		hosts = append(hosts, req.URL.Host)
		return textResponse(req, http.StatusNotModified, ""), nil
	})}

	require.NoError(t, newRefreshService(db, client, false, 0).RefreshForUser(context.Background(), userID))
	require.Equal(t, []string{"mine.example.com"}, hosts)
}
