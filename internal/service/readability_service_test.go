package service_test

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"readr/internal/model"
	"readr/internal/network"
	"readr/internal/repository"
	"readr/internal/repository/testutil"
	"readr/internal/service"

	"github.com/stretchr/testify/require"
)

func articleHTML() string {
	paragraph := "<p>Go makes it easy to build simple, reliable and efficient software. " +
		"This paragraph is long enough to look like real article content to the extractor, " +
		"with commas, sentences, and enough words to score well against the navigation.</p>"
	return `<html><head><title>Article</title><script>alert("x")</script></head><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<article><h1>Readable Article</h1>` + strings.Repeat(paragraph, 8) + `</article>
<footer>Copyright</footer></body></html>`
}

func TestReadabilityService_FetchesAndCaches(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.SeedUser(t, db, "user@example.com")
	feedID := testutil.SeedFeed(t, db, model.Feed{})
	testutil.SeedSubscription(t, db, userID, feedID, "")
	itemID := testutil.SeedItem(t, db, model.FeedItem{FeedID: feedID, Title: "Article", Link: "https://example.com/article"})

	var calls atomic.Int32
	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		calls.Add(1)
		require.NotEmpty(t, req.Header.Get("User-Agent"))
		return textResponse(req, http.StatusOK, articleHTML()), nil
	})}
	items := repository.NewItemRepository(db)
	svc := service.NewReadabilityService(items, network.NewClientFactoryForTest(client))

	content, err := svc.FetchReadableContent(ctx, userID, itemID)
	require.NoError(t, err)
	require.Contains(t, content, "simple, reliable and efficient")
	require.NotContains(t, content, "alert(")

	again, err := svc.FetchReadableContent(ctx, userID, itemID)
	require.NoError(t, err)
	require.Equal(t, content, again)
	require.Equal(t, int32(1), calls.Load())

	item, err := items.GetByID(ctx, itemID)
	require.NoError(t, err)
	require.NotNil(t, item.ReadableContent)
}

func TestReadabilityService_Errors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.SeedUser(t, db, "user@example.com")
	strangerID := testutil.SeedUser(t, db, "stranger@example.com")
	feedID := testutil.SeedFeed(t, db, model.Feed{})
	testutil.SeedSubscription(t, db, userID, feedID, "")
	itemID := testutil.SeedItem(t, db, model.FeedItem{FeedID: feedID, Title: "Article", Link: "https://example.com/gone"})

	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return textResponse(req, http.StatusInternalServerError, "oops"), nil
	})}
	svc := service.NewReadabilityService(repository.NewItemRepository(db), network.NewClientFactoryForTest(client))

	_, err := svc.FetchReadableContent(ctx, userID, itemID)
	require.ErrorIs(t, err, service.ErrFeedFetch)

	_, err = svc.FetchReadableContent(ctx, strangerID, itemID)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestReadabilityService_RejectsNonHTML(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	userID := testutil.SeedUser(t, db, "user@example.com")
	feedID := testutil.SeedFeed(t, db, model.Feed{})
	testutil.SeedSubscription(t, db, userID, feedID, "")
	pdfID := testutil.SeedItem(t, db, model.FeedItem{FeedID: feedID, Title: "Paper", Link: "https://example.com/paper.pdf"})
	noLinkID := testutil.SeedItem(t, db, model.FeedItem{FeedID: feedID, Title: "Note", Link: "mailto:someone@example.com"})

	client := &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		resp := textResponse(req, http.StatusOK, "%PDF-1.7")
		resp.Header.Set("Content-Type", "application/pdf")
		return resp, nil
	})}
	svc := service.NewReadabilityService(repository.NewItemRepository(db), network.NewClientFactoryForTest(client))

	_, err := svc.FetchReadableContent(ctx, userID, pdfID)
	require.ErrorIs(t, err, service.ErrInvalid)

	_, err = svc.FetchReadableContent(ctx, userID, noLinkID)
	require.ErrorIs(t, err, service.ErrInvalid)
}
