package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LoginStoresToken(t *testing.T) {
	var mu sync.Mutex
	var authHeaders []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		authHeaders = append(authHeaders, r.Header.Get("Authorization"))
		mu.Unlock()
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "ann@example.com", body["email"])
			writeJSON(w, http.StatusOK, map[string]any{"token": "tok-1", "user": map[string]string{"id": "7", "email": "ann@example.com"}})
		case "/api/auth/me":
			writeJSON(w, http.StatusOK, map[string]string{"id": "7", "email": "ann@example.com"})
		default:
			http.NotFound(w, r)
		}
	})

	resp, err := c.Login(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "7", resp.User.ID)
	require.Equal(t, "tok-1", c.Token())

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", user.Email)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"", "Bearer tok-1"}, authHeaders)
}

func TestClient_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = io.WriteString(w, "upstream down")
		}
	})

	_, err := c.Login(context.Background(), "ann@example.com", "nope")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	require.Equal(t, http.StatusUnauthorized, httpErr.Status)
	require.Equal(t, "invalid credentials", httpErr.Message)
	require.Empty(t, c.Token())

	err = c.RefreshFeeds(context.Background())
	require.True(t, IsStatus(err, http.StatusBadGateway))
	require.Contains(t, err.Error(), "upstream down")
}

func TestClient_CollectionQueries(t *testing.T) {
	var mu sync.Mutex
	queries := map[string]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries[r.URL.Path+"|"+r.URL.Query().Get("filter")] = r.URL.RawQuery
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{
			"page": 1, "perPage": 30, "totalItems": 1, "totalPages": 1,
			"items": []map[string]any{{"id": "42", "feed_id": "9", "title": "Hello", "read_by": []string{"7"}}},
		})
	})
	ctx := context.Background()

	_, err := c.ListSubscriptions(ctx, "7")
	require.NoError(t, err)
	_, err = c.SearchItems(ctx, "Go", 20)
	require.NoError(t, err)
	items, err := c.ListItems(ctx, "9", 50, 2)
	require.NoError(t, err)
	require.Len(t, items.Items, 1)
	require.True(t, items.Items[0].IsReadBy("7"))

	mu.Lock()
	defer mu.Unlock()
	require.Contains(t, queries, `/api/collections/subscriptions/records|user_id = "7"`)

	raw := queries[`/api/collections/feed_items/records|feed_id = "9"`]
	require.Contains(t, raw, "sort=-published_date")
	require.Contains(t, raw, "perPage=50")
	require.Contains(t, raw, "page=2")
	require.Contains(t, queries, `/api/collections/feed_items/records|title ~ "Go" || description ~ "Go" || author ~ "Go" || content ~ "Go"`)
}

func TestClient_Mutations(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var mu sync.Mutex
	var calls []call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
		mu.Unlock()
		if r.Method == http.MethodDelete || strings.HasSuffix(r.URL.Path, "/refresh") {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "1", "is_read": body["is_read"] == true})
	})
	ctx := context.Background()
	c.SetToken("tok")

	item, err := c.MarkRead(ctx, "5")
	require.NoError(t, err)
	require.True(t, item.IsRead)
	_, err = c.MarkUnread(ctx, "5")
	require.NoError(t, err)
	_, err = c.SetStarred(ctx, "5", true)
	require.NoError(t, err)
	_, err = c.CreateSubscription(ctx, "9", "Tech")
	require.NoError(t, err)
	require.NoError(t, c.DeleteSubscription(ctx, "3"))
	require.NoError(t, c.RefreshFeeds(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []call{
		{http.MethodPatch, "/api/collections/feed_items/records/5", map[string]any{"is_read": true}},
		{http.MethodPatch, "/api/collections/feed_items/records/5", map[string]any{"is_read": false}},
		{http.MethodPatch, "/api/collections/feed_items/records/5", map[string]any{"is_starred": true}},
		{http.MethodPost, "/api/collections/subscriptions/records", map[string]any{"feed_id": "9", "category": "Tech"}},
		{http.MethodDelete, "/api/collections/subscriptions/records/3", nil},
		{http.MethodPost, "/api/feeds/refresh", nil},
	}, calls)
}

func TestClient_OPML(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/opml/import":
			require.Equal(t, "true", r.URL.Query().Get("wait"))
			payload, _ := io.ReadAll(r.Body)
			require.Contains(t, string(payload), "<opml")
			writeJSON(w, http.StatusOK, map[string]any{"imported": 2, "skipped": 1})
		case r.URL.Path == "/api/opml/export":
			w.Header().Set("Content-Type", "application/xml")
			_, _ = io.WriteString(w, `<opml version="2.0"></opml>`)
		}
	})
	ctx := context.Background()

	result, err := c.ImportOPML(ctx, strings.NewReader(`<opml version="2.0"><body/></opml>`))
	require.NoError(t, err)
	require.Equal(t, ImportResult{Imported: 2, Skipped: 1}, result)

	data, err := c.ExportOPML(ctx)
	require.NoError(t, err)
	require.Contains(t, string(data), "<opml")
}
