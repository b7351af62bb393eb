// Package client talks to the readr API on behalf of the terminal client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"readr/internal/filter"
)

const defaultTimeout = 30 * time.Second

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an HTTPError with the given status.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// API is the subset of the readr API the terminal client uses.
type API interface {
	Register(ctx context.Context, email, password, passwordConfirm, displayName string) (AuthResponse, error)
	Login(ctx context.Context, email, password string) (AuthResponse, error)
	RefreshSession(ctx context.Context) (AuthResponse, error)
	Me(ctx context.Context) (User, error)

	ListSubscriptions(ctx context.Context, userID string) (Page[Subscription], error)
	ListFeeds(ctx context.Context) (Page[Feed], error)
	ListCategories(ctx context.Context) (Page[Category], error)
	// ListItems returns items newest first. An empty feedID lists every feed.
	ListItems(ctx context.Context, feedID string, perPage, page int) (Page[Item], error)
	SearchItems(ctx context.Context, query string, limit int) (Page[Item], error)

	CreateCategory(ctx context.Context, name, color string) (Category, error)
	CreateFeed(ctx context.Context, feedURL, title, category string) (Feed, error)
	UpdateFeed(ctx context.Context, feedID string, title, category *string) (Feed, error)
	DeleteFeed(ctx context.Context, feedID string) error
	CreateSubscription(ctx context.Context, feedID, category string) (Subscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID string) error

	MarkRead(ctx context.Context, itemID string) (Item, error)
	MarkUnread(ctx context.Context, itemID string) (Item, error)
	SetStarred(ctx context.Context, itemID string, starred bool) (Item, error)
	RefreshFeeds(ctx context.Context) error

	Preferences(ctx context.Context) (Preferences, error)
	UpdatePreferences(ctx context.Context, update PreferencesUpdate) (Preferences, error)
	ImportOPML(ctx context.Context, r io.Reader) (ImportResult, error)
	ExportOPML(ctx context.Context) ([]byte, error)
}

// Client is the HTTP implementation of API. It keeps the bearer token of
// the last successful register, login or refresh.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Register(ctx context.Context, email, password, passwordConfirm, displayName string) (AuthResponse, error) {
	body := map[string]string{
		"email":           email,
		"password":        password,
		"passwordConfirm": passwordConfirm,
		"displayName":     displayName,
	}
	return c.authenticate(ctx, "/api/auth/register", body)
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/login", map[string]string{"email": email, "password": password})
}

func (c *Client) RefreshSession(ctx context.Context) (AuthResponse, error) {
	return c.authenticate(ctx, "/api/auth/refresh", nil)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return AuthResponse{}, err
	}
	c.SetToken(resp.Token)
	return resp, nil
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user)
	return user, err
}

func (c *Client) ListSubscriptions(ctx context.Context, userID string) (Page[Subscription], error) {
	query := url.Values{}
	query.Set("filter", filter.Render(filter.Eq("user_id", userID)))
	return list[Subscription](ctx, c, "subscriptions", query)
}

func (c *Client) ListFeeds(ctx context.Context) (Page[Feed], error) {
	return list[Feed](ctx, c, "feeds", nil)
}

func (c *Client) ListCategories(ctx context.Context) (Page[Category], error) {
	return list[Category](ctx, c, "categories", nil)
}

func (c *Client) ListItems(ctx context.Context, feedID string, perPage, page int) (Page[Item], error) {
	query := url.Values{}
	query.Set("sort", "-published_date")
	query.Set("perPage", strconv.Itoa(perPage))
	query.Set("page", strconv.Itoa(page))
	if feedID != "" {
		query.Set("filter", filter.Render(filter.Eq("feed_id", feedID)))
	}
	return list[Item](ctx, c, "feed_items", query)
}

func (c *Client) SearchItems(ctx context.Context, q string, limit int) (Page[Item], error) {
	query := url.Values{}
	query.Set("filter", filter.Render(filter.Or(
		filter.Like("title", q),
		filter.Like("description", q),
		filter.Like("author", q),
		filter.Like("content", q),
	)))
	query.Set("sort", "-published_date")
	query.Set("perPage", strconv.Itoa(limit))
	return list[Item](ctx, c, "feed_items", query)
}

func (c *Client) CreateCategory(ctx context.Context, name, color string) (Category, error) {
	body := map[string]any{"name": name}
	if color != "" {
		body["color"] = color
	}
	var category Category
	err := c.do(ctx, http.MethodPost, recordsPath("categories"), nil, body, &category)
	return category, err
}

func (c *Client) CreateFeed(ctx context.Context, feedURL, title, category string) (Feed, error) {
	body := map[string]string{"url": feedURL, "title": title, "category": category}
	var feed Feed
	err := c.do(ctx, http.MethodPost, recordsPath("feeds"), nil, body, &feed)
	return feed, err
}

func (c *Client) UpdateFeed(ctx context.Context, feedID string, title, category *string) (Feed, error) {
	body := map[string]*string{"title": title, "category": category}
	var feed Feed
	err := c.do(ctx, http.MethodPatch, recordPath("feeds", feedID), nil, body, &feed)
	return feed, err
}

func (c *Client) DeleteFeed(ctx context.Context, feedID string) error {
	return c.do(ctx, http.MethodDelete, recordPath("feeds", feedID), nil, nil, nil)
}

func (c *Client) CreateSubscription(ctx context.Context, feedID, category string) (Subscription, error) {
	body := map[string]string{"feed_id": feedID, "category": category}
	var sub Subscription
	err := c.do(ctx, http.MethodPost, recordsPath("subscriptions"), nil, body, &sub)
	return sub, err
}

func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	return c.do(ctx, http.MethodDelete, recordPath("subscriptions", subscriptionID), nil, nil, nil)
}

func (c *Client) MarkRead(ctx context.Context, itemID string) (Item, error) {
	return c.patchItem(ctx, itemID, map[string]bool{"is_read": true})
}

func (c *Client) MarkUnread(ctx context.Context, itemID string) (Item, error) {
	return c.patchItem(ctx, itemID, map[string]bool{"is_read": false})
}

func (c *Client) SetStarred(ctx context.Context, itemID string, starred bool) (Item, error) {
	return c.patchItem(ctx, itemID, map[string]bool{"is_starred": starred})
}

func (c *Client) patchItem(ctx context.Context, itemID string, body map[string]bool) (Item, error) {
	var item Item
	err := c.do(ctx, http.MethodPatch, recordPath("feed_items", itemID), nil, body, &item)
	return item, err
}

func (c *Client) RefreshFeeds(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/feeds/refresh", nil, nil, nil)
}

func (c *Client) Preferences(ctx context.Context) (Preferences, error) {
	var prefs Preferences
	err := c.do(ctx, http.MethodGet, "/api/preferences", nil, nil, &prefs)
	return prefs, err
}

func (c *Client) UpdatePreferences(ctx context.Context, update PreferencesUpdate) (Preferences, error) {
	var prefs Preferences
	err := c.do(ctx, http.MethodPut, "/api/preferences", nil, update, &prefs)
	return prefs, err
}

func (c *Client) ImportOPML(ctx context.Context, r io.Reader) (ImportResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/opml/import", url.Values{"wait": {"true"}}, r)
	if err != nil {
		return ImportResult{}, err
	}
	req.Header.Set("Content-Type", "text/xml")
	var result ImportResult
	err = c.send(req, &result)
	return result, err
}

func (c *Client) ExportOPML(ctx context.Context) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/opml/export", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("export opml: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func list[T any](ctx context.Context, c *Client, collection string, query url.Values) (Page[T], error) {
	var page Page[T]
	if err := c.do(ctx, http.MethodGet, recordsPath(collection), query, nil, &page); err != nil {
		return Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

func recordsPath(collection string) string {
	return "/api/collections/" + collection + "/records"
}

func recordPath(collection, id string) string {
	return recordsPath(collection) + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var body struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &body) != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	return &HTTPError{Status: resp.StatusCode, Message: body.Error}
}
