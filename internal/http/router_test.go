package http

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"readr/internal/handler"
	"readr/internal/network"
	"readr/internal/repository"
	"readr/internal/repository/testutil"
	"readr/internal/service"
)

const testFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<title>Example Feed</title>
<link>https://example.com</link>
<item><title>First</title><link>https://example.com/first</link><pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate></item>
</channel></rss>`

const testOPML = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0"><head><title>subs</title></head><body>
<outline text="Tech">
  <outline text="Go" type="rss" xmlUrl="https://example.com/go.xml"/>
</outline>
<outline text="Loose" type="rss" xmlUrl="https://example.com/loose.xml"/>
</body></opml>`

type roundTripperFunc func(*nethttp.Request) (*nethttp.Response, error)

func (f roundTripperFunc) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	return f(req)
}

type testServer struct {
	t  *testing.T
	e  *echo.Echo
	db *sql.DB
}

func newTestServer(t *testing.T, staticDir string) *testServer {
	t.Helper()
	conn := testutil.NewTestDB(t)

	users := repository.NewUserRepository(conn)
	userSettings := repository.NewUserSettingsRepository(conn)
	feeds := repository.NewFeedRepository(conn)
	subscriptions := repository.NewSubscriptionRepository(conn)
	categories := repository.NewCategoryRepository(conn)
	items := repository.NewItemRepository(conn)

	client := &nethttp.Client{Transport: roundTripperFunc(func(req *nethttp.Request) (*nethttp.Response, error) {
		status, body := nethttp.StatusNotFound, "missing"
		if strings.HasSuffix(req.URL.Path, ".xml") {
			status, body = nethttp.StatusOK, testFeedXML
		}
		return &nethttp.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(nethttp.Header),
			Request:    req,
		}, nil
	})}
	factory := network.NewClientFactoryForTest(client)

	refresh := service.NewRefreshService(feeds, items, nil, factory, service.RefreshOptions{Concurrency: 1})
	auth := service.NewAuthService(users, repository.NewSettingsRepository(conn),
		service.NewOnboardingService(feeds, subscriptions, categories, service.DefaultFeed{}))
	// No background refresh so tests own every write.
	feedService := service.NewFeedService(feeds, subscriptions, categories, nil)
	categoryService := service.NewCategoryService(categories, subscriptions)
	itemService := service.NewItemService(items, feeds, userSettings)
	readability := service.NewReadabilityService(items, factory)
	opmlService := service.NewOPMLService(feedService, nil, feeds)
	systemService := service.NewSystemService(feeds, categories, items, time.Now())
	store := NewSessionStore("0123456789abcdef0123456789abcdef")

	e := NewRouter(Handlers{
		Auth:        handler.NewAuthHandler(auth),
		Collections: handler.NewCollectionHandler(service.NewCollectionService(feeds, categories, subscriptions, items), feedService, categoryService, itemService),
		Feeds:       handler.NewFeedHandler(feedService, refresh),
		Items:       handler.NewItemHandler(itemService, readability),
		OPML:        handler.NewOPMLHandler(opmlService, service.NewImportTaskService()),
		Preferences: handler.NewPreferencesHandler(service.NewPreferencesService(users, userSettings)),
		System:      handler.NewSystemHandler(systemService),
		Legacy: handler.NewLegacyHandler(store, handler.LegacyServices{
			Auth:        auth,
			Feeds:       feedService,
			Categories:  categoryService,
			Items:       itemService,
			Readability: readability,
			OPML:        opmlService,
			System:      systemService,
		}),
	}, auth, store, staticDir)

	return &testServer{t: t, e: e, db: conn}
}

type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	token       string
	cookies     []*nethttp.Cookie
}

func (s *testServer) do(r request) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.contentType != "" {
		req.Header.Set(echo.HeaderContentType, r.contentType)
	}
	if r.token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+r.token)
	}
	for _, cookie := range r.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) json(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}
	return s.do(request{method: method, path: path, body: reader, contentType: echo.MIMEApplicationJSON, token: token})
}

func (s *testServer) register(email string) (token string, userID int64) {
	s.t.Helper()
	rec := s.json(nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"email":           email,
		"password":        "secret1",
		"passwordConfirm": "secret1",
	})
	require.Equal(s.t, nethttp.StatusOK, rec.Code, rec.Body.String())
	var resp service.AuthResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(s.t, resp.Token)
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *nethttp.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func mustID(t *testing.T, value any) int64 {
	t.Helper()
	id, err := strconv.ParseInt(fmt.Sprint(value), 10, 64)
	require.NoError(t, err)
	return id
}

func TestAuth_TokenAndCookie(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.json(nethttp.MethodPost, "/api/auth/register", "", map[string]string{
		"email":           "ann@example.com",
		"password":        "secret1",
		"passwordConfirm": "secret1",
		"displayName":     "Ann",
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	cookie := responseCookie(rec, handler.AuthCookieName)
	require.NotNil(t, cookie)
	require.True(t, cookie.HttpOnly)
	token := decode(t, rec)["token"].(string)

	rec = s.json(nethttp.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	require.Equal(t, "missing authentication", decode(t, rec)["error"])

	rec = s.json(nethttp.MethodGet, "/api/auth/me", "garbage", nil)
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid token", decode(t, rec)["error"])

	rec = s.json(nethttp.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, "ann@example.com", decode(t, rec)["email"])

	rec = s.do(request{method: nethttp.MethodGet, path: "/api/auth/me", cookies: []*nethttp.Cookie{{Name: handler.AuthCookieName, Value: token}}})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = s.json(nethttp.MethodPost, "/api/auth/refresh", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.NotEmpty(t, decode(t, rec)["token"])

	rec = s.json(nethttp.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	cleared := responseCookie(rec, handler.AuthCookieName)
	require.NotNil(t, cleared)
	require.Empty(t, cleared.Value)
}

func TestAuth_Errors(t *testing.T) {
	s := newTestServer(t, "")
	s.register("ann@example.com")

	tests := []struct {
		name   string
		path   string
		body   map[string]string
		status int
		msg    string
	}{
		{"duplicate", "/api/auth/register", map[string]string{"email": "ANN@example.com", "password": "secret1", "passwordConfirm": "secret1"}, nethttp.StatusConflict, "user already exists"},
		{"mismatch", "/api/auth/register", map[string]string{"email": "bob@example.com", "password": "secret1", "passwordConfirm": "secret2"}, nethttp.StatusBadRequest, "passwords do not match"},
		{"short", "/api/auth/register", map[string]string{"email": "bob@example.com", "password": "abc", "passwordConfirm": "abc"}, nethttp.StatusBadRequest, "password must be at least 6 characters"},
		{"long", "/api/auth/register", map[string]string{"email": "bob@example.com", "password": strings.Repeat("x", 80), "passwordConfirm": strings.Repeat("x", 80)}, nethttp.StatusBadRequest, "password must be at most 72 bytes"},
		{"bad email", "/api/auth/register", map[string]string{"email": "bob", "password": "secret1", "passwordConfirm": "secret1"}, nethttp.StatusBadRequest, "email is not valid"},
		{"wrong password", "/api/auth/login", map[string]string{"email": "ann@example.com", "password": "nope-nope"}, nethttp.StatusUnauthorized, "invalid credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.json(nethttp.MethodPost, tt.path, "", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			require.Equal(t, tt.msg, decode(t, rec)["error"])
		})
	}
}

func TestStatic_FallsBackToIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>index</html>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.1a2b.js"), []byte("console.log(1)"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0o644))
	s := newTestServer(t, dir)

	rec := s.do(request{method: nethttp.MethodGet, path: "/assets/app.1a2b.js"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "console.log")
	require.Equal(t, assetsCacheControl, rec.Header().Get("Cache-Control"))

	rec = s.do(request{method: nethttp.MethodGet, path: "/robots.txt"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Cache-Control"))

	rec = s.do(request{method: nethttp.MethodGet, path: "/feeds/123"})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "index")
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = s.do(request{method: nethttp.MethodGet, path: "/api/nope"})
	require.NotContains(t, rec.Body.String(), "index")
}
