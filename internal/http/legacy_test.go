package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"readr/internal/handler"
	"readr/internal/model"
	"readr/internal/repository/testutil"
)

func (s *testServer) form(path string, session *nethttp.Cookie, values url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	r := request{
		method:      nethttp.MethodPost,
		path:        path,
		body:        strings.NewReader(values.Encode()),
		contentType: echo.MIMEApplicationForm,
	}
	if session != nil {
		r.cookies = []*nethttp.Cookie{session}
	}
	return s.do(r)
}

func (s *testServer) legacyLogin(email string) *nethttp.Cookie {
	s.t.Helper()
	s.register(email)
	rec := s.form("/login", nil, url.Values{"email": {email}, "password": {"secret1"}})
	require.Equal(s.t, nethttp.StatusOK, rec.Code, rec.Body.String())
	cookie := responseCookie(rec, handler.SessionName)
	require.NotNil(s.t, cookie)
	return cookie
}

func TestLegacy_RequiresSession(t *testing.T) {
	s := newTestServer(t, "")

	rec := s.do(request{method: nethttp.MethodGet, path: "/user-feeds"})
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	require.Equal(t, "not logged in", decode(t, rec)["error"])

	s.register("ann@example.com")
	rec = s.form("/login", nil, url.Values{"email": {"ann@example.com"}, "password": {"wrong-one"}})
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
	require.Equal(t, "invalid credentials", decode(t, rec)["error"])

	// A bearer token does not open the form surface.
	token, _ := s.register("bob@example.com")
	rec = s.do(request{method: nethttp.MethodGet, path: "/user-feeds", token: token})
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)
}

func TestLegacy_FeedsAndArticles(t *testing.T) {
	s := newTestServer(t, "")
	session := s.legacyLogin("ann@example.com")

	rec := s.do(request{method: nethttp.MethodGet, path: "/user-feeds", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())

	rec = s.form("/add-feed", session, url.Values{"url": {"https://example.com/go.xml"}})
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	require.Equal(t, "URL and category are required", decode(t, rec)["error"])

	rec = s.form("/add-feed", session, url.Values{"url": {"not a url"}, "category": {"Tech"}})
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid feed URL", decode(t, rec)["error"])

	rec = s.form("/add-feed", session, url.Values{"url": {"https://example.com/go.xml"}, "category": {"Tech"}})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	added := decode(t, rec)
	require.Equal(t, "Feed added successfully", added["message"])
	feedID := mustID(t, added["feed"].(map[string]any)["ID"])

	rec = s.form("/add-feed", session, url.Values{"url": {"https://example.com/go.xml"}, "category": {"Tech"}})
	require.Equal(t, nethttp.StatusConflict, rec.Code)

	itemID := testutil.SeedItem(t, s.db, model.FeedItem{FeedID: feedID, Title: "Hello"})
	require.NotZero(t, itemID)

	rec = s.do(request{method: nethttp.MethodGet, path: "/user-feeds?filter=fresh", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var articles []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)
	require.Equal(t, "Hello", articles[0]["Title"])
	require.Equal(t, false, articles[0]["Read"])

	rec = s.form("/star-article", session, url.Values{"id": {articles[0]["ID"].(string)}, "starred": {"true"}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["starred"])

	rec = s.form("/star-article", session, url.Values{"id": {"999999"}, "starred": {"true"}})
	require.Equal(t, nethttp.StatusNotFound, rec.Code)
	require.Equal(t, "article not found", decode(t, rec)["error"])

	rec = s.form("/mark-read", session, url.Values{"id": {articles[0]["ID"].(string)}})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = s.do(request{method: nethttp.MethodGet, path: "/article?id=" + articles[0]["ID"].(string), cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["Read"])

	rec = s.do(request{method: nethttp.MethodGet, path: "/user-feeds?filter=fresh", cookies: []*nethttp.Cookie{session}})
	require.JSONEq(t, "[]", rec.Body.String())

	rec = s.do(request{method: nethttp.MethodGet, path: "/user-feeds?filter=starred", cookies: []*nethttp.Cookie{session}})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &articles))
	require.Len(t, articles, 1)

	rec = s.do(request{method: nethttp.MethodGet, path: "/list-feeds", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var groups []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &groups))
	require.NotEmpty(t, groups)
	require.Equal(t, "Tech", groups[0]["Name"])

	rec = s.form("/delete-feed", session, url.Values{"id": {"999999"}})
	require.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestLegacy_CategoriesAndOPML(t *testing.T) {
	s := newTestServer(t, "")
	session := s.legacyLogin("ann@example.com")

	rec := s.form("/create-category", session, url.Values{"name": {" "}})
	require.Equal(t, nethttp.StatusBadRequest, rec.Code)

	rec = s.form("/create-category", session, url.Values{"name": {"News"}})
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec = s.form("/add-category", session, url.Values{"name": {"news"}})
	require.Equal(t, nethttp.StatusConflict, rec.Code)
	require.Equal(t, "category already exists", decode(t, rec)["error"])

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("opml", "subs.opml")
	require.NoError(t, err)
	_, err = part.Write([]byte(testOPML))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec = s.do(request{
		method:      nethttp.MethodPost,
		path:        "/import-opml",
		body:        &body,
		contentType: writer.FormDataContentType(),
		cookies:     []*nethttp.Cookie{session},
	})
	require.Equal(t, nethttp.StatusOK, rec.Code, rec.Body.String())
	require.EqualValues(t, 2, decode(t, rec)["imported"])

	rec = s.do(request{method: nethttp.MethodGet, path: "/categories", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	var categories []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c["Name"].(string))
	}
	require.ElementsMatch(t, []string{"Imported", "News", "Tech"}, names)

	rec = s.do(request{method: nethttp.MethodGet, path: "/export-opml", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "readr-")
	require.Contains(t, rec.Body.String(), "loose.xml")

	rec = s.do(request{method: nethttp.MethodGet, path: "/system-info", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	require.EqualValues(t, 2, decode(t, rec)["feeds"])

	rec = s.do(request{method: nethttp.MethodGet, path: "/logout", cookies: []*nethttp.Cookie{session}})
	require.Equal(t, nethttp.StatusOK, rec.Code)
	cleared := responseCookie(rec, handler.SessionName)
	require.NotNil(t, cleared)
	require.Negative(t, cleared.MaxAge)
}
