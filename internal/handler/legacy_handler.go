package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"readr/internal/config"
	"readr/internal/model"
	"readr/internal/service"
)

const (
	// SessionName is the cookie holding the form-login session.
	SessionName = "readr_session"
	// SessionUserKey is the session value carrying the user id.
	SessionUserKey = "user_id"

	legacyItemLimit        = 100
	legacyImportedCategory = "Imported"
)

// LegacyHandler serves the form-and-JSON endpoints of the server rendered
// client. It authenticates through a cookie session instead of a bearer token.
type LegacyHandler struct {
	store       sessions.Store
	auth        service.AuthService
	feeds       service.FeedService
	categories  service.CategoryService
	items       service.ItemService
	readability service.ReadabilityService
	opml        service.OPMLService
	system      service.SystemService
}

// LegacyServices groups the services behind the legacy surface.
type LegacyServices struct {
	Auth        service.AuthService
	Feeds       service.FeedService
	Categories  service.CategoryService
	Items       service.ItemService
	Readability service.ReadabilityService
	OPML        service.OPMLService
	System      service.SystemService
}

func NewLegacyHandler(store sessions.Store, services LegacyServices) *LegacyHandler {
	return &LegacyHandler{
		store:       store,
		auth:        services.Auth,
		feeds:       services.Feeds,
		categories:  services.Categories,
		items:       services.Items,
		readability: services.Readability,
		opml:        services.OPML,
		system:      services.System,
	}
}

func (h *LegacyHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.GET("/logout", h.Logout)
}

func (h *LegacyHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.GET("/user-feeds", h.UserFeeds)
	g.GET("/article", h.Article)
	g.POST("/mark-read", h.MarkRead)
	g.POST("/mark-all-read", h.MarkAllRead)
	g.POST("/star-article", h.StarArticle)
	g.GET("/categories", h.Categories)
	g.POST("/create-category", h.CreateCategory)
	g.POST("/add-category", h.CreateCategory)
	g.GET("/list-feeds", h.ListFeeds)
	g.POST("/add-feed", h.AddFeed)
	g.POST("/delete-feed", h.DeleteFeed)
	g.POST("/import-opml", h.ImportOPML)
	g.GET("/export-opml", h.ExportOPML)
	g.GET("/system-info", h.SystemInfo)
}

type legacyArticle struct {
	ID              int64   `json:"ID,string"`
	FeedID          int64   `json:"FeedID,string"`
	Title           string  `json:"Title"`
	Link            string  `json:"Link"`
	Content         string  `json:"Content"`
	ReadableContent *string `json:"ReadableContent,omitempty"`
	ImageURL        *string `json:"ImageURL,omitempty"`
	Published       *string `json:"Published,omitempty"`
	FeedTitle       string  `json:"feed_title"`
	FeedURL         string  `json:"feed_url"`
	Read            bool    `json:"Read"`
	Starred         bool    `json:"Starred"`
}

type legacyCategory struct {
	ID          int64  `json:"ID,string"`
	Name        string `json:"Name"`
	UnreadCount int    `json:"unread_count"`
}

type legacyFeed struct {
	ID    int64  `json:"ID,string"`
	Title string `json:"Title"`
	URL   string `json:"URL"`
}

type legacyCategoryFeeds struct {
	ID    int64        `json:"ID,string"`
	Name  string       `json:"Name"`
	Feeds []legacyFeed `json:"Feeds"`
}

type legacySuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type legacyStarResponse struct {
	Success bool `json:"success"`
	Starred bool `json:"starred"`
}

type legacyAddFeedResponse struct {
	Success bool       `json:"success"`
	Feed    legacyFeed `json:"feed"`
	Message string     `json:"message"`
}

type legacySystemInfo struct {
	Articles   int    `json:"articles"`
	Feeds      int    `json:"feeds"`
	Categories int    `json:"categories"`
	Unread     int    `json:"unread"`
	Starred    int    `json:"starred"`
	Uptime     string `json:"uptime"`
	Version    string `json:"version"`
}

// Login starts a cookie session from form credentials.
// @Summary Form login
// @Tags legacy
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Success 200 {object} service.User
// @Failure 401 {object} errorResponse
// @Router /login [post]
func (h *LegacyHandler) Login(c echo.Context) error {
	resp, err := h.auth.Login(c.Request().Context(), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrInvalid) {
			return Error(c, http.StatusUnauthorized, "invalid credentials")
		}
		return writeServiceError(c, err)
	}

	session, _ := h.store.Get(c.Request(), SessionName)
	session.Values[SessionUserKey] = resp.User.ID
	if err := session.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Error(err)
		return Error(c, http.StatusInternalServerError, "failed to save session")
	}
	return c.JSON(http.StatusOK, resp.User)
}

// Logout ends the cookie session.
// @Summary Form logout
// @Tags legacy
// @Produce json
// @Success 200 {object} legacySuccessResponse
// @Router /logout [get]
func (h *LegacyHandler) Logout(c echo.Context) error {
	session, _ := h.store.Get(c.Request(), SessionName)
	delete(session.Values, SessionUserKey)
	session.Options.MaxAge = -1
	if err := session.Save(c.Request(), c.Response()); err != nil {
		c.Logger().Error(err)
	}
	return c.JSON(http.StatusOK, legacySuccessResponse{Success: true, Message: "logged out"})
}

// UserFeeds lists up to 100 items, newest first.
// @Summary List articles
// @Tags legacy
// @Produce json
// @Param filter query string false "fresh (unread) or starred"
// @Param category query string false "Category ID"
// @Success 200 {array} legacyArticle
// @Failure 404 {object} errorResponse
// @Router /user-feeds [get]
func (h *LegacyHandler) UserFeeds(c echo.Context) error {
	ctx := c.Request().Context()
	userID := UserID(c)

	params := service.ItemListParams{
		Sort:  model.SortNewest,
		Limit: legacyItemLimit,
	}
	switch c.QueryParam("filter") {
	case "fresh":
		params.UnreadOnly = true
	case "starred":
		params.StarredOnly = true
	}
	name, err := h.categoryName(c, c.QueryParam("category"))
	if err != nil {
		return writeServiceError(c, err)
	}
	params.Category = name

	page, err := h.items.List(ctx, userID, params)
	if err != nil {
		return writeServiceError(c, err)
	}
	articles := make([]legacyArticle, len(page.Items))
	for i, item := range page.Items {
		articles[i] = toLegacyArticle(item)
	}
	return c.JSON(http.StatusOK, articles)
}

// Article returns one item with its readable content when it can be extracted.
// @Summary Get article
// @Tags legacy
// @Produce json
// @Param id query string true "Item ID"
// @Success 200 {object} legacyArticle
// @Failure 404 {object} errorResponse
// @Router /article [get]
func (h *LegacyHandler) Article(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusNotFound, "not found")
	}
	ctx := c.Request().Context()
	userID := UserID(c)

	item, err := h.items.Get(ctx, userID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	if item.ReadableContent == nil {
		if content, err := h.readability.FetchReadableContent(ctx, userID, id); err == nil {
			item.ReadableContent = &content
		}
	}
	return c.JSON(http.StatusOK, toLegacyArticle(item))
}

// MarkRead marks the form's item read.
// @Summary Mark article read
// @Tags legacy
// @Accept x-www-form-urlencoded
// @Param id formData string true "Item ID"
// @Success 200
// @Failure 404 {object} errorResponse
// @Router /mark-read [post]
func (h *LegacyHandler) MarkRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.FormValue("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.items.SetRead(c.Request().Context(), UserID(c), id, true); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// MarkAllRead marks every unread item read, or those of one category.
// @Summary Mark all read
// @Tags legacy
// @Accept x-www-form-urlencoded
// @Param category formData string false "Category ID"
// @Param filter formData string false "fresh"
// @Success 200
// @Router /mark-all-read [post]
func (h *LegacyHandler) MarkAllRead(c echo.Context) error {
	name, err := h.categoryName(c, c.FormValue("category"))
	if err != nil {
		return writeServiceError(c, err)
	}
	// filter=fresh and no scope both mean every unread item.
	if _, err := h.items.MarkAllRead(c.Request().Context(), UserID(c), nil, name); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// StarArticle stars or unstars the form's item.
// @Summary Star article
// @Tags legacy
// @Accept x-www-form-urlencoded
// @Produce json
// @Param id formData string true "Item ID"
// @Param starred formData string true "true to star"
// @Success 200 {object} legacyStarResponse
// @Failure 404 {object} errorResponse
// @Router /star-article [post]
func (h *LegacyHandler) StarArticle(c echo.Context) error {
	id, err := strconv.ParseInt(c.FormValue("id"), 10, 64)
	if err != nil {
		return Error(c, http.StatusNotFound, "article not found")
	}
	starred := c.FormValue("starred") == "true"
	if err := h.items.SetStarred(c.Request().Context(), UserID(c), id, starred); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return Error(c, http.StatusNotFound, "article not found")
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, legacyStarResponse{Success: true, Starred: starred})
}

// Categories lists categories with unread counts.
// @Summary List categories
// @Tags legacy
// @Produce json
// @Success 200 {array} legacyCategory
// @Router /categories [get]
func (h *LegacyHandler) Categories(c echo.Context) error {
	categories, err := h.categories.List(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	response := make([]legacyCategory, len(categories))
	for i, category := range categories {
		response[i] = legacyCategory{ID: category.ID, Name: category.Name, UnreadCount: category.UnreadCount}
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCategory creates a category from the form's name.
// @Summary Create category
// @Tags legacy
// @Accept x-www-form-urlencoded
// @Produce json
// @Param name formData string true "Category name"
// @Success 200 {object} legacyCategory
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /create-category [post]
func (h *LegacyHandler) CreateCategory(c echo.Context) error {
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return Error(c, http.StatusBadRequest, "category name is required")
	}
	category, err := h.categories.Create(c.Request().Context(), UserID(c), name, nil)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			return Error(c, http.StatusConflict, "category already exists")
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, legacyCategory{ID: category.ID, Name: category.Name})
}

// ListFeeds groups the caller's feeds by category. Feeds without a category
// come last under an empty name.
// @Summary List feeds by category
// @Tags legacy
// @Produce json
// @Success 200 {array} legacyCategoryFeeds
// @Router /list-feeds [get]
func (h *LegacyHandler) ListFeeds(c echo.Context) error {
	ctx := c.Request().Context()
	userID := UserID(c)

	categories, err := h.categories.List(ctx, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	feeds, err := h.feeds.List(ctx, userID, nil)
	if err != nil {
		return writeServiceError(c, err)
	}

	byCategory := make(map[string][]legacyFeed)
	for _, feed := range feeds {
		key := strings.ToLower(feed.Category)
		byCategory[key] = append(byCategory[key], toLegacyFeed(feed))
	}

	response := make([]legacyCategoryFeeds, 0, len(categories)+1)
	for _, category := range categories {
		key := strings.ToLower(category.Name)
		group := byCategory[key]
		if group == nil {
			group = []legacyFeed{}
		}
		response = append(response, legacyCategoryFeeds{ID: category.ID, Name: category.Name, Feeds: group})
		delete(byCategory, key)
	}
	if loose := byCategory[""]; len(loose) > 0 {
		response = append(response, legacyCategoryFeeds{Name: "", Feeds: loose})
	}
	return c.JSON(http.StatusOK, response)
}

// AddFeed subscribes to the form's URL under the form's category.
// @Summary Add feed
// @Tags legacy
// @Accept x-www-form-urlencoded
// @Produce json
// @Param url formData string true "Feed URL"
// @Param category formData string true "Category name"
// @Success 200 {object} legacyAddFeedResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /add-feed [post]
func (h *LegacyHandler) AddFeed(c echo.Context) error {
	feedURL := strings.TrimSpace(c.FormValue("url"))
	category := strings.TrimSpace(c.FormValue("category"))
	if feedURL == "" || category == "" {
		return Error(c, http.StatusBadRequest, "URL and category are required")
	}

	feed, err := h.feeds.AddFeed(c.Request().Context(), UserID(c), service.AddFeedInput{URL: feedURL, Category: category})
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			return Error(c, http.StatusConflict, "feed already exists")
		}
		if errors.Is(err, service.ErrInvalid) {
			return Error(c, http.StatusBadRequest, "invalid feed URL")
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, legacyAddFeedResponse{
		Success: true,
		Feed:    toLegacyFeed(feed),
		Message: "Feed added successfully",
	})
}

// DeleteFeed removes the caller's subscription to a feed.
// @Summary Delete feed
// @Tags legacy
// @Produce json
// @Param id query string true "Feed ID"
// @Success 200 {object} legacySuccessResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /delete-feed [post]
func (h *LegacyHandler) DeleteFeed(c echo.Context) error {
	raw := c.FormValue("id")
	if raw == "" {
		return Error(c, http.StatusBadRequest, "feed id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid feed id")
	}
	if err := h.feeds.RemoveFeed(c.Request().Context(), UserID(c), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return Error(c, http.StatusNotFound, "feed subscription not found")
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, legacySuccessResponse{Success: true, Message: "Feed subscription removed successfully"})
}

// ImportOPML imports the uploaded "opml" file. Feeds outside a folder land
// in the Imported category.
// @Summary Import OPML
// @Tags legacy
// @Accept multipart/form-data
// @Produce json
// @Param opml formData file true "OPML file"
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} errorResponse
// @Router /import-opml [post]
func (h *LegacyHandler) ImportOPML(c echo.Context) error {
	file, err := c.FormFile("opml")
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to get uploaded file")
	}
	if file.Size > maxOPMLSize {
		return Error(c, http.StatusRequestEntityTooLarge, "file too large")
	}
	src, err := file.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to get uploaded file")
	}
	defer src.Close()

	result, err := h.opml.Import(c.Request().Context(), UserID(c), src, legacyImportedCategory, nil)
	if err != nil {
		if errors.Is(err, service.ErrInvalid) {
			return Error(c, http.StatusBadRequest, "unable to parse OPML file")
		}
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// ExportOPML downloads the caller's subscriptions.
// @Summary Export OPML
// @Tags legacy
// @Produce xml
// @Success 200 {string} string "OPML file content"
// @Router /export-opml [get]
func (h *LegacyHandler) ExportOPML(c echo.Context) error {
	payload, err := h.opml.Export(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	filename := config.AppName + "-" + time.Now().Format("2006-01-02") + ".opml"
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/xml", payload)
}

// SystemInfo reports library counts and server uptime.
// @Summary System info
// @Tags legacy
// @Produce json
// @Success 200 {object} legacySystemInfo
// @Router /system-info [get]
func (h *LegacyHandler) SystemInfo(c echo.Context) error {
	info, err := h.system.Info(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, legacySystemInfo{
		Articles:   info.Items,
		Feeds:      info.Feeds,
		Categories: info.Categories,
		Unread:     info.Unread,
		Starred:    info.Starred,
		Uptime:     info.Uptime,
		Version:    info.Version,
	})
}

// categoryName resolves a category id parameter to its label. An empty
// parameter means no category scope.
func (h *LegacyHandler) categoryName(c echo.Context, raw string) (*string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, service.ErrInvalid
	}
	category, err := h.categories.Get(c.Request().Context(), UserID(c), id)
	if err != nil {
		return nil, err
	}
	return &category.Name, nil
}

func toLegacyArticle(item model.FeedItem) legacyArticle {
	content := ""
	switch {
	case item.Content != nil && *item.Content != "":
		content = *item.Content
	case item.Summary != nil:
		content = *item.Summary
	}
	var published *string
	if item.PublishedAt != nil {
		formatted := item.PublishedAt.UTC().Format(time.RFC3339)
		published = &formatted
	}
	return legacyArticle{
		ID:              item.ID,
		FeedID:          item.FeedID,
		Title:           item.Title,
		Link:            item.Link,
		Content:         content,
		ReadableContent: item.ReadableContent,
		ImageURL:        item.ImageURL,
		Published:       published,
		FeedTitle:       item.FeedTitle,
		FeedURL:         item.FeedURL,
		Read:            item.Read,
		Starred:         item.Starred,
	}
}

func toLegacyFeed(feed model.UserFeed) legacyFeed {
	return legacyFeed{ID: feed.ID, Title: feed.DisplayTitle(), URL: feed.URL}
}
