package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"readr/internal/model"
	"readr/internal/service"
)

type ItemHandler struct {
	service            service.ItemService
	readabilityService service.ReadabilityService
}

func NewItemHandler(service service.ItemService, readabilityService service.ReadabilityService) *ItemHandler {
	return &ItemHandler{service: service, readabilityService: readabilityService}
}

func (h *ItemHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/items", h.List)
	g.POST("/items/mark-read", h.MarkAllAsRead)
	g.GET("/items/:id", h.GetByID)
	g.PATCH("/items/:id/read", h.UpdateReadStatus)
	g.PATCH("/items/:id/star", h.UpdateStarred)
	g.POST("/items/:id/fetch-readable", h.FetchReadable)
	g.GET("/unread-counts", h.GetUnreadCounts)
}

type itemResponse struct {
	ID              int64   `json:"id,string"`
	FeedID          int64   `json:"feedId,string"`
	FeedTitle       string  `json:"feedTitle"`
	Title           string  `json:"title"`
	Link            string  `json:"link"`
	Summary         *string `json:"summary,omitempty"`
	Content         *string `json:"content,omitempty"`
	ReadableContent *string `json:"readableContent,omitempty"`
	ImageURL        *string `json:"imageUrl,omitempty"`
	Author          *string `json:"author,omitempty"`
	PublishedAt     *string `json:"publishedAt,omitempty"`
	Read            bool    `json:"read"`
	Starred         bool    `json:"starred"`
	CreatedAt       string  `json:"createdAt"`
}

type itemListResponse struct {
	Items   []itemResponse `json:"items"`
	HasMore bool           `json:"hasMore"`
}

type readableContentResponse struct {
	ReadableContent string `json:"readableContent"`
}

type updateReadRequest struct {
	Read bool `json:"read"`
}

type updateStarredRequest struct {
	Starred bool `json:"starred"`
}

type markAllReadRequest struct {
	FeedID   *int64  `json:"feedId,string,omitempty"`
	Category *string `json:"category,omitempty"`
}

type markAllReadResponse struct {
	Marked int64 `json:"marked"`
}

type unreadCountsResponse struct {
	Counts map[string]int `json:"counts"`
}

// List returns a page of items.
// @Summary List items
// @Description Items of subscribed feeds with optional filters and pagination
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param feedId query string false "Filter by feed ID"
// @Param category query string false "Filter by category label"
// @Param unreadOnly query bool false "Only unread items"
// @Param starredOnly query bool false "Only starred items"
// @Param q query string false "Search title, summary and author"
// @Param sort query string false "newest or oldest (default: user preference)"
// @Param limit query int false "Page size (default 50, max 100)"
// @Param offset query int false "Offset for pagination"
// @Success 200 {object} itemListResponse
// @Failure 400 {object} errorResponse
// @Router /items [get]
func (h *ItemHandler) List(c echo.Context) error {
	feedID, err := optionalIDQuery(c, "feedId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid feedId"})
	}

	params := service.ItemListParams{
		FeedID:      feedID,
		Category:    optionalStringQuery(c, "category"),
		UnreadOnly:  boolQuery(c, "unreadOnly"),
		StarredOnly: boolQuery(c, "starredOnly"),
		Search:      c.QueryParam("q"),
		Sort:        c.QueryParam("sort"),
		Limit:       intQuery(c, "limit", 0),
		Offset:      intQuery(c, "offset", 0),
	}

	page, err := h.service.List(c.Request().Context(), UserID(c), params)
	if err != nil {
		return writeServiceError(c, err)
	}

	response := itemListResponse{
		Items:   make([]itemResponse, len(page.Items)),
		HasMore: page.HasMore,
	}
	for i, item := range page.Items {
		response.Items[i] = toItemResponse(item)
	}
	return c.JSON(http.StatusOK, response)
}

// GetByID returns a single item.
// @Summary Get item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} itemResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /items/{id} [get]
func (h *ItemHandler) GetByID(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	item, err := h.service.Get(c.Request().Context(), UserID(c), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResponse(item))
}

// UpdateReadStatus marks an item read or unread.
// @Summary Update read status
// @Tags items
// @Accept json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param body body updateReadRequest true "Read status"
// @Success 204 "No Content"
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /items/{id}/read [patch]
func (h *ItemHandler) UpdateReadStatus(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	var req updateReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if err := h.service.SetRead(c.Request().Context(), UserID(c), id, req.Read); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStarred stars or unstars an item.
// @Summary Update starred status
// @Tags items
// @Accept json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param body body updateStarredRequest true "Starred status"
// @Success 204 "No Content"
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /items/{id}/star [patch]
func (h *ItemHandler) UpdateStarred(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	var req updateStarredRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if err := h.service.SetStarred(c.Request().Context(), UserID(c), id, req.Starred); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkAllAsRead marks unread items read, optionally by feed or category.
// @Summary Mark all as read
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body markAllReadRequest false "Scope"
// @Success 200 {object} markAllReadResponse
// @Failure 400 {object} errorResponse
// @Router /items/mark-read [post]
func (h *ItemHandler) MarkAllAsRead(c echo.Context) error {
	var req markAllReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	marked, err := h.service.MarkAllRead(c.Request().Context(), UserID(c), req.FeedID, req.Category)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, markAllReadResponse{Marked: marked})
}

// FetchReadable extracts the article body behind an item's link.
// @Summary Fetch readable content
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} readableContentResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /items/{id}/fetch-readable [post]
func (h *ItemHandler) FetchReadable(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	content, err := h.readabilityService.FetchReadableContent(c.Request().Context(), UserID(c), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, readableContentResponse{ReadableContent: content})
}

// GetUnreadCounts returns unread items per subscribed feed.
// @Summary Get unread counts
// @Tags items
// @Produce json
// @Security BearerAuth
// @Success 200 {object} unreadCountsResponse
// @Router /unread-counts [get]
func (h *ItemHandler) GetUnreadCounts(c echo.Context) error {
	counts, err := h.service.UnreadCounts(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	response := unreadCountsResponse{Counts: make(map[string]int, len(counts))}
	for feedID, count := range counts {
		response.Counts[strconv.FormatInt(feedID, 10)] = count
	}
	return c.JSON(http.StatusOK, response)
}

func toItemResponse(item model.FeedItem) itemResponse {
	var publishedAt *string
	if item.PublishedAt != nil {
		formatted := item.PublishedAt.UTC().Format(time.RFC3339)
		publishedAt = &formatted
	}
	return itemResponse{
		ID:              item.ID,
		FeedID:          item.FeedID,
		FeedTitle:       item.FeedTitle,
		Title:           item.Title,
		Link:            item.Link,
		Summary:         item.Summary,
		Content:         item.Content,
		ReadableContent: item.ReadableContent,
		ImageURL:        item.ImageURL,
		Author:          item.Author,
		PublishedAt:     publishedAt,
		Read:            item.Read,
		Starred:         item.Starred,
		CreatedAt:       item.CreatedAt.UTC().Format(time.RFC3339),
	}
}
