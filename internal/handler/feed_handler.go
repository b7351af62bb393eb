package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"readr/internal/model"
	"readr/internal/service"
)

type FeedHandler struct {
	service service.FeedService
	refresh service.RefreshService
}

type createFeedRequest struct {
	URL      string `json:"url"`
	Category string `json:"category"`
	Title    string `json:"title"`
}

type updateFeedRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
}

type feedResponse struct {
	ID             int64   `json:"id,string"`
	SubscriptionID int64   `json:"subscriptionId,string"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Category       string  `json:"category"`
	SiteURL        *string `json:"siteUrl,omitempty"`
	Description    *string `json:"description,omitempty"`
	Favicon        *string `json:"favicon,omitempty"`
	FetchStatus    string  `json:"fetchStatus"`
	ErrorMessage   *string `json:"errorMessage,omitempty"`
	LastFetched    *string `json:"lastFetched,omitempty"`
	UnreadCount    int     `json:"unreadCount"`
	SubscribedAt   string  `json:"subscribedAt"`
}

func NewFeedHandler(service service.FeedService, refresh service.RefreshService) *FeedHandler {
	return &FeedHandler{service: service, refresh: refresh}
}

func (h *FeedHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/feeds", h.Create)
	g.GET("/feeds", h.List)
	g.POST("/feeds/refresh", h.RefreshAll)
	g.GET("/feeds/:id", h.Get)
	g.PATCH("/feeds/:id", h.Update)
	g.DELETE("/feeds/:id", h.Delete)
	g.POST("/feeds/:id/refresh", h.Refresh)
}

// Create subscribes to a feed.
// @Summary Add a feed
// @Description Subscribe to an RSS/Atom feed, creating its category when needed
// @Tags feeds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param feed body createFeedRequest true "Feed creation request"
// @Success 201 {object} feedResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /feeds [post]
func (h *FeedHandler) Create(c echo.Context) error {
	var req createFeedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	feed, err := h.service.AddFeed(c.Request().Context(), UserID(c), service.AddFeedInput{
		URL:      req.URL,
		Category: req.Category,
		Title:    req.Title,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toFeedResponse(feed))
}

// List returns the subscribed feeds, optionally filtered by category.
// @Summary List feeds
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param category query string false "Category label"
// @Success 200 {array} feedResponse
// @Router /feeds [get]
func (h *FeedHandler) List(c echo.Context) error {
	feeds, err := h.service.List(c.Request().Context(), UserID(c), optionalStringQuery(c, "category"))
	if err != nil {
		return writeServiceError(c, err)
	}
	response := make([]feedResponse, 0, len(feeds))
	for _, feed := range feeds {
		response = append(response, toFeedResponse(feed))
	}
	return c.JSON(http.StatusOK, response)
}

// Get returns one subscribed feed.
// @Summary Get a feed
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 200 {object} feedResponse
// @Failure 404 {object} errorResponse
// @Router /feeds/{id} [get]
func (h *FeedHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	feed, err := h.service.Get(c.Request().Context(), UserID(c), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFeedResponse(feed))
}

// Update changes the caller's title or category for a feed.
// @Summary Update a subscription
// @Tags feeds
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Param feed body updateFeedRequest true "Feed update request"
// @Success 200 {object} feedResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /feeds/{id} [patch]
func (h *FeedHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	var req updateFeedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	feed, err := h.service.UpdateSubscription(c.Request().Context(), UserID(c), id, req.Title, req.Category)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFeedResponse(feed))
}

// Delete unsubscribes from a feed.
// @Summary Delete a feed
// @Description Unsubscribe; the feed and its items go once nobody subscribes
// @Tags feeds
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 204 "No Content"
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /feeds/{id} [delete]
func (h *FeedHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if err := h.service.RemoveFeed(c.Request().Context(), UserID(c), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RefreshAll fetches every feed the caller subscribes to.
// @Summary Refresh feeds
// @Tags feeds
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 409 {object} errorResponse
// @Router /feeds/refresh [post]
func (h *FeedHandler) RefreshAll(c echo.Context) error {
	if err := h.refresh.RefreshForUser(c.Request().Context(), UserID(c)); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Refresh fetches one subscribed feed.
// @Summary Refresh a feed
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Param id path string true "Feed ID"
// @Success 200 {object} feedResponse
// @Failure 404 {object} errorResponse
// @Router /feeds/{id}/refresh [post]
func (h *FeedHandler) Refresh(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	ctx := c.Request().Context()
	userID := UserID(c)
	if _, err := h.service.Get(ctx, userID, id); err != nil {
		return writeServiceError(c, err)
	}
	// A failed fetch is recorded on the feed and reported through its status.
	_ = h.refresh.RefreshFeed(ctx, id)

	feed, err := h.service.Get(ctx, userID, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toFeedResponse(feed))
}

func toFeedResponse(feed model.UserFeed) feedResponse {
	var lastFetched *string
	if feed.LastFetched != nil {
		formatted := feed.LastFetched.UTC().Format(time.RFC3339)
		lastFetched = &formatted
	}
	return feedResponse{
		ID:             feed.ID,
		SubscriptionID: feed.SubscriptionID,
		Title:          feed.DisplayTitle(),
		URL:            feed.URL,
		Category:       feed.Category,
		SiteURL:        feed.SiteURL,
		Description:    feed.Description,
		Favicon:        feed.Favicon,
		FetchStatus:    feed.FetchStatus,
		ErrorMessage:   feed.ErrorMessage,
		LastFetched:    lastFetched,
		UnreadCount:    feed.UnreadCount,
		SubscribedAt:   feed.SubscribedAt.UTC().Format(time.RFC3339),
	}
}
