package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"readr/internal/service"
)

const (
	collectionFeeds         = "feeds"
	collectionCategories    = "categories"
	collectionSubscriptions = "subscriptions"
	collectionItems         = "feed_items"
)

// CollectionHandler serves /collections/{name}/records for every record
// type the reader exposes.
type CollectionHandler struct {
	collections service.CollectionService
	feeds       service.FeedService
	categories  service.CategoryService
	items       service.ItemService
}

func NewCollectionHandler(
	collections service.CollectionService,
	feeds service.FeedService,
	categories service.CategoryService,
	items service.ItemService,
) *CollectionHandler {
	return &CollectionHandler{
		collections: collections,
		feeds:       feeds,
		categories:  categories,
		items:       items,
	}
}

func (h *CollectionHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/collections/:collection/records", h.List)
	g.POST("/collections/:collection/records", h.Create)
	g.GET("/collections/:collection/records/:id", h.Get)
	g.PATCH("/collections/:collection/records/:id", h.Update)
	g.DELETE("/collections/:collection/records/:id", h.Delete)
}

type createFeedRecordRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type updateFeedRecordRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
}

type categoryRecordRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type createSubscriptionRequest struct {
	FeedID   int64  `json:"feed_id,string"`
	Category string `json:"category"`
}

type updateSubscriptionRequest struct {
	Title    *string `json:"title"`
	Category *string `json:"category"`
}

type updateItemRecordRequest struct {
	IsRead    *bool `json:"is_read"`
	IsStarred *bool `json:"is_starred"`
}

// List returns one page of a collection.
// @Summary List records
// @Description List the caller's records of a collection with filter, sort and paging
// @Tags collections
// @Produce json
// @Security BearerAuth
// @Param collection path string true "feeds, categories, subscriptions or feed_items"
// @Param filter query string false "Filter expression, e.g. feed_id = '1' && is_read = false"
// @Param sort query string false "Comma separated fields, '-' for descending"
// @Param page query int false "1-based page (default 1)"
// @Param perPage query int false "Page size (default 30, max 500)"
// @Success 200 {object} recordListResponse[itemRecord]
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /collections/{collection}/records [get]
func (h *CollectionHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	userID := UserID(c)
	params := service.RecordListParams{
		Filter:  c.QueryParam("filter"),
		Sort:    c.QueryParam("sort"),
		Page:    intQuery(c, "page", 1),
		PerPage: intQuery(c, "perPage", 0),
	}

	switch c.Param("collection") {
	case collectionFeeds:
		page, err := h.collections.Feeds(ctx, userID, params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toRecordList(page, toUserFeedRecord))
	case collectionCategories:
		page, err := h.collections.Categories(ctx, userID, params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toRecordList(page, toCategoryRecord))
	case collectionSubscriptions:
		page, err := h.collections.Subscriptions(ctx, userID, params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toRecordList(page, toSubscriptionRecord))
	case collectionItems:
		page, err := h.collections.Items(ctx, userID, params)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toRecordList(page, toItemRecord))
	default:
		return h.unknownCollection(c)
	}
}

// Get returns one record.
// @Summary Get record
// @Tags collections
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Success 200 {object} itemRecord
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /collections/{collection}/records/{id} [get]
func (h *CollectionHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	ctx := c.Request().Context()
	userID := UserID(c)

	switch c.Param("collection") {
	case collectionFeeds:
		feed, err := h.feeds.Get(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toUserFeedRecord(feed))
	case collectionCategories:
		category, err := h.categories.Get(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toCategoryRecord(category))
	case collectionSubscriptions:
		sub, err := h.feeds.GetSubscription(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toSubscriptionRecord(sub))
	case collectionItems:
		item, err := h.items.Get(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toItemRecord(item))
	default:
		return h.unknownCollection(c)
	}
}

// Create adds a record. Feeds are created or reused globally without a
// subscription; subscribe through the subscriptions collection.
// @Summary Create record
// @Tags collections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "feeds, categories or subscriptions"
// @Success 201 {object} feedRecord
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /collections/{collection}/records [post]
func (h *CollectionHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	userID := UserID(c)

	switch c.Param("collection") {
	case collectionFeeds:
		var req createFeedRecordRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		feed, err := h.feeds.EnsureFeed(ctx, req.URL, req.Title)
		if err != nil {
			return writeServiceError(c, err)
		}
		record := toFeedRecord(feed)
		record.Category = req.Category
		return c.JSON(http.StatusCreated, record)
	case collectionCategories:
		var req categoryRecordRequest
		if err := c.Bind(&req); err != nil || req.Name == nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		category, err := h.categories.Create(ctx, userID, *req.Name, req.Color)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusCreated, toCategoryRecord(category))
	case collectionSubscriptions:
		var req createSubscriptionRequest
		if err := c.Bind(&req); err != nil || req.FeedID == 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		sub, err := h.feeds.Subscribe(ctx, userID, req.FeedID, req.Category)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusCreated, toSubscriptionRecord(sub))
	case collectionItems:
		return c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "items are created by feed refresh"})
	default:
		return h.unknownCollection(c)
	}
}

// Update patches a record.
// @Summary Update record
// @Tags collections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Success 200 {object} itemRecord
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /collections/{collection}/records/{id} [patch]
func (h *CollectionHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	ctx := c.Request().Context()
	userID := UserID(c)

	switch c.Param("collection") {
	case collectionFeeds:
		var req updateFeedRecordRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		feed, err := h.feeds.UpdateSubscription(ctx, userID, id, req.Title, req.Category)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toUserFeedRecord(feed))
	case collectionCategories:
		var req categoryRecordRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		category, err := h.categories.Update(ctx, userID, id, req.Name, req.Color)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toCategoryRecord(category))
	case collectionSubscriptions:
		var req updateSubscriptionRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		sub, err := h.feeds.GetSubscription(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		if _, err := h.feeds.UpdateSubscription(ctx, userID, sub.FeedID, req.Title, req.Category); err != nil {
			return writeServiceError(c, err)
		}
		sub, err = h.feeds.GetSubscription(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toSubscriptionRecord(sub))
	case collectionItems:
		var req updateItemRecordRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		}
		if req.IsRead != nil {
			if err := h.items.SetRead(ctx, userID, id, *req.IsRead); err != nil {
				return writeServiceError(c, err)
			}
		}
		if req.IsStarred != nil {
			if err := h.items.SetStarred(ctx, userID, id, *req.IsStarred); err != nil {
				return writeServiceError(c, err)
			}
		}
		item, err := h.items.Get(ctx, userID, id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, toItemRecord(item))
	default:
		return h.unknownCollection(c)
	}
}

// Delete removes a record. Deleting a feed drops the caller's subscription
// and the feed itself once nobody subscribes to it.
// @Summary Delete record
// @Tags collections
// @Security BearerAuth
// @Param collection path string true "feeds, categories or subscriptions"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /collections/{collection}/records/{id} [delete]
func (h *CollectionHandler) Delete(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	ctx := c.Request().Context()
	userID := UserID(c)

	switch c.Param("collection") {
	case collectionFeeds:
		err = h.feeds.RemoveFeed(ctx, userID, id)
	case collectionCategories:
		err = h.categories.Delete(ctx, userID, id)
	case collectionSubscriptions:
		err = h.feeds.Unsubscribe(ctx, userID, id)
	case collectionItems:
		return c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "items are removed with their feed"})
	default:
		return h.unknownCollection(c)
	}
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CollectionHandler) unknownCollection(c echo.Context) error {
	return c.JSON(http.StatusNotFound, errorResponse{Error: "unknown collection"})
}
