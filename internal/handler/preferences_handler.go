package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"readr/internal/service"
)

type PreferencesHandler struct {
	service service.PreferencesService
}

func NewPreferencesHandler(service service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

func (h *PreferencesHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/preferences", h.Get)
	g.PUT("/preferences", h.Update)
}

type preferencesResponse struct {
	Theme            string `json:"theme"`
	DefaultSortOrder string `json:"defaultSortOrder"`
	FetchInterval    int    `json:"fetchInterval"`
	SidebarWidth     int    `json:"sidebarWidth"`
	ArticleWidth     int    `json:"articleWidth"`
}

type preferencesRequest struct {
	Theme            *string `json:"theme"`
	DefaultSortOrder *string `json:"defaultSortOrder"`
	FetchInterval    *int    `json:"fetchInterval"`
	SidebarWidth     *int    `json:"sidebarWidth"`
	ArticleWidth     *int    `json:"articleWidth"`
}

// Get returns the caller's reader preferences.
// @Summary Get preferences
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} preferencesResponse
// @Router /preferences [get]
func (h *PreferencesHandler) Get(c echo.Context) error {
	prefs, err := h.service.Get(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}

// Update changes the fields present in the body.
// @Summary Update preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body preferencesRequest true "Preferences"
// @Success 200 {object} preferencesResponse
// @Failure 400 {object} errorResponse
// @Router /preferences [put]
func (h *PreferencesHandler) Update(c echo.Context) error {
	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	prefs, err := h.service.Update(c.Request().Context(), UserID(c), service.PreferencesInput{
		Theme:            req.Theme,
		DefaultSortOrder: req.DefaultSortOrder,
		FetchInterval:    req.FetchInterval,
		SidebarWidth:     req.SidebarWidth,
		ArticleWidth:     req.ArticleWidth,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}

func toPreferencesResponse(p service.Preferences) preferencesResponse {
	return preferencesResponse{
		Theme:            p.Theme,
		DefaultSortOrder: p.DefaultSortOrder,
		FetchInterval:    p.FetchInterval,
		SidebarWidth:     p.SidebarWidth,
		ArticleWidth:     p.ArticleWidth,
	}
}
