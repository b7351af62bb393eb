package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"readr/internal/service"
)

type SystemHandler struct {
	service service.SystemService
}

func NewSystemHandler(service service.SystemService) *SystemHandler {
	return &SystemHandler{service: service}
}

func (h *SystemHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/system-info", h.Info)
}

type systemInfoResponse struct {
	Version    string `json:"version"`
	StartedAt  string `json:"startedAt"`
	Uptime     string `json:"uptime"`
	Feeds      int    `json:"feeds"`
	Categories int    `json:"categories"`
	Items      int    `json:"items"`
	Unread     int    `json:"unread"`
	Starred    int    `json:"starred"`
}

// Info returns server details and the caller's library counts.
// @Summary System info
// @Tags system
// @Produce json
// @Security BearerAuth
// @Success 200 {object} systemInfoResponse
// @Router /system-info [get]
func (h *SystemHandler) Info(c echo.Context) error {
	info, err := h.service.Info(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toSystemInfoResponse(info))
}

func toSystemInfoResponse(info service.SystemInfo) systemInfoResponse {
	return systemInfoResponse{
		Version:    info.Version,
		StartedAt:  info.StartedAt.UTC().Format(time.RFC3339),
		Uptime:     info.Uptime,
		Feeds:      info.Feeds,
		Categories: info.Categories,
		Items:      info.Items,
		Unread:     info.Unread,
		Starred:    info.Starred,
	}
}
