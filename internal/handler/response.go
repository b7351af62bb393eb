package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"readr/internal/logger"
	"readr/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// writeServiceError maps service sentinels to status codes. Client errors
// carry the service's own message, e.g. "feed url is required".
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalid):
		return Error(c, http.StatusBadRequest, publicMessage(err, service.ErrInvalid, "invalid request"))
	case errors.Is(err, service.ErrUnauthorized):
		return Error(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrNotFound):
		return Error(c, http.StatusNotFound, publicMessage(err, service.ErrNotFound, "resource not found"))
	case errors.Is(err, service.ErrConflict):
		return Error(c, http.StatusConflict, publicMessage(err, service.ErrConflict, "conflict"))
	case errors.Is(err, service.ErrAlreadyRefreshing):
		return Error(c, http.StatusConflict, "refresh already running")
	case errors.Is(err, service.ErrFeedFetch):
		return Error(c, http.StatusBadGateway, publicMessage(err, service.ErrFeedFetch, "feed fetch failed"))
	default:
		logger.Error("request failed", "module", "handler", "action", c.Request().Method, "resource", c.Path(), "result", "failed", "error", err)
		return Error(c, http.StatusInternalServerError, "internal error")
	}
}

// publicMessage strips the sentinel from either end of err's text. A bare
// sentinel yields fallback.
func publicMessage(err, sentinel error, fallback string) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	if msg == "" || msg == sentinel.Error() {
		return fallback
	}
	return msg
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
