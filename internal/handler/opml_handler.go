package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"readr/internal/config"
	"readr/internal/logger"
	"readr/internal/opml"
	"readr/internal/service"
)

const maxOPMLSize = 5 << 20

type OPMLHandler struct {
	service service.OPMLService
	tasks   service.ImportTaskService
}

func NewOPMLHandler(service service.OPMLService, tasks service.ImportTaskService) *OPMLHandler {
	return &OPMLHandler{service: service, tasks: tasks}
}

func (h *OPMLHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/opml/import", h.Import)
	g.GET("/opml/import/status", h.ImportStatus)
	g.DELETE("/opml/import", h.CancelImport)
	g.GET("/opml/export", h.Export)
}

type importStartedResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type importIdleResponse struct {
	Status string `json:"status"`
}

type importCancelledResponse struct {
	Cancelled bool `json:"cancelled"`
}

// Import subscribes to the feeds of an OPML document.
// @Summary Import OPML
// @Description Import feeds from an OPML file or body. Runs as a background task unless wait=true.
// @Tags opml
// @Accept multipart/form-data
// @Accept xml
// @Produce json
// @Security BearerAuth
// @Param file formData file false "OPML file to import"
// @Param wait query bool false "Import synchronously and return the result"
// @Success 200 {object} service.ImportResult
// @Success 202 {object} importStartedResponse
// @Failure 400 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Router /opml/import [post]
func (h *OPMLHandler) Import(c echo.Context) error {
	payload, status, err := readOPMLPayload(c)
	if err != nil {
		return c.JSON(status, errorResponse{Error: err.Error()})
	}
	if _, err := opml.Parse(bytes.NewReader(payload)); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid opml"})
	}

	userID := UserID(c)
	if boolQuery(c, "wait") {
		result, err := h.service.Import(c.Request().Context(), userID, bytes.NewReader(payload), "", nil)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}

	taskID, ctx := h.tasks.Start(userID)
	go h.runImport(ctx, userID, taskID, payload)
	return c.JSON(http.StatusAccepted, importStartedResponse{ID: taskID, Status: service.ImportRunning})
}

func (h *OPMLHandler) runImport(ctx context.Context, userID int64, taskID string, payload []byte) {
	result, err := h.service.Import(ctx, userID, bytes.NewReader(payload), "", func(p service.ImportProgress) {
		h.tasks.Update(userID, taskID, p)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("opml import failed", "module", "handler", "action", "import", "resource", "opml", "result", "failed", "user_id", userID, "error", err)
		}
		h.tasks.Fail(userID, taskID, err)
		return
	}
	h.tasks.Complete(userID, taskID, result)
}

// ImportStatus reports the caller's latest import task.
// @Summary OPML import status
// @Tags opml
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ImportTask
// @Router /opml/import/status [get]
func (h *OPMLHandler) ImportStatus(c echo.Context) error {
	task := h.tasks.Get(UserID(c))
	if task == nil {
		return c.JSON(http.StatusOK, importIdleResponse{Status: "idle"})
	}
	return c.JSON(http.StatusOK, task)
}

// CancelImport stops the caller's running import.
// @Summary Cancel OPML import
// @Tags opml
// @Produce json
// @Security BearerAuth
// @Success 200 {object} importCancelledResponse
// @Router /opml/import [delete]
func (h *OPMLHandler) CancelImport(c echo.Context) error {
	return c.JSON(http.StatusOK, importCancelledResponse{Cancelled: h.tasks.Cancel(UserID(c))})
}

// Export writes the caller's subscriptions as OPML.
// @Summary Export OPML
// @Description Export subscriptions grouped by category
// @Tags opml
// @Produce xml
// @Security BearerAuth
// @Success 200 {string} string "OPML file content"
// @Router /opml/export [get]
func (h *OPMLHandler) Export(c echo.Context) error {
	payload, err := h.service.Export(c.Request().Context(), UserID(c))
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+config.AppName+`.opml"`)
	return c.Blob(http.StatusOK, "application/xml", payload)
}

// readOPMLPayload reads a multipart "file" field or the raw body, capped at
// maxOPMLSize. On failure it returns the status to answer with.
func readOPMLPayload(c echo.Context) ([]byte, int, error) {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response().Writer, req.Body, maxOPMLSize)

	var reader io.Reader
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		file, err := c.FormFile("file")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				return nil, http.StatusBadRequest, errors.New("missing file")
			}
			return nil, http.StatusBadRequest, errors.New("invalid request")
		}
		if file.Size > maxOPMLSize {
			return nil, http.StatusRequestEntityTooLarge, errors.New("file too large")
		}
		src, err := file.Open()
		if err != nil {
			return nil, http.StatusBadRequest, errors.New("invalid request")
		}
		defer src.Close()
		reader = src
	} else {
		reader = req.Body
	}

	payload, err := io.ReadAll(io.LimitReader(reader, maxOPMLSize+1))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("file too large")
		}
		return nil, http.StatusBadRequest, errors.New("invalid request")
	}
	if len(payload) > maxOPMLSize {
		return nil, http.StatusRequestEntityTooLarge, errors.New("file too large")
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, http.StatusBadRequest, errors.New("empty opml")
	}
	return payload, http.StatusOK, nil
}
