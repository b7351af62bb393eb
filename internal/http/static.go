package http

import (
	nethttp "net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"readr/internal/logger"
)

const (
	// Bundler output under assets/ is content hashed.
	assetsPrefix       = "assets/"
	assetsCacheControl = "public, max-age=31536000, immutable"
)

// registerStatic serves the web client from dir. Unknown paths outside the
// API get index.html so client-side routes survive a reload.
func registerStatic(e *echo.Echo, dir string) {
	if dir == "" {
		return
	}
	indexPath := filepath.Join(dir, "index.html")
	info, err := os.Stat(indexPath)
	if err != nil || info.IsDir() {
		logger.Warn("static index missing", "module", "http", "action", "init", "resource", "static", "result", "failed", "path", indexPath)
		return
	}
	logger.Info("static assets enabled", "module", "http", "action", "init", "resource", "static", "result", "ok", "dir", dir)

	files := nethttp.FileServer(nethttp.Dir(dir))
	serveIndex := func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		return c.File(indexPath)
	}

	e.GET("/*", func(c echo.Context) error {
		requestPath := c.Request().URL.Path
		if isReservedPath(requestPath) {
			return echo.ErrNotFound
		}

		name := strings.TrimPrefix(path.Clean(requestPath), "/")
		if name == "" || name == "." || name == "index.html" {
			return serveIndex(c)
		}
		if fi, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); err == nil && !fi.IsDir() {
			if strings.HasPrefix(name, assetsPrefix) {
				c.Response().Header().Set(echo.HeaderCacheControl, assetsCacheControl)
			}
			files.ServeHTTP(c.Response(), c.Request())
			return nil
		}

		logger.Debug("static fallback", "module", "http", "action", "fetch", "resource", "static", "result", "ok", "path", requestPath)
		return serveIndex(c)
	})
}

func isReservedPath(p string) bool {
	for _, prefix := range []string{"/api", "/swagger"} {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
