package http

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	"readr/internal/handler"
	"readr/internal/logger"
	"readr/internal/service"
)

// RequestLoggerMiddleware logs every request at a level picked by status.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			log := logger.Debug
			result := "ok"
			switch {
			case status >= 500:
				log, result = logger.Error, "failed"
			case status >= 400:
				log, result = logger.Warn, "failed"
			}
			log("http request",
				"module", "http",
				"action", "request",
				"resource", "http",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"user_id", handler.UserID(c),
			)
			return nil
		}
	}
}

// JWTAuthMiddleware accepts a bearer token or the auth cookie and stores the
// token's user on the context.
func JWTAuthMiddleware(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := handler.RequestToken(c)
			if token == "" {
				logAuthFailure(c, "auth missing")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "missing authentication",
				})
			}

			userID, err := authService.ValidateToken(c.Request().Context(), token)
			if err != nil {
				logAuthFailure(c, "auth invalid")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid token",
				})
			}

			handler.SetUserID(c, userID)
			return next(c)
		}
	}
}

// SessionAuthMiddleware requires a form-login session cookie.
func SessionAuthMiddleware(store sessions.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := store.Get(c.Request(), handler.SessionName)
			if err != nil {
				logAuthFailure(c, "session invalid")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "not logged in",
				})
			}
			userID, ok := session.Values[handler.SessionUserKey].(int64)
			if !ok || userID == 0 {
				logAuthFailure(c, "session missing")
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "not logged in",
				})
			}

			handler.SetUserID(c, userID)
			return next(c)
		}
	}
}

func logAuthFailure(c echo.Context, msg string) {
	logger.Warn(msg,
		"module", "http",
		"action", "request",
		"resource", "auth",
		"result", "failed",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"remote_ip", c.RealIP(),
	)
}
