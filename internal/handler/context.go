package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// SetUserID stores the authenticated user on the request context.
func SetUserID(c echo.Context, userID int64) {
	c.Set(userIDKey, userID)
}

// UserID returns the authenticated user, or 0 outside the auth middleware.
func UserID(c echo.Context) int64 {
	id, _ := c.Get(userIDKey).(int64)
	return id
}

// AuthCookieName carries the JWT for clients that cannot set headers.
const AuthCookieName = "readr_auth"

// RequestToken reads a bearer token from the Authorization header, falling
// back to the auth cookie.
func RequestToken(c echo.Context) string {
	if header := c.Request().Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
