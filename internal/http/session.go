package http

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"readr/internal/logger"
)

const sessionMaxAge = 30 * 24 * 60 * 60

// NewSessionStore returns the cookie store behind form logins. Without a
// configured key a random one is used and sessions end with the process.
func NewSessionStore(key string) *sessions.CookieStore {
	authKey := []byte(key)
	if key == "" {
		authKey = securecookie.GenerateRandomKey(32)
		logger.Warn("session key not configured", "module", "http", "action", "init", "resource", "session", "result", "ok", "hint", "set READR_SESSION_KEY to keep sessions across restarts")
	}

	store := sessions.NewCookieStore(authKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
