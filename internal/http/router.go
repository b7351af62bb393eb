package http

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "readr/docs"
	"readr/internal/handler"
	"readr/internal/service"
)

// Handlers are the route groups mounted by NewRouter.
type Handlers struct {
	Auth        *handler.AuthHandler
	Collections *handler.CollectionHandler
	Feeds       *handler.FeedHandler
	Items       *handler.ItemHandler
	OPML        *handler.OPMLHandler
	Preferences *handler.PreferencesHandler
	System      *handler.SystemHandler
	Legacy      *handler.LegacyHandler
}

func NewRouter(
	handlers Handlers,
	authService service.AuthService,
	sessionStore sessions.Store,
	staticDir string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	handlers.Auth.RegisterPublicRoutes(api)

	protected := api.Group("", JWTAuthMiddleware(authService))
	handlers.Auth.RegisterProtectedRoutes(protected)
	handlers.Collections.RegisterRoutes(protected)
	handlers.Feeds.RegisterRoutes(protected)
	handlers.Items.RegisterRoutes(protected)
	handlers.OPML.RegisterRoutes(protected)
	handlers.Preferences.RegisterRoutes(protected)
	handlers.System.RegisterRoutes(protected)

	if handlers.Legacy != nil {
		handlers.Legacy.RegisterPublicRoutes(e.Group(""))
		handlers.Legacy.RegisterProtectedRoutes(e.Group("", SessionAuthMiddleware(sessionStore)))
	}

	registerStatic(e, staticDir)

	return e
}
