package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/handler"
	"github.com/iliyamo/cineverse/internal/middleware"
)

// RegisterRoutes registers the probes.  /healthz is liveness, /readyz checks
// the backends.
func RegisterRoutes(e *echo.Echo, r *handler.ReadyHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", r.Ready)
}

// RegisterAuth registers authentication and profile routes.  Signup, login,
// refresh and logout live under /v1/auth and are rate limited by limit;
// profile endpoints require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/signup", a.Signup)
	g.POST("/register", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes either a refresh token in the body or a bearer token.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/me", a.UpdateMe)
}

// RegisterPublic registers the unauthenticated catalog.  cache wraps the
// read endpoints.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/movies", p.GetMovies)
	g.GET("/movies/:id", p.GetMovie)
	g.GET("/theaters", p.GetTheaters)
	g.GET("/theaters/:id", p.GetTheater)
	g.GET("/layout", p.GetLayout)
	g.GET("/search/movies", p.SearchMovies)
}

// RegisterPrefs registers preference routes.  They work for visitors and
// signed-in users alike.
func RegisterPrefs(e *echo.Echo, h *handler.PrefsHandler, jwtSecret string) {
	g := e.Group("/v1/prefs", middleware.OptionalJWT(jwtSecret))
	g.GET("", h.GetPrefs)
	g.GET("/theme", h.GetTheme)
	g.PUT("/theme", h.SetTheme)
	g.POST("/theme/toggle", h.ToggleTheme)
	g.PUT("/:key", h.PutPref)
}
