package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/handler"
	"github.com/iliyamo/cineverse/internal/middleware"
)

// RegisterBooking registers the purchase flow.  The draft and seat routes
// only need the visitor session; checkout and history need a signed-in
// user and checkout is rate limited by limit.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/booking", middleware.OptionalJWT(jwtSecret))
	g.GET("", h.GetDraft)
	g.PATCH("", h.PatchDraft)
	g.GET("/seats", h.GetSeats)
	g.POST("/seats/:seat", h.ToggleSeat)
	g.DELETE("/seats", h.ClearSeats)
	g.PUT("/format", h.SetFormat)
	g.GET("/confirmation", h.GetConfirmation)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/booking/checkout", h.Checkout, limit)
	auth.GET("/bookings", h.GetHistory)
}
