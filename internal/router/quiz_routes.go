package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/handler"
	"github.com/iliyamo/cineverse/internal/middleware"
)

// RegisterQuiz registers quiz routes.  Sessions belong to the visitor
// session; results go to the signed-in user's board when there is one.
func RegisterQuiz(e *echo.Echo, h *handler.QuizHandler, jwtSecret string) {
	g := e.Group("/v1/quiz", middleware.OptionalJWT(jwtSecret))
	g.GET("/categories", h.GetCategories)
	g.GET("/progress", h.GetProgress)
	g.GET("/scores", h.GetScores)
	g.GET("/latest", h.GetLatest)

	g.POST("/sessions", h.Start)
	g.GET("/sessions/:id", h.GetState)
	g.POST("/sessions/:id/answer", h.Answer)
	g.POST("/sessions/:id/next", h.Next)
	g.DELETE("/sessions/:id", h.Terminate)
	g.GET("/sessions/:id/events", h.Events)
}
