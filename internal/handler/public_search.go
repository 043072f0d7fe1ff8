package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// SearchMovies handles GET /v1/search/movies?q=&limit=.  It backs the title
// suggestions box: case-insensitive substring match, prefix hits first.
func (h *PublicHandler) SearchMovies(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 {
		limit = 5
	}
	if limit > 50 {
		limit = 50
	}

	items := h.Catalog.Search(q, limit)
	return c.JSON(http.StatusOK, echo.Map{
		"query": q,
		"items": items,
		"total": len(items),
	})
}
