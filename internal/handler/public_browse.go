// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the public catalog API.  These routes let anonymous
// visitors browse movies and theaters and preview the auditorium layout.

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/seating"
)

// PublicHandler serves the read-only catalog.
type PublicHandler struct {
	Catalog *catalog.Catalog
	Layout  seating.Layout
}

func NewPublicHandler(cat *catalog.Catalog) *PublicHandler {
	return &PublicHandler{Catalog: cat, Layout: seating.DefaultLayout()}
}

// GetMovies handles GET /v1/movies.  ?genre= filters case-sensitively on the
// genre as written in the catalog.
func (h *PublicHandler) GetMovies(c echo.Context) error {
	genre := c.QueryParam("genre")
	out := make([]catalog.Movie, 0)
	for _, m := range h.Catalog.Movies() {
		if genre != "" && m.Genre != genre {
			continue
		}
		out = append(out, m)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetMovie handles GET /v1/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
	m, err := h.Catalog.Movie(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// GetTheaters handles GET /v1/theaters.
func (h *PublicHandler) GetTheaters(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Catalog.Theaters()})
}

// GetTheater handles GET /v1/theaters/:id.
func (h *PublicHandler) GetTheater(c echo.Context) error {
	t, err := h.Catalog.Theater(c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// GetLayout handles GET /v1/layout: the auditorium grid with the fixed
// booked seats, for previews before a showing is picked.
func (h *PublicHandler) GetLayout(c echo.Context) error {
	e := seating.NewEngine(h.Layout, seating.DefaultBooked(), nil, "")
	return c.JSON(http.StatusOK, echo.Map{
		"rows":        e.Grid(),
		"aisle_after": h.Layout.AisleAfter,
		"max_seats":   h.Layout.MaxSeats,
	})
}
