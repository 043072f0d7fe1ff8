package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/prefs"
	"github.com/iliyamo/cineverse/internal/repository"
)

// PrefsHandler reads and writes UI preferences of the caller.  Signed-in
// users keep theirs across devices; visitors keep them per session.
type PrefsHandler struct {
	Store repository.Store
}

func (h *PrefsHandler) prefs(c echo.Context) *prefs.Prefs {
	return prefs.New(repository.Scoped(h.Store, scope(c)))
}

// GetTheme handles GET /v1/prefs/theme.
func (h *PrefsHandler) GetTheme(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.prefs(c).Theme(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"theme": t})
}

type themeReq struct {
	Theme string `json:"theme"`
}

// SetTheme handles PUT /v1/prefs/theme.
func (h *PrefsHandler) SetTheme(c echo.Context) error {
	var req themeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	t, ok := prefs.ParseTheme(req.Theme)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "theme must be light or dark"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.prefs(c).SetTheme(ctx, t); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"theme": t})
}

// ToggleTheme handles POST /v1/prefs/theme/toggle.
func (h *PrefsHandler) ToggleTheme(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.prefs(c).ToggleTheme(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"theme": t})
}

// GetPrefs handles GET /v1/prefs.
func (h *PrefsHandler) GetPrefs(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	all, err := h.prefs(c).All(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, all)
}

// PutPref handles PUT /v1/prefs/:key with any JSON value as body.
func (h *PrefsHandler) PutPref(c echo.Context) error {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "key required"})
	}
	var v json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&v); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.prefs(c).Set(ctx, key, v); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
