package handler // declare the package name; contains HTTP handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Health is a liveness probe.  It returns a plain text "ok" with 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// ReadyHandler reports whether the optional backends are reachable.  A nil
// backend is reported as "disabled" and does not fail the check.
type ReadyHandler struct {
	DB    *sql.DB
	Redis *redis.Client
}

// Ready pings every configured backend and answers 503 if any is down.
func (h *ReadyHandler) Ready(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	out := echo.Map{"mysql": "disabled", "redis": "disabled"}
	if h.DB != nil {
		out["mysql"] = "ok"
		if err := h.DB.PingContext(ctx); err != nil {
			out["mysql"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	if h.Redis != nil {
		out["redis"] = "ok"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			out["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	return c.JSON(status, out)
}
