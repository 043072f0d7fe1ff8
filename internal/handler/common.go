package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/account"
	"github.com/iliyamo/cineverse/internal/booking"
	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/middleware"
	"github.com/iliyamo/cineverse/internal/quiz"
	"github.com/iliyamo/cineverse/internal/repository"
	"github.com/iliyamo/cineverse/internal/service"
)

// requestTimeout bounds every store round trip made on behalf of a request.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// scope returns the store namespace owning per-visitor state: the user when
// signed in, else the visitor session.
func scope(c echo.Context) string {
	if uid := middleware.UserID(c); uid != "" {
		return "user:" + uid
	}
	return "session:" + middleware.SessionID(c)
}

// writeError maps domain errors onto status codes.  Anything unknown is
// logged and reported as 500 without leaking the cause.
func writeError(c echo.Context, err error) error {
	var ve *account.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, booking.ErrNoSeats), errors.Is(err, booking.ErrNoMovie),
		errors.Is(err, booking.ErrInvalidCard), errors.Is(err, booking.ErrPaymentMethod):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrUnauthenticated), errors.Is(err, account.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, service.ErrQuizNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict), errors.Is(err, service.ErrSeatTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, quiz.ErrDataLoad), errors.Is(err, catalog.ErrDataLoad):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "request timed out"})
	}
	c.Logger().Errorf("[handler] %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
