package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cineverse/internal/booking"
	"github.com/iliyamo/cineverse/internal/middleware"
	"github.com/iliyamo/cineverse/internal/service"
)

// BookingHandler drives the purchase flow of the calling visitor.  The
// draft and the seat selection belong to the visitor session; checkout and
// history additionally need a signed-in user.
type BookingHandler struct {
	Bookings *service.BookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: s}
}

// GetDraft handles GET /v1/booking.
func (h *BookingHandler) GetDraft(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	d, err := h.Bookings.Draft(ctx, middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// PatchDraft handles PATCH /v1/booking.  Only the fields present in the
// body change.
func (h *BookingHandler) PatchDraft(c echo.Context) error {
	var in service.DraftInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	d, err := h.Bookings.UpdateDraft(ctx, middleware.SessionID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// GetSeats handles GET /v1/booking/seats.
func (h *BookingHandler) GetSeats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	m, err := h.Bookings.Seats(ctx, middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ToggleSeat handles POST /v1/booking/seats/:seat.  Rejected taps are not
// errors: the response is 200 and carries the signal.
func (h *BookingHandler) ToggleSeat(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	m, err := h.Bookings.ToggleSeat(ctx, middleware.SessionID(c), c.Param("seat"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// ClearSeats handles DELETE /v1/booking/seats.
func (h *BookingHandler) ClearSeats(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	m, err := h.Bookings.ClearSeats(ctx, middleware.SessionID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

type formatReq struct {
	Format string `json:"format"`
}

// SetFormat handles PUT /v1/booking/format.
func (h *BookingHandler) SetFormat(c echo.Context) error {
	var req formatReq
	if err := c.Bind(&req); err != nil || req.Format == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "format required"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	m, err := h.Bookings.SetFormat(ctx, middleware.SessionID(c), req.Format)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Checkout handles POST /v1/booking/checkout (protected).
func (h *BookingHandler) Checkout(c echo.Context) error {
	var pay booking.Payment
	if err := c.Bind(&pay); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	b, err := h.Bookings.Checkout(ctx, middleware.SessionID(c), middleware.UserID(c), pay)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GetHistory handles GET /v1/bookings (protected), newest first.
func (h *BookingHandler) GetHistory(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Bookings.History(ctx, middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetConfirmation handles GET /v1/booking/confirmation.  Reading it
// consumes the draft.
func (h *BookingHandler) GetConfirmation(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	conf, err := h.Bookings.Confirmation(ctx, middleware.SessionID(c), middleware.UserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, conf)
}
