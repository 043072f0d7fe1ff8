// Package queue carries booking events over RabbitMQ: the payload, a
// publisher used at checkout and the background consumer that records
// confirmed bookings in a log file.
package queue

import (
	"time"

	"github.com/iliyamo/cineverse/internal/booking"
)

// BookingConfirmedEvent is published when a checkout succeeds.  It carries
// enough for downstream consumers to log or notify without reading the
// booking history.
type BookingConfirmedEvent struct {
	BookingID     string   `json:"booking_id"`
	UserID        string   `json:"user_id"`
	MovieID       string   `json:"movie_id"`
	MovieTitle    string   `json:"movie_title"`
	TheaterID     string   `json:"theater_id,omitempty"`
	TheaterName   string   `json:"theater_name,omitempty"`
	Showtime      string   `json:"showtime,omitempty"`
	Date          string   `json:"date,omitempty"`
	Format        string   `json:"format"`
	Seats         []string `json:"seats"`
	Total         int      `json:"total"`
	PaymentMethod string   `json:"payment_method"`
	ConfirmedAt   string   `json:"confirmed_at"`
}

// NewBookingConfirmedEvent flattens b into an event.
func NewBookingConfirmedEvent(b booking.Booking) BookingConfirmedEvent {
	ev := BookingConfirmedEvent{
		BookingID:     b.ID,
		UserID:        b.UserID,
		Showtime:      b.Time,
		Date:          b.Date,
		Format:        b.Format,
		Seats:         append([]string{}, b.Seats...),
		Total:         b.Total,
		PaymentMethod: b.PaymentMethod,
		ConfirmedAt:   b.BookedAt.UTC().Format(time.RFC3339),
	}
	if b.Movie != nil {
		ev.MovieID, ev.MovieTitle = b.Movie.ID, b.Movie.Title
	}
	if b.Theater != nil {
		ev.TheaterID, ev.TheaterName = b.Theater.ID, b.Theater.Name
	}
	return ev
}
