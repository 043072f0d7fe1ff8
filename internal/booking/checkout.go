package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cineverse/internal/pricing"
)

var (
	// ErrNoSeats is returned when checking out an empty selection.
	ErrNoSeats = errors.New("select at least one seat")
	// ErrNoMovie is returned when the draft has no movie.
	ErrNoMovie = errors.New("select a movie first")
	// ErrUnauthenticated is returned when nobody is signed in.
	ErrUnauthenticated = errors.New("sign in to complete the booking")
	// ErrInvalidCard is returned for card numbers shorter than MinCardDigits.
	ErrInvalidCard = errors.New("please enter a valid card number")
	// ErrPaymentMethod is returned for unknown payment methods.
	ErrPaymentMethod = errors.New("unsupported payment method")
)

// Payment methods accepted at checkout.
const (
	MethodCard       = "card"
	MethodUPI        = "upi"
	MethodNetBanking = "netbanking"
)

// MinCardDigits is the shortest card number accepted.
const MinCardDigits = 12

// Payment describes how the visitor pays.  No money moves; only the shape
// of the input is checked.
type Payment struct {
	Method     string `json:"method"`
	CardNumber string `json:"card_number,omitempty"`
}

// Validate checks p.  An empty method means card.
func (p Payment) Validate() error {
	switch p.method() {
	case MethodCard:
		num := strings.Join(strings.Fields(p.CardNumber), "")
		if len(num) < MinCardDigits {
			return ErrInvalidCard
		}
		for _, r := range num {
			if r < '0' || r > '9' {
				return ErrInvalidCard
			}
		}
		return nil
	case MethodUPI, MethodNetBanking:
		return nil
	}
	return ErrPaymentMethod
}

func (p Payment) method() string {
	if p.Method == "" {
		return MethodCard
	}
	return strings.ToLower(p.Method)
}

// Order is everything checkout needs.  Seats must already be validated
// against the showing.
type Order struct {
	Draft   Draft
	Seats   []string
	UserID  string
	Payment Payment
	ID      string
	At      time.Time
}

// NewBooking validates o and builds the confirmed booking.  Prices are
// recomputed from the movie, format and seat count.
func NewBooking(o Order) (Booking, error) {
	if o.UserID == "" {
		return Booking{}, ErrUnauthenticated
	}
	if len(o.Seats) == 0 {
		return Booking{}, ErrNoSeats
	}
	d := o.Draft.WithDefaults()
	if d.Movie == nil {
		return Booking{}, ErrNoMovie
	}
	if err := o.Payment.Validate(); err != nil {
		return Booking{}, err
	}
	q := Quote(d, len(o.Seats))
	return Booking{
		ID:            o.ID,
		UserID:        o.UserID,
		Movie:         d.Movie,
		Theater:       d.Theater,
		Seats:         append([]string{}, o.Seats...),
		Time:          d.Showtime,
		Date:          d.Date,
		Language:      d.Language,
		Format:        d.Format,
		Quote:         q,
		Total:         q.Total,
		PaymentMethod: o.Payment.method(),
		BookedAt:      o.At.UTC(),
	}, nil
}

// Quote prices d for the given number of seats.
func Quote(d Draft, seats int) pricing.Quote {
	var m *pricing.Movie
	if d.Movie != nil {
		m = d.Movie.Pricing()
	}
	return pricing.Calculate(m, d.Format, seats)
}
