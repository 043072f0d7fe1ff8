package booking

import (
	"context"
	"time"

	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/pricing"
	"github.com/iliyamo/cineverse/internal/repository"
)

// HistoryLimit caps the number of bookings kept per user.
const HistoryLimit = 20

const historyKey = "bookings"

// Booking is a confirmed purchase.
type Booking struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	Movie         *catalog.Movie   `json:"movie,omitempty"`
	Theater       *catalog.Theater `json:"theater,omitempty"`
	Seats         []string         `json:"seats"`
	Time          string           `json:"time,omitempty"`
	Date          string           `json:"date,omitempty"`
	Language      string           `json:"language,omitempty"`
	Format        string           `json:"format"`
	Quote         pricing.Quote    `json:"quote"`
	Total         int              `json:"total"`
	PaymentMethod string           `json:"payment_method"`
	BookedAt      time.Time        `json:"bookedAt"`
}

// Prepend puts b in front of list and keeps at most HistoryLimit entries.
// list is not modified.
func Prepend(list []Booking, b Booking) []Booking {
	out := make([]Booking, 0, len(list)+1)
	out = append(out, b)
	out = append(out, list...)
	if len(out) > HistoryLimit {
		out = out[:HistoryLimit]
	}
	return out
}

// History is the booking list of one user, newest first.
type History struct {
	store repository.Store
}

func NewHistory(store repository.Store) *History { return &History{store: store} }

// List returns the bookings, newest first.
func (h *History) List(ctx context.Context) ([]Booking, error) {
	list := []Booking{}
	if _, err := repository.GetOr(ctx, h.store, historyKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Add records b as the newest booking.
func (h *History) Add(ctx context.Context, b Booking) error {
	list, err := h.List(ctx)
	if err != nil {
		return err
	}
	return h.store.Set(ctx, historyKey, Prepend(list, b))
}

// Latest returns the newest booking, if any.
func (h *History) Latest(ctx context.Context) (Booking, bool, error) {
	list, err := h.List(ctx)
	if err != nil || len(list) == 0 {
		return Booking{}, false, err
	}
	return list[0], true, nil
}
