package booking

import "github.com/iliyamo/cineverse/internal/catalog"

// Confirmation is what the visitor sees after paying.
type Confirmation struct {
	BookingID string           `json:"booking_id"`
	Movie     *catalog.Movie   `json:"movie,omitempty"`
	Theater   *catalog.Theater `json:"theater,omitempty"`
	Seats     []string         `json:"seats"`
	Time      string           `json:"time,omitempty"`
	Date      string           `json:"date,omitempty"`
	Format    string           `json:"format"`
	Total     int              `json:"total"`
}

// Confirm renders the confirmation from the newest booking, falling back
// field by field to the draft.  The total is only known from a booking.
func Confirm(latest *Booking, d Draft) Confirmation {
	d = d.WithDefaults()
	c := Confirmation{
		BookingID: d.BookingID,
		Movie:     d.Movie,
		Theater:   d.Theater,
		Seats:     d.Seats,
		Time:      d.Showtime,
		Date:      d.Date,
		Format:    d.Format,
	}
	if latest == nil {
		return c
	}
	if latest.ID != "" {
		c.BookingID = latest.ID
	}
	if latest.Movie != nil {
		c.Movie = latest.Movie
	}
	if latest.Theater != nil {
		c.Theater = latest.Theater
	}
	if latest.Seats != nil {
		c.Seats = latest.Seats
	}
	if latest.Time != "" {
		c.Time = latest.Time
	}
	if latest.Date != "" {
		c.Date = latest.Date
	}
	if latest.Format != "" {
		c.Format = latest.Format
	}
	c.Total = latest.Total
	return c
}
