// Package service orchestrates the domain packages for the HTTP layer.  It
// decides which store each piece of state lives in (session or durable),
// rebuilds engines from persisted state and emits events.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/cineverse/internal/booking"
	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/pricing"
	"github.com/iliyamo/cineverse/internal/repository"
	"github.com/iliyamo/cineverse/internal/seating"
)

// ErrSeatTaken is returned when a selected seat was booked by someone else
// between selection and checkout.
var ErrSeatTaken = errors.New("one or more seats are no longer available")

// BookingEvents receives confirmed bookings.
type BookingEvents interface {
	BookingConfirmed(ctx context.Context, b booking.Booking) error
}

// BookingService runs the purchase flow.  Drafts live in the session store
// under the visitor's session id; history and sold seats live in the
// durable store.
type BookingService struct {
	sessions repository.Store
	durable  repository.Store
	sold     *repository.SoldSeatRepo
	catalog  *catalog.Catalog
	layout   seating.Layout
	events   BookingEvents

	checkoutMu sync.Mutex
	now        func() time.Time
	newID      func() (string, error)
}

func NewBookingService(sessions, durable repository.Store, cat *catalog.Catalog, events BookingEvents) *BookingService {
	return &BookingService{
		sessions: sessions,
		durable:  durable,
		sold:     repository.NewSoldSeatRepo(durable),
		catalog:  cat,
		layout:   seating.DefaultLayout(),
		events:   events,
		now:      time.Now,
		newID:    booking.GenerateID,
	}
}

func (s *BookingService) drafts(sid string) *booking.Drafts {
	return booking.NewDrafts(repository.Scoped(s.sessions, "session:"+sid))
}

func (s *BookingService) history(uid string) *booking.History {
	return booking.NewHistory(repository.Scoped(s.durable, "user:"+uid))
}

// Catalog exposes the movie catalog.
func (s *BookingService) Catalog() *catalog.Catalog { return s.catalog }

// Draft returns the visitor's draft.
func (s *BookingService) Draft(ctx context.Context, sid string) (booking.Draft, error) {
	return s.drafts(sid).Get(ctx)
}

// DraftInput selects catalog entries by id; the other fields are copied as
// given.  Nil fields are left unchanged.
type DraftInput struct {
	MovieID   *string `json:"movie_id"`
	TheaterID *string `json:"theater_id"`
	Showtime  *string `json:"showtime"`
	Date      *string `json:"date"`
	Language  *string `json:"language"`
	Format    *string `json:"format"`
}

// UpdateDraft resolves in against the catalog and merges it into the draft.
// Unknown ids yield catalog.ErrNotFound.  Picking another showing drops the
// seat selection, since seats belong to a showing.
func (s *BookingService) UpdateDraft(ctx context.Context, sid string, in DraftInput) (booking.Draft, error) {
	p := booking.Patch{Showtime: in.Showtime, Date: in.Date, Language: in.Language, Format: in.Format}
	if in.MovieID != nil {
		m, err := s.catalog.Movie(*in.MovieID)
		if err != nil {
			return booking.Draft{}, err
		}
		p.Movie = &m
	}
	if in.TheaterID != nil {
		t, err := s.catalog.Theater(*in.TheaterID)
		if err != nil {
			return booking.Draft{}, err
		}
		p.Theater = &t
	}
	cur, err := s.drafts(sid).Get(ctx)
	if err != nil {
		return booking.Draft{}, err
	}
	if showingKey(cur) != showingKey(cur.Merge(p)) && len(cur.Seats) > 0 {
		p.Seats = []string{}
	}
	return s.drafts(sid).Update(ctx, p)
}

// SeatMap is the rendered seat selection for the draft's showing.
type SeatMap struct {
	Rows      []seating.Row  `json:"rows"`
	Selection []string       `json:"selection"`
	Count     int            `json:"count"`
	MaxSeats  int            `json:"max_seats"`
	Full      bool           `json:"full"`
	Format    string         `json:"format"`
	Quote     pricing.Quote  `json:"quote"`
	Signal    seating.Signal `json:"signal,omitempty"`
}

// showingKey identifies the showing a draft is for.
func showingKey(d booking.Draft) string {
	var movie, theater string
	if d.Movie != nil {
		movie = d.Movie.ID
	}
	if d.Theater != nil {
		theater = d.Theater.ID
	}
	return strings.Join([]string{movie, theater, d.Date, d.Showtime}, "|")
}

// booked returns the seats unavailable for the draft's showing: the fixed
// house set plus everything sold through checkout.
func (s *BookingService) booked(ctx context.Context, d booking.Draft) ([]string, error) {
	sold, err := s.sold.List(ctx, showingKey(d))
	if err != nil {
		return nil, err
	}
	return append(seating.DefaultBooked(), sold...), nil
}

// engine rebuilds the selection engine from the draft.  Seats that became
// unavailable are dropped from the selection.
func (s *BookingService) engine(ctx context.Context, d booking.Draft) (*seating.Engine, []string, error) {
	booked, err := s.booked(ctx, d)
	if err != nil {
		return nil, nil, err
	}
	var m *pricing.Movie
	if d.Movie != nil {
		m = d.Movie.Pricing()
	}
	e := seating.NewEngine(s.layout, booked, m, d.Format)
	dropped := e.Restore(d.Seats)
	return e, dropped, nil
}

func (s *BookingService) seatMap(e *seating.Engine, sig seating.Signal) SeatMap {
	return SeatMap{
		Rows:      e.Grid(),
		Selection: e.Selection(),
		Count:     e.Count(),
		MaxSeats:  e.Layout().MaxSeats,
		Full:      e.Full(),
		Format:    e.Format(),
		Quote:     e.Quote(),
		Signal:    sig,
	}
}

// Seats renders the seat map for the visitor's draft.
func (s *BookingService) Seats(ctx context.Context, sid string) (SeatMap, error) {
	d, err := s.drafts(sid).Get(ctx)
	if err != nil {
		return SeatMap{}, err
	}
	e, dropped, err := s.engine(ctx, d)
	if err != nil {
		return SeatMap{}, err
	}
	if len(dropped) > 0 {
		if _, err := s.drafts(sid).Update(ctx, booking.Patch{Seats: e.Selection()}); err != nil {
			return SeatMap{}, err
		}
	}
	return s.seatMap(e, ""), nil
}

// ToggleSeat flips one seat and persists the selection when it changed.
func (s *BookingService) ToggleSeat(ctx context.Context, sid, seatID string) (SeatMap, error) {
	d, err := s.drafts(sid).Get(ctx)
	if err != nil {
		return SeatMap{}, err
	}
	e, dropped, err := s.engine(ctx, d)
	if err != nil {
		return SeatMap{}, err
	}
	sig := e.Toggle(strings.ToUpper(strings.TrimSpace(seatID)))
	if sig.Changed() || len(dropped) > 0 {
		if _, err := s.drafts(sid).Update(ctx, booking.Patch{Seats: e.Selection()}); err != nil {
			return SeatMap{}, err
		}
	}
	return s.seatMap(e, sig), nil
}

// ClearSeats empties the selection.
func (s *BookingService) ClearSeats(ctx context.Context, sid string) (SeatMap, error) {
	d, err := s.drafts(sid).Update(ctx, booking.Patch{Seats: []string{}})
	if err != nil {
		return SeatMap{}, err
	}
	e, _, err := s.engine(ctx, d)
	if err != nil {
		return SeatMap{}, err
	}
	return s.seatMap(e, ""), nil
}

// SetFormat changes the format; the quote follows, the seats do not.
func (s *BookingService) SetFormat(ctx context.Context, sid, format string) (SeatMap, error) {
	d, err := s.drafts(sid).Update(ctx, booking.Patch{Format: &format})
	if err != nil {
		return SeatMap{}, err
	}
	e, _, err := s.engine(ctx, d)
	if err != nil {
		return SeatMap{}, err
	}
	return s.seatMap(e, ""), nil
}

// Checkout turns the visitor's draft into a confirmed booking for uid.
func (s *BookingService) Checkout(ctx context.Context, sid, uid string, pay booking.Payment) (booking.Booking, error) {
	s.checkoutMu.Lock()
	defer s.checkoutMu.Unlock()

	d, err := s.drafts(sid).Get(ctx)
	if err != nil {
		return booking.Booking{}, err
	}
	e, dropped, err := s.engine(ctx, d)
	if err != nil {
		return booking.Booking{}, err
	}
	if len(dropped) > 0 {
		if _, err := s.drafts(sid).Update(ctx, booking.Patch{Seats: e.Selection()}); err != nil {
			return booking.Booking{}, err
		}
		return booking.Booking{}, fmt.Errorf("%w: %s", ErrSeatTaken, strings.Join(dropped, ", "))
	}
	b, err := booking.NewBooking(booking.Order{
		Draft:   d,
		Seats:   e.Selection(),
		UserID:  uid,
		Payment: pay,
		At:      s.now(),
	})
	if err != nil {
		return booking.Booking{}, err
	}
	if b.ID, err = s.newID(); err != nil {
		return booking.Booking{}, err
	}

	if err := s.sold.MarkSold(ctx, showingKey(d), b.Seats); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return booking.Booking{}, fmt.Errorf("%w: %v", ErrSeatTaken, err)
		}
		return booking.Booking{}, err
	}
	if err := s.history(uid).Add(ctx, b); err != nil {
		if rerr := s.sold.Release(ctx, showingKey(d), b.Seats); rerr != nil {
			log.Errorf("[booking] releasing seats of %s: %v", b.ID, rerr)
		}
		return booking.Booking{}, err
	}
	if _, err := s.drafts(sid).Update(ctx, booking.Patch{BookingID: &b.ID}); err != nil {
		log.Warnf("[booking] draft of %s not updated: %v", b.ID, err)
	}
	if err := s.events.BookingConfirmed(ctx, b); err != nil {
		log.Warnf("[booking] event for %s not published: %v", b.ID, err)
	}
	return b, nil
}

// History lists uid's bookings, newest first.
func (s *BookingService) History(ctx context.Context, uid string) ([]booking.Booking, error) {
	return s.history(uid).List(ctx)
}

// Confirmation renders the confirmation and clears the draft.  The newest
// booking of uid wins over the draft; anonymous visitors only see the
// draft.  A confirmation always carries a booking id.
func (s *BookingService) Confirmation(ctx context.Context, sid, uid string) (booking.Confirmation, error) {
	d, err := s.drafts(sid).Get(ctx)
	if err != nil {
		return booking.Confirmation{}, err
	}
	var latest *booking.Booking
	if uid != "" {
		b, found, err := s.history(uid).Latest(ctx)
		if err != nil {
			return booking.Confirmation{}, err
		}
		if found {
			latest = &b
		}
	}
	c := booking.Confirm(latest, d)
	if c.BookingID == "" {
		if c.BookingID, err = s.newID(); err != nil {
			return booking.Confirmation{}, err
		}
	}
	if err := s.drafts(sid).Clear(ctx); err != nil {
		return booking.Confirmation{}, err
	}
	return c, nil
}
