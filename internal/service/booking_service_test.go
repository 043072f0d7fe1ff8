package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse/internal/booking"
	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/repository"
	"github.com/iliyamo/cineverse/internal/seating"
)

type recordedEvents struct {
	got []booking.Booking
	err error
}

func (r *recordedEvents) BookingConfirmed(_ context.Context, b booking.Booking) error {
	r.got = append(r.got, b)
	return r.err
}

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]catalog.Movie{{ID: "m1", Title: "Interstellar", Price: map[string]int{"standard": 400, "imax": 600}}},
		[]catalog.Theater{{ID: "t1", Name: "PVR Phoenix"}},
	)
}

func newBookingService(events BookingEvents) *BookingService {
	s := NewBookingService(repository.NewMemoryStore(), repository.NewMemoryStore(), testCatalog(), events)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	n := 0
	s.newID = func() (string, error) {
		n++
		return []string{"CVXAAAAAAA", "CVXBBBBBBB", "CVXCCCCCCC"}[n-1], nil
	}
	return s
}

func str(s string) *string { return &s }

func choose(t *testing.T, s *BookingService, sid string) {
	t.Helper()
	_, err := s.UpdateDraft(context.Background(), sid, DraftInput{
		MovieID: str("m1"), TheaterID: str("t1"), Showtime: str("7:00 PM"), Date: str("2026-03-01"),
	})
	require.NoError(t, err)
}

func TestBookingService_UpdateDraftUnknownMovie(t *testing.T) {
	s := newBookingService(&recordedEvents{})
	_, err := s.UpdateDraft(context.Background(), "sid", DraftInput{MovieID: str("nope")})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestBookingService_ToggleAndQuote(t *testing.T) {
	ctx := context.Background()
	s := newBookingService(&recordedEvents{})
	choose(t, s, "sid")

	for _, id := range []string{"A1", "a4", "A11"} {
		_, err := s.ToggleSeat(ctx, "sid", id)
		require.NoError(t, err)
	}
	m, err := s.ToggleSeat(ctx, "sid", "A2")
	require.NoError(t, err)
	assert.Equal(t, seating.SignalBookedSeat, m.Signal)
	assert.Equal(t, []string{"A1", "A11", "A4"}, m.Selection)
	assert.Equal(t, 1248, m.Quote.Total)

	m, err = s.SetFormat(ctx, "sid", "IMAX")
	require.NoError(t, err)
	assert.Equal(t, 1800, m.Quote.Base)
	assert.Equal(t, 3, m.Count)

	d, err := s.Draft(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A11", "A4"}, d.Seats)

	m, err = s.ClearSeats(ctx, "sid")
	require.NoError(t, err)
	assert.Zero(t, m.Count)
}

func TestBookingService_ChangingShowingDropsSeats(t *testing.T) {
	ctx := context.Background()
	s := newBookingService(&recordedEvents{})
	choose(t, s, "sid")
	_, err := s.ToggleSeat(ctx, "sid", "B1")
	require.NoError(t, err)

	d, err := s.UpdateDraft(ctx, "sid", DraftInput{Language: str("Hindi")})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, d.Seats)

	d, err = s.UpdateDraft(ctx, "sid", DraftInput{Showtime: str("10:00 PM")})
	require.NoError(t, err)
	assert.Empty(t, d.Seats)
}

func TestBookingService_CheckoutFlow(t *testing.T) {
	ctx := context.Background()
	events := &recordedEvents{err: errors.New("broker down")}
	s := newBookingService(events)
	choose(t, s, "sid")
	_, err := s.ToggleSeat(ctx, "sid", "C3")
	require.NoError(t, err)

	_, err = s.Checkout(ctx, "sid", "", booking.Payment{CardNumber: "424242424242"})
	assert.ErrorIs(t, err, booking.ErrUnauthenticated)

	_, err = s.Checkout(ctx, "sid", "u1", booking.Payment{CardNumber: "4242"})
	assert.ErrorIs(t, err, booking.ErrInvalidCard)

	b, err := s.Checkout(ctx, "sid", "u1", booking.Payment{CardNumber: "424242424242"})
	require.NoError(t, err, "publish failures do not fail checkout")
	assert.Equal(t, "CVXAAAAAAA", b.ID)
	assert.Equal(t, 416, b.Total)
	require.Len(t, events.got, 1)

	hist, err := s.History(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, b.ID, hist[0].ID)

	d, err := s.Draft(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, b.ID, d.BookingID)

	c, err := s.Confirmation(ctx, "sid", "u1")
	require.NoError(t, err)
	assert.Equal(t, b.ID, c.BookingID)
	assert.Equal(t, 416, c.Total)

	d, err = s.Draft(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, d.Movie, "confirmation clears the draft")
}

func TestBookingService_SoldSeatsBlockOthers(t *testing.T) {
	ctx := context.Background()
	s := newBookingService(&recordedEvents{})
	choose(t, s, "alice")
	choose(t, s, "bob")

	_, err := s.ToggleSeat(ctx, "alice", "E5")
	require.NoError(t, err)
	_, err = s.ToggleSeat(ctx, "bob", "E5")
	require.NoError(t, err)

	_, err = s.Checkout(ctx, "alice", "u1", booking.Payment{Method: booking.MethodUPI})
	require.NoError(t, err)

	_, err = s.Checkout(ctx, "bob", "u2", booking.Payment{Method: booking.MethodUPI})
	assert.ErrorIs(t, err, ErrSeatTaken)

	m, err := s.Seats(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, m.Selection)
	m, err = s.ToggleSeat(ctx, "bob", "E5")
	require.NoError(t, err)
	assert.Equal(t, seating.SignalBookedSeat, m.Signal)
}

func TestBookingService_ConfirmationWithoutBooking(t *testing.T) {
	s := newBookingService(&recordedEvents{})
	c, err := s.Confirmation(context.Background(), "sid", "")
	require.NoError(t, err)
	assert.Equal(t, "CVXAAAAAAA", c.BookingID)
	assert.Equal(t, booking.DefaultFormat, c.Format)
}

// failingHistory rejects writes of booking history while fail is set.
type failingHistory struct {
	repository.Store
	fail bool
}

func (f *failingHistory) Set(ctx context.Context, key string, value any) error {
	if f.fail && strings.HasSuffix(key, ":bookings") {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func TestBookingService_CheckoutReleasesSeatsWhenHistoryFails(t *testing.T) {
	ctx := context.Background()
	durable := &failingHistory{Store: repository.NewMemoryStore(), fail: true}
	s := NewBookingService(repository.NewMemoryStore(), durable, testCatalog(), &recordedEvents{})
	choose(t, s, "sid")
	_, err := s.ToggleSeat(ctx, "sid", "D6")
	require.NoError(t, err)

	_, err = s.Checkout(ctx, "sid", "u1", booking.Payment{Method: booking.MethodUPI})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSeatTaken)

	m, err := s.Seats(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, []string{"D6"}, m.Selection, "seat is still free and selected")

	durable.fail = false
	b, err := s.Checkout(ctx, "sid", "u1", booking.Payment{Method: booking.MethodUPI})
	require.NoError(t, err)
	assert.Equal(t, []string{"D6"}, b.Seats)
}
