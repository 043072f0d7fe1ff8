package booking_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse/internal/booking"
	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/repository"
)

func ptr(s string) *string { return &s }

var dune = catalog.Movie{ID: "m3", Title: "Dune: Part Two", Price: map[string]int{"standard": 350, "imax": 600}}

func TestDrafts_MergeOnWrite(t *testing.T) {
	ctx := context.Background()
	drafts := booking.NewDrafts(repository.NewMemoryStore())

	d, err := drafts.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, booking.DefaultLanguage, d.Language)
	assert.Equal(t, booking.DefaultFormat, d.Format)
	assert.Empty(t, d.Seats)

	_, err = drafts.Update(ctx, booking.Patch{Movie: &dune, Showtime: ptr("7:00 PM")})
	require.NoError(t, err)
	d, err = drafts.Update(ctx, booking.Patch{Seats: []string{"B2", "B3"}, Format: ptr("IMAX")})
	require.NoError(t, err)

	assert.Equal(t, "Dune: Part Two", d.Movie.Title)
	assert.Equal(t, "7:00 PM", d.Showtime)
	assert.Equal(t, []string{"B2", "B3"}, d.Seats)
	assert.Equal(t, "IMAX", d.Format)

	d, err = drafts.Update(ctx, booking.Patch{Seats: []string{}})
	require.NoError(t, err)
	assert.Empty(t, d.Seats)
	assert.Equal(t, "7:00 PM", d.Showtime, "unrelated fields survive")

	require.NoError(t, drafts.Clear(ctx))
	d, err = drafts.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, d.Movie)
}

func TestHistory_NewestFirstCapped(t *testing.T) {
	ctx := context.Background()
	h := booking.NewHistory(repository.NewMemoryStore())

	_, found, err := h.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	for i := 0; i < booking.HistoryLimit+5; i++ {
		require.NoError(t, h.Add(ctx, booking.Booking{ID: string(rune('A' + i))}))
	}

	list, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, booking.HistoryLimit)
	assert.Equal(t, string(rune('A'+booking.HistoryLimit+4)), list[0].ID)

	latest, found, err := h.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, list[0].ID, latest.ID)
}

func TestPrepend_DoesNotMutate(t *testing.T) {
	in := []booking.Booking{{ID: "a"}, {ID: "b"}}
	out := booking.Prepend(in, booking.Booking{ID: "c"})
	assert.Equal(t, "a", in[0].ID)
	assert.Equal(t, "c", out[0].ID)
	assert.Len(t, out, 3)
}

func TestGenerateID(t *testing.T) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := booking.GenerateID()
		require.NoError(t, err)
		require.Len(t, id, 10)
		require.True(t, strings.HasPrefix(id, "CVX"))
		for _, r := range id[3:] {
			assert.Contains(t, alphabet, string(r))
		}
		seen[id] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestPayment_Validate(t *testing.T) {
	assert.ErrorIs(t, booking.Payment{CardNumber: "4111 1111 111"}.Validate(), booking.ErrInvalidCard)
	assert.NoError(t, booking.Payment{CardNumber: "4111 1111 1111"}.Validate())
	assert.ErrorIs(t, booking.Payment{CardNumber: "4111-1111-1111-1111"}.Validate(), booking.ErrInvalidCard)
	assert.NoError(t, booking.Payment{Method: "UPI"}.Validate())
	assert.ErrorIs(t, booking.Payment{Method: "cash"}.Validate(), booking.ErrPaymentMethod)
}

func TestNewBooking(t *testing.T) {
	at := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	order := booking.Order{
		Draft:   booking.Draft{Movie: &dune, Showtime: "7:00 PM", Date: "2026-03-01"},
		Seats:   []string{"C3", "C4"},
		UserID:  "u1",
		Payment: booking.Payment{CardNumber: "424242424242"},
		ID:      "CVXABCDEFG",
		At:      at,
	}

	b, err := booking.NewBooking(order)
	require.NoError(t, err)

	assert.Equal(t, 700, b.Quote.Base)
	assert.Equal(t, 28, b.Quote.Convenience)
	assert.Equal(t, 728, b.Total)
	assert.Equal(t, booking.DefaultFormat, b.Format)
	assert.Equal(t, booking.MethodCard, b.PaymentMethod)
	assert.Equal(t, at, b.BookedAt)

	noUser := order
	noUser.UserID = ""
	_, err = booking.NewBooking(noUser)
	assert.ErrorIs(t, err, booking.ErrUnauthenticated)

	noSeats := order
	noSeats.Seats = nil
	_, err = booking.NewBooking(noSeats)
	assert.ErrorIs(t, err, booking.ErrNoSeats)

	noMovie := order
	noMovie.Draft.Movie = nil
	_, err = booking.NewBooking(noMovie)
	assert.ErrorIs(t, err, booking.ErrNoMovie)
}

func TestConfirm(t *testing.T) {
	d := booking.Draft{Movie: &dune, Seats: []string{"A1"}, Showtime: "1:00 PM", BookingID: "CVXDRAFT00"}

	c := booking.Confirm(nil, d)
	assert.Equal(t, "CVXDRAFT00", c.BookingID)
	assert.Equal(t, []string{"A1"}, c.Seats)
	assert.Zero(t, c.Total)
	assert.Equal(t, booking.DefaultFormat, c.Format)

	latest := &booking.Booking{ID: "CVXLATEST0", Seats: []string{"D1", "D2"}, Total: 832, Format: "IMAX"}
	c = booking.Confirm(latest, d)
	assert.Equal(t, "CVXLATEST0", c.BookingID)
	assert.Equal(t, []string{"D1", "D2"}, c.Seats)
	assert.Equal(t, "1:00 PM", c.Time, "falls back to the draft")
	assert.Equal(t, 832, c.Total)
	assert.Equal(t, "IMAX", c.Format)
}
