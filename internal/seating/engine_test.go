package seating_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse/internal/pricing"
	"github.com/iliyamo/cineverse/internal/seating"
)

func newEngine() *seating.Engine {
	movie := &pricing.Movie{Title: "Dune", Price: map[string]int{"standard": 400, "imax": 650}}
	return seating.NewEngine(seating.DefaultLayout(), seating.DefaultBooked(), movie, "Standard")
}

func TestToggle_SelectAndDeselect(t *testing.T) {
	e := newEngine()

	assert.Equal(t, seating.SignalSelected, e.Toggle("A1"))
	assert.Equal(t, []string{"A1"}, e.Selection())
	assert.Equal(t, seating.StateSelected, e.StateOf("A1"))

	assert.Equal(t, seating.SignalDeselected, e.Toggle("A1"))
	assert.Empty(t, e.Selection())
	assert.Equal(t, seating.StateAvailable, e.StateOf("A1"))
}

func TestToggle_BookedSeatIsNoOp(t *testing.T) {
	e := newEngine()

	assert.Equal(t, seating.SignalBookedSeat, e.Toggle("A2"))
	assert.Empty(t, e.Selection())
	assert.Equal(t, seating.StateBooked, e.StateOf("A2"))
	assert.False(t, seating.SignalBookedSeat.Changed())
}

func TestToggle_UnknownSeat(t *testing.T) {
	e := newEngine()

	for _, id := range []string{"", "A", "H1", "A0", "A13", "a1", "A01", "1A"} {
		assert.Equal(t, seating.SignalUnknownSeat, e.Toggle(id), id)
	}
	assert.Zero(t, e.Count())
}

func TestToggle_CapacityExceeded(t *testing.T) {
	e := newEngine()
	for _, id := range []string{"A1", "A4", "A5", "A6", "A7", "A8"} {
		require.Equal(t, seating.SignalSelected, e.Toggle(id))
	}
	before := e.Selection()
	require.True(t, e.Full())

	assert.Equal(t, seating.SignalCapacityExceeded, e.Toggle("B1"))
	assert.Equal(t, before, e.Selection())

	// deselecting still works at capacity
	assert.Equal(t, seating.SignalDeselected, e.Toggle("A1"))
	assert.Equal(t, seating.SignalSelected, e.Toggle("B1"))
}

func TestSelection_LexicographicOrder(t *testing.T) {
	e := newEngine()
	for _, id := range []string{"B1", "A12", "A4", "A11"} {
		require.Equal(t, seating.SignalSelected, e.Toggle(id))
	}

	assert.Equal(t, []string{"A11", "A12", "A4", "B1"}, e.Selection())
}

func TestToggle_PairRestoresSelection(t *testing.T) {
	e := newEngine()
	e.Toggle("C3")
	e.Toggle("D8")
	before := e.Selection()

	e.Toggle("E1")
	e.Toggle("E1")

	assert.Equal(t, before, e.Selection())
}

func TestToggle_RandomSequencesKeepInvariants(t *testing.T) {
	layout := seating.DefaultLayout()
	booked := map[string]bool{}
	for _, id := range seating.DefaultBooked() {
		booked[id] = true
	}
	rng := rand.New(rand.NewPCG(7, 11))

	for run := 0; run < 50; run++ {
		e := newEngine()
		for step := 0; step < 200; step++ {
			row := layout.Rows[rng.IntN(len(layout.Rows))]
			id := seating.SeatID(row, 1+rng.IntN(layout.SeatsPerRow))
			e.Toggle(id)

			sel := e.Selection()
			require.LessOrEqual(t, len(sel), seating.MaxSeats)
			for _, s := range sel {
				require.False(t, booked[s], "booked seat %s entered the selection", s)
			}
		}
	}
}

func TestSetFormat_RepricesWithoutTouchingSeats(t *testing.T) {
	e := newEngine()
	e.Toggle("A1")
	e.Toggle("A4")

	assert.Equal(t, pricing.Quote{BasePerSeat: 400, Base: 800, Convenience: 32, Total: 832}, e.Quote())

	e.SetFormat("IMAX")
	assert.Equal(t, []string{"A1", "A4"}, e.Selection())
	assert.Equal(t, pricing.Quote{BasePerSeat: 650, Base: 1300, Convenience: 52, Total: 1352}, e.Quote())

	e.SetFormat("Premium")
	assert.Equal(t, 400, e.Quote().BasePerSeat, "premium falls back to standard price")
}

func TestRestore_DropsInvalidEntries(t *testing.T) {
	e := newEngine()

	dropped := e.Restore([]string{"A1", "A2", "Z9", "A1", "B1", "B2", "B3", "B4", "B7", "B8"})

	assert.Equal(t, []string{"A1", "B1", "B2", "B3", "B4", "B7"}, e.Selection())
	assert.Equal(t, []string{"A2", "Z9", "B8"}, dropped)
}

func TestGrid(t *testing.T) {
	e := newEngine()
	e.Toggle("G1")

	grid := e.Grid()
	require.Len(t, grid, 7)
	last := grid[6]
	assert.Equal(t, "G", last.Label)
	require.Len(t, last.Seats, 12)
	assert.Equal(t, seating.StateSelected, last.Seats[0].State)
	assert.Equal(t, seating.StateBooked, last.Seats[1].State)
	assert.True(t, last.Seats[6].Aisle, "aisle sits before seat 7")
	assert.False(t, last.Seats[5].Aisle)
}

func TestParseSeatID(t *testing.T) {
	row, n, ok := seating.ParseSeatID("C12")
	require.True(t, ok)
	assert.Equal(t, "C", row)
	assert.Equal(t, 12, n)

	_, _, ok = seating.ParseSeatID("C-1")
	assert.False(t, ok)
}
