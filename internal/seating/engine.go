// Package seating owns the client-side seat selection for one showing.  It
// enforces the selection capacity, keeps booked seats out of the selection
// and derives the price quote from the current selection and format.
package seating

import (
	"sort"

	"github.com/iliyamo/cineverse/internal/pricing"
)

// State is the observable state of a single seat.
type State string

const (
	StateAvailable State = "AVAILABLE"
	StateSelected  State = "SELECTED"
	StateBooked    State = "BOOKED"
)

// Signal reports the outcome of a Toggle.  Only SignalSelected and
// SignalDeselected change the selection; the rest are no-ops the
// presentation layer may surface as feedback.
type Signal string

const (
	SignalSelected         Signal = "SELECTED"
	SignalDeselected       Signal = "DESELECTED"
	SignalCapacityExceeded Signal = "CAPACITY_EXCEEDED"
	SignalBookedSeat       Signal = "BOOKED_SEAT"
	SignalUnknownSeat      Signal = "UNKNOWN_SEAT"
)

// Changed reports whether the signal corresponds to a selection change.
func (s Signal) Changed() bool {
	return s == SignalSelected || s == SignalDeselected
}

// Engine holds the selection for one showing.  It is not safe for
// concurrent use; the owner serialises calls.
type Engine struct {
	layout   Layout
	booked   map[string]struct{}
	selected map[string]struct{}
	movie    *pricing.Movie
	format   string
}

// NewEngine builds an engine for a showing.  Booked ids outside the layout
// are kept so they can never be selected, even if the layout changes later.
func NewEngine(layout Layout, booked []string, movie *pricing.Movie, format string) *Engine {
	e := &Engine{
		layout:   layout,
		booked:   make(map[string]struct{}, len(booked)),
		selected: make(map[string]struct{}, layout.capacity()),
		movie:    movie,
		format:   format,
	}
	for _, id := range booked {
		e.booked[id] = struct{}{}
	}
	return e
}

// Restore re-applies a previously persisted selection.  Invalid and booked
// ids are dropped and the capacity is honoured, so the result always
// satisfies the engine invariants.  It returns the ids that were dropped.
func (e *Engine) Restore(ids []string) []string {
	var dropped []string
	for _, id := range ids {
		if _, ok := e.selected[id]; ok {
			continue
		}
		if sig := e.Toggle(id); sig != SignalSelected {
			dropped = append(dropped, id)
		}
	}
	return dropped
}

// Toggle flips a seat between available and selected.
func (e *Engine) Toggle(id string) Signal {
	if _, ok := e.booked[id]; ok {
		return SignalBookedSeat
	}
	if !e.layout.Contains(id) {
		return SignalUnknownSeat
	}
	if _, ok := e.selected[id]; ok {
		delete(e.selected, id)
		return SignalDeselected
	}
	if len(e.selected) >= e.layout.capacity() {
		return SignalCapacityExceeded
	}
	e.selected[id] = struct{}{}
	return SignalSelected
}

// Selection returns the selected ids in plain string order, so "A10" sorts
// before "A2".  Clients rely on this ordering for display.
func (e *Engine) Selection() []string {
	out := make([]string, 0, len(e.selected))
	for id := range e.selected {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count is the number of selected seats.
func (e *Engine) Count() int { return len(e.selected) }

// Full reports whether the selection has reached capacity.
func (e *Engine) Full() bool { return len(e.selected) >= e.layout.capacity() }

// StateOf reports the state of one seat.  Ids outside the layout that are
// not booked are reported as available.
func (e *Engine) StateOf(id string) State {
	if _, ok := e.booked[id]; ok {
		return StateBooked
	}
	if _, ok := e.selected[id]; ok {
		return StateSelected
	}
	return StateAvailable
}

// Format returns the current presentation format.
func (e *Engine) Format() string { return e.format }

// SetFormat switches the format.  Seat states are untouched; the next Quote
// reflects the new format.
func (e *Engine) SetFormat(format string) { e.format = format }

// Quote prices the current selection.
func (e *Engine) Quote() pricing.Quote {
	return pricing.Calculate(e.movie, e.format, len(e.selected))
}

// Layout returns the hall layout.
func (e *Engine) Layout() Layout { return e.layout }

// Row is one rendered row of the seat map.
type Row struct {
	Label string     `json:"label"`
	Seats []SeatView `json:"seats"`
}

// SeatView is one rendered seat.
type SeatView struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	State  State  `json:"state"`
	Aisle  bool   `json:"aisle_before,omitempty"`
}

// Grid renders the full seat map in row order.
func (e *Engine) Grid() []Row {
	rows := make([]Row, 0, len(e.layout.Rows))
	for _, label := range e.layout.Rows {
		row := Row{Label: label, Seats: make([]SeatView, 0, e.layout.SeatsPerRow)}
		for n := 1; n <= e.layout.SeatsPerRow; n++ {
			id := SeatID(label, n)
			row.Seats = append(row.Seats, SeatView{
				ID:     id,
				Number: n,
				State:  e.StateOf(id),
				Aisle:  e.layout.AisleAfter > 0 && n == e.layout.AisleAfter+1,
			})
		}
		rows = append(rows, row)
	}
	return rows
}
