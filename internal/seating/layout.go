package seating

import (
	"strconv"
	"strings"
)

// Layout describes the seat grid of a hall.  Rows are single upper-case
// letters; seats are numbered from 1 to SeatsPerRow.  AisleAfter is only a
// rendering hint: a gap is drawn after that seat number (0 means none).
type Layout struct {
	Rows        []string `json:"rows"`
	SeatsPerRow int      `json:"seats_per_row"`
	AisleAfter  int      `json:"aisle_after"`
	MaxSeats    int      `json:"max_seats"`
}

// MaxSeats is the default selection capacity.
const MaxSeats = 6

// DefaultLayout is the seven-row, twelve-seat hall used for every showing.
func DefaultLayout() Layout {
	return Layout{
		Rows:        []string{"A", "B", "C", "D", "E", "F", "G"},
		SeatsPerRow: 12,
		AisleAfter:  6,
		MaxSeats:    MaxSeats,
	}
}

// DefaultBooked returns the pre-seeded booked seats of a showing.
func DefaultBooked() []string {
	return []string{
		"A2", "A3", "A9", "A10", "B5", "B6", "B11", "C1", "C2", "C7", "C12",
		"D4", "D5", "D6", "E3", "E8", "E9", "F6", "F7", "G2", "G10", "G11",
	}
}

// SeatID formats a row label and seat number, e.g. ("A", 2) -> "A2".
func SeatID(row string, number int) string {
	return row + strconv.Itoa(number)
}

// ParseSeatID splits an id like "B11" into its row and number.  It reports
// false for anything that is not one upper-case letter followed by a
// positive integer without leading zeros.
func ParseSeatID(id string) (string, int, bool) {
	if len(id) < 2 {
		return "", 0, false
	}
	row := id[:1]
	if row[0] < 'A' || row[0] > 'Z' {
		return "", 0, false
	}
	digits := id[1:]
	if strings.HasPrefix(digits, "0") {
		return "", 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return "", 0, false
	}
	return row, n, true
}

// Contains reports whether id addresses a seat inside the layout.
func (l Layout) Contains(id string) bool {
	row, n, ok := ParseSeatID(id)
	if !ok || n > l.SeatsPerRow {
		return false
	}
	for _, r := range l.Rows {
		if r == row {
			return true
		}
	}
	return false
}

// capacity returns MaxSeats, defaulting to the package constant.
func (l Layout) capacity() int {
	if l.MaxSeats > 0 {
		return l.MaxSeats
	}
	return MaxSeats
}
