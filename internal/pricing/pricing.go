// Package pricing derives ticket quotes from a movie's price table, the
// selected presentation format and the number of seats.
package pricing

// Format keys used in a movie's price table.
const (
	KeyStandard = "standard"
	KeyPremium  = "premium"
	KeyIMAX     = "imax"
)

// DefaultSeatPrice is charged per seat when a movie carries no usable price.
const DefaultSeatPrice = 400

// ConvenienceFeePercent is applied to the base amount of every quote.
const ConvenienceFeePercent = 4

// Movie is the subset of a catalog movie needed to price a showing.  Price is
// keyed by format key (standard, premium, imax); missing keys fall back to
// the standard price and then to DefaultSeatPrice.
type Movie struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Price map[string]int `json:"price,omitempty"`
}

// Quote is a derived price breakdown.  It is never stored or patched; every
// selection change produces a new one.
type Quote struct {
	BasePerSeat int `json:"base_per_seat"`
	Base        int `json:"base"`
	Convenience int `json:"convenience"`
	Total       int `json:"total"`
}

// FormatKey maps a display format onto its price table key.  Anything other
// than IMAX or Premium is priced as standard.
func FormatKey(format string) string {
	switch format {
	case "IMAX":
		return KeyIMAX
	case "Premium":
		return KeyPremium
	default:
		return KeyStandard
	}
}

// BasePerSeat resolves the per-seat price for a format.  Zero prices count
// as absent.
func BasePerSeat(movie *Movie, format string) int {
	if movie == nil {
		return DefaultSeatPrice
	}
	if p := movie.Price[FormatKey(format)]; p > 0 {
		return p
	}
	if p := movie.Price[KeyStandard]; p > 0 {
		return p
	}
	return DefaultSeatPrice
}

// Calculate returns the quote for count seats.  A nil movie or a
// non-positive count yields the zero quote.
func Calculate(movie *Movie, format string, count int) Quote {
	if movie == nil || count <= 0 {
		return Quote{}
	}
	per := BasePerSeat(movie, format)
	base := per * count
	conv := ConvenienceFee(base)
	return Quote{BasePerSeat: per, Base: base, Convenience: conv, Total: base + conv}
}

// ConvenienceFee is ConvenienceFeePercent of base rounded half up.  Integer
// arithmetic keeps the result exact for any non-negative base.
func ConvenienceFee(base int) int {
	if base <= 0 {
		return 0
	}
	return (base*ConvenienceFeePercent + 50) / 100
}
