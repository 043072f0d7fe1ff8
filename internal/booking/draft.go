// Package booking holds the ticket purchase flow: the in-progress draft a
// visitor builds up page by page, checkout into a confirmed Booking, the
// per-user booking history and the confirmation view.
package booking

import (
	"context"

	"github.com/iliyamo/cineverse/internal/catalog"
	"github.com/iliyamo/cineverse/internal/repository"
)

const (
	DefaultLanguage = "English"
	DefaultFormat   = "Standard"
)

const draftKey = "booking"

// Draft is the booking being assembled.  Movie and Theater are copies of
// the catalog entries chosen, so later catalog edits do not alter it.
type Draft struct {
	Movie     *catalog.Movie   `json:"movie,omitempty"`
	Theater   *catalog.Theater `json:"theater,omitempty"`
	Showtime  string           `json:"showtime,omitempty"`
	Date      string           `json:"date,omitempty"`
	Language  string           `json:"language,omitempty"`
	Seats     []string         `json:"seats,omitempty"`
	Format    string           `json:"format,omitempty"`
	BookingID string           `json:"bookingId,omitempty"`
}

// WithDefaults fills the fields that have a read-time default.
func (d Draft) WithDefaults() Draft {
	if d.Language == "" {
		d.Language = DefaultLanguage
	}
	if d.Format == "" {
		d.Format = DefaultFormat
	}
	if d.Seats == nil {
		d.Seats = []string{}
	}
	return d
}

// Patch is a partial update.  Nil fields are left untouched; a non-nil
// empty Seats slice clears the selection.
type Patch struct {
	Movie     *catalog.Movie   `json:"movie,omitempty"`
	Theater   *catalog.Theater `json:"theater,omitempty"`
	Showtime  *string          `json:"showtime,omitempty"`
	Date      *string          `json:"date,omitempty"`
	Language  *string          `json:"language,omitempty"`
	Seats     []string         `json:"seats"`
	Format    *string          `json:"format,omitempty"`
	BookingID *string          `json:"bookingId,omitempty"`
}

// Merge applies p over d.
func (d Draft) Merge(p Patch) Draft {
	if p.Movie != nil {
		m := *p.Movie
		d.Movie = &m
	}
	if p.Theater != nil {
		t := *p.Theater
		d.Theater = &t
	}
	if p.Showtime != nil {
		d.Showtime = *p.Showtime
	}
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.Language != nil {
		d.Language = *p.Language
	}
	if p.Seats != nil {
		d.Seats = append([]string{}, p.Seats...)
	}
	if p.Format != nil {
		d.Format = *p.Format
	}
	if p.BookingID != nil {
		d.BookingID = *p.BookingID
	}
	return d
}

// Drafts persists one visitor's draft.  The store is expected to be scoped
// to that visitor's session.
type Drafts struct {
	store repository.Store
}

func NewDrafts(store repository.Store) *Drafts { return &Drafts{store: store} }

// Get returns the draft with defaults applied.  A visitor without a draft
// gets an empty one.
func (s *Drafts) Get(ctx context.Context) (Draft, error) {
	d, err := s.raw(ctx)
	return d.WithDefaults(), err
}

func (s *Drafts) raw(ctx context.Context) (Draft, error) {
	var d Draft
	if _, err := repository.GetOr(ctx, s.store, draftKey, &d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// Update merges p into the stored draft and returns the result with
// defaults applied.  Defaults are never written back.
func (s *Drafts) Update(ctx context.Context, p Patch) (Draft, error) {
	d, err := s.raw(ctx)
	if err != nil {
		return Draft{}, err
	}
	d = d.Merge(p)
	if err := s.store.Set(ctx, draftKey, d); err != nil {
		return Draft{}, err
	}
	return d.WithDefaults(), nil
}

// Clear forgets the draft.
func (s *Drafts) Clear(ctx context.Context) error {
	return s.store.Remove(ctx, draftKey)
}
