package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SoldSeatRepo records the seats sold through checkout, per showing.  A
// showing is identified by an opaque key chosen by the caller (movie,
// theater, date and time).
type SoldSeatRepo struct {
	store Store
	mu    sync.Mutex
}

// NewSoldSeatRepo returns a SoldSeatRepo bound to store.
func NewSoldSeatRepo(store Store) *SoldSeatRepo { return &SoldSeatRepo{store: store} }

func soldKey(showing string) string { return "sold:" + showing }

// List returns the seats sold for showing, in sale order.
func (r *SoldSeatRepo) List(ctx context.Context, showing string) ([]string, error) {
	sold := []string{}
	if _, err := GetOr(ctx, r.store, soldKey(showing), &sold); err != nil {
		return nil, err
	}
	return sold, nil
}

// MarkSold appends seats to the sold list of showing.  When any of them is
// already sold nothing is written and ErrConflict is returned, wrapped with
// the offending ids.
func (r *SoldSeatRepo) MarkSold(ctx context.Context, showing string, seats []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sold, err := r.List(ctx, showing)
	if err != nil {
		return err
	}
	taken := make(map[string]bool, len(sold))
	for _, id := range sold {
		taken[id] = true
	}
	var clash []string
	for _, id := range seats {
		if taken[id] {
			clash = append(clash, id)
		}
	}
	if len(clash) > 0 {
		return fmt.Errorf("%w: %s already sold", ErrConflict, strings.Join(clash, ", "))
	}
	return r.store.Set(ctx, soldKey(showing), append(sold, seats...))
}

// Release takes seats off the sold list of showing.  Seats that are not sold
// are ignored.
func (r *SoldSeatRepo) Release(ctx context.Context, showing string, seats []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sold, err := r.List(ctx, showing)
	if err != nil {
		return err
	}
	drop := make(map[string]bool, len(seats))
	for _, id := range seats {
		drop[id] = true
	}
	kept := sold[:0]
	for _, id := range sold {
		if !drop[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return r.store.Remove(ctx, soldKey(showing))
	}
	return r.store.Set(ctx, soldKey(showing), kept)
}
