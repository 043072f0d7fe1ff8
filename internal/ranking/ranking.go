// Package ranking keeps the best quiz results.  The ordering rule lives in
// Insert; Board persists the list and the most recent result through a
// repository.Store.
package ranking

import (
	"context"
	"sort"

	"github.com/iliyamo/cineverse/internal/quiz"
	"github.com/iliyamo/cineverse/internal/repository"
)

// Limit is the number of results a ranking keeps.
const Limit = 10

const (
	bestScoresKey   = "bestScores"
	latestResultKey = "latestResult"
)

// Less orders results by accuracy, then raw score, both descending.
func Less(a, b quiz.Result) bool {
	if a.Accuracy != b.Accuracy {
		return a.Accuracy > b.Accuracy
	}
	return a.Score > b.Score
}

// Insert adds r to list and returns the best Limit results.  Equal entries
// keep their insertion order.  list is not modified.
func Insert(list []quiz.Result, r quiz.Result) []quiz.Result {
	out := make([]quiz.Result, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, r)
	sort.SliceStable(out, func(i, j int) bool { return Less(out[i], out[j]) })
	if len(out) > Limit {
		out = out[:Limit]
	}
	return out
}

// Board is the persisted ranking.  It implements quiz.ResultSink.
type Board struct {
	store repository.Store
}

// NewBoard returns a Board persisting through store.
func NewBoard(store repository.Store) *Board { return &Board{store: store} }

// Record stores r as the latest result and merges it into the best scores.
func (b *Board) Record(ctx context.Context, r quiz.Result) error {
	if err := b.store.Set(ctx, latestResultKey, r); err != nil {
		return err
	}
	best, err := b.Best(ctx)
	if err != nil {
		return err
	}
	return b.store.Set(ctx, bestScoresKey, Insert(best, r))
}

// Best returns the ranking, best first.  An empty board yields an empty
// slice.
func (b *Board) Best(ctx context.Context) ([]quiz.Result, error) {
	list := []quiz.Result{}
	if _, err := repository.GetOr(ctx, b.store, bestScoresKey, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Latest returns the most recently recorded result.
func (b *Board) Latest(ctx context.Context) (quiz.Result, bool, error) {
	var r quiz.Result
	found, err := repository.GetOr(ctx, b.store, latestResultKey, &r)
	return r, found, err
}

var _ quiz.ResultSink = (*Board)(nil)
