package quiz

import (
	"context"
	"time"

	"github.com/iliyamo/cineverse/internal/repository"
)

const progressKey = "quizState"

// ProgressTTL bounds how long a saved snapshot is considered resumable.
const ProgressTTL = time.Hour

// Progress is a lightweight snapshot of a running session.
type Progress struct {
	Category  string    `json:"category"`
	Index     int       `json:"current_index"`
	Score     int       `json:"score"`
	TimeLeft  int       `json:"time_left"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressStore saves and restores snapshots through a repository.Store.
type ProgressStore struct {
	store repository.Store
	now   func() time.Time
}

// NewProgressStore returns a ProgressStore on top of store.
func NewProgressStore(store repository.Store) *ProgressStore {
	return &ProgressStore{store: store, now: time.Now}
}

// Save snapshots s.
func (p *ProgressStore) Save(ctx context.Context, s *Session) error {
	return p.store.Set(ctx, progressKey, Progress{
		Category:  s.Category(),
		Index:     s.Index(),
		Score:     s.Score(),
		TimeLeft:  s.TimeLeft(),
		Timestamp: p.now(),
	})
}

// Load returns the saved snapshot if it is younger than ProgressTTL.
func (p *ProgressStore) Load(ctx context.Context) (Progress, bool, error) {
	var pr Progress
	found, err := repository.GetOr(ctx, p.store, progressKey, &pr)
	if err != nil || !found {
		return Progress{}, false, err
	}
	if p.now().Sub(pr.Timestamp) >= ProgressTTL {
		return Progress{}, false, nil
	}
	return pr, true, nil
}

// Clear drops the snapshot.
func (p *ProgressStore) Clear(ctx context.Context) error {
	return p.store.Remove(ctx, progressKey)
}
