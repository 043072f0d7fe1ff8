package quiz

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineverse/internal/repository"
)

func TestProgressStore_ExpiresAfterAnHour(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ps := NewProgressStore(repository.NewMemoryStore())
	ps.now = func() time.Time { return now }

	s := NewSession()
	_, err := s.Load(Bank{"css": {{Text: "q", Options: []string{"a", "b"}, Correct: 0}}}, "css", rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	s.Tick()
	require.NoError(t, ps.Save(ctx, s))

	pr, ok, err := ps.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "css", pr.Category)
	assert.Equal(t, QuestionSeconds-1, pr.TimeLeft)

	now = now.Add(ProgressTTL)
	_, ok, err = ps.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ps.Clear(ctx))
	_, ok, err = ps.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
