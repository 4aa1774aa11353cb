package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veylabs/rolegate/domain"
)

func TestTimerRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo := NewTimerRepository(db)

	findTimer := func(t *testing.T, tikTokUsername string) *domain.GiftTimer {
		t.Helper()
		timers, err := repo.List(ctx)
		require.NoError(t, err)
		for _, timer := range timers {
			if timer.TikTokUsername == tikTokUsername {
				return timer
			}
		}
		return nil
	}

	t.Run("Exists is false before any touch", func(t *testing.T) {
		exists, err := repo.Exists(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Touch creates and Exists sees it", func(t *testing.T) {
		require.NoError(t, repo.Touch(ctx, "alice", time.Now()))

		exists, err := repo.Exists(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Touch is last-write-wins, not max-wins", func(t *testing.T) {
		later := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
		earlier := later.Add(-48 * time.Hour)

		require.NoError(t, repo.Touch(ctx, "bob", later))
		require.NoError(t, repo.Touch(ctx, "bob", earlier))

		timer := findTimer(t, "bob")
		require.NotNil(t, timer)
		assert.True(t, timer.LastGiftAt.Equal(earlier),
			"an earlier timestamp written later must win, got %s", timer.LastGiftAt)
	})

	t.Run("Delete removes the timer", func(t *testing.T) {
		require.NoError(t, repo.Touch(ctx, "carol", time.Now()))
		require.NoError(t, repo.Delete(ctx, "carol"))

		exists, err := repo.Exists(ctx, "carol")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Delete on missing timer returns ErrTimerNotFound", func(t *testing.T) {
		err := repo.Delete(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrTimerNotFound)
	})

	t.Run("List snapshots every timer", func(t *testing.T) {
		require.NoError(t, repo.Touch(ctx, "dave", time.Now()))

		timers, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, findTimer(t, "alice"))
		assert.NotNil(t, findTimer(t, "dave"))
		assert.GreaterOrEqual(t, len(timers), 2)
	})
}
