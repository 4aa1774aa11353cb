package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veylabs/rolegate/domain"
)

func TestLinkRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	repo, err := NewLinkRepository(ctx, db)
	require.NoError(t, err)

	t.Run("FindByTikTok returns ErrLinkNotFound when empty", func(t *testing.T) {
		_, err := repo.FindByTikTok(ctx, "nobody")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})

	t.Run("Upsert then find both directions", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, "alice", "U1"))

		discordID, err := repo.FindByTikTok(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "U1", discordID)

		tikTokUsername, err := repo.FindByDiscord(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, "alice", tikTokUsername)
	})

	t.Run("Upsert is last-write-wins on the TikTok username", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, "alice", "U1"))
		require.NoError(t, repo.Upsert(ctx, "alice", "U9"))

		discordID, err := repo.FindByTikTok(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "U9", discordID)

		links, err := repo.List(ctx)
		require.NoError(t, err)
		count := 0
		for _, link := range links {
			if link.TikTokUsername == "alice" {
				count++
			}
		}
		assert.Equal(t, 1, count, "at most one link per TikTok username")
	})

	t.Run("DeleteByDiscord returns the removed username", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, "bob", "U2"))

		tikTokUsername, err := repo.DeleteByDiscord(ctx, "U2")
		require.NoError(t, err)
		assert.Equal(t, "bob", tikTokUsername)

		_, err = repo.FindByTikTok(ctx, "bob")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})

	t.Run("DeleteByDiscord on unknown Discord ID", func(t *testing.T) {
		_, err := repo.DeleteByDiscord(ctx, "U404")
		assert.ErrorIs(t, err, domain.ErrLinkNotFound)
	})

	t.Run("Multiple TikTok usernames may share a Discord ID", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, "main_account", "U3"))
		require.NoError(t, repo.Upsert(ctx, "alt_account", "U3"))

		links, err := repo.List(ctx)
		require.NoError(t, err)
		shared := 0
		for _, link := range links {
			if link.DiscordID == "U3" {
				shared++
			}
		}
		assert.Equal(t, 2, shared)
	})
}
