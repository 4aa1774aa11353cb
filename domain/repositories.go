package domain

import (
	"context"
	"time"
)

// LinkRepository persists the TikTok → Discord identity links.
type LinkRepository interface {
	// Upsert creates or replaces the link for tikTokUsername. Last write
	// wins; linking the same TikTok username again simply repoints it.
	Upsert(ctx context.Context, tikTokUsername, discordID string) error

	// FindByTikTok returns the Discord ID linked to tikTokUsername, or
	// ErrLinkNotFound.
	FindByTikTok(ctx context.Context, tikTokUsername string) (string, error)

	// FindByDiscord returns the TikTok username claimed by discordID, or
	// ErrLinkNotFound. At most one link per Discord user is expected; when
	// several exist the oldest claim is returned.
	FindByDiscord(ctx context.Context, discordID string) (string, error)

	// DeleteByDiscord removes the link claimed by discordID and returns
	// the TikTok username it held, or ErrLinkNotFound.
	DeleteByDiscord(ctx context.Context, discordID string) (string, error)

	// List returns every stored link.
	List(ctx context.Context) ([]*Link, error)
}

// TimerRepository persists the gift entitlement timers.
type TimerRepository interface {
	// Touch creates or refreshes the timer for tikTokUsername. Last write
	// wins: an older timestamp written after a newer one replaces it.
	Touch(ctx context.Context, tikTokUsername string, lastGiftAt time.Time) error

	// Exists reports whether a timer is stored for tikTokUsername.
	Exists(ctx context.Context, tikTokUsername string) (bool, error)

	// Delete removes the timer for tikTokUsername. Returns
	// ErrTimerNotFound when none is stored.
	Delete(ctx context.Context, tikTokUsername string) error

	// List returns a snapshot of every stored timer. No ordering is
	// guaranteed.
	List(ctx context.Context) ([]*GiftTimer, error)
}

// RoleTransport grants and revokes the managed Discord role. Both calls
// fail independently; callers log failures and never retry them.
type RoleTransport interface {
	Grant(ctx context.Context, discordID, reason string) error
	Revoke(ctx context.Context, discordID, reason string) error
}
