package domain

import "errors"

var (
	// ErrLinkNotFound is returned by link lookups and deletions when no
	// link exists for the given key.
	ErrLinkNotFound = errors.New("link not found")

	// ErrTimerNotFound is returned by timer deletions when no timer exists
	// for the given TikTok username.
	ErrTimerNotFound = errors.New("gift timer not found")
)
