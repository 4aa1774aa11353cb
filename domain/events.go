package domain

import "time"

// GiftEvent is a single gift notification from the live stream. Streakable
// gifts fire one event per repeat with EndOfStreak false and a final event
// with EndOfStreak true carrying the full repeat count; only the final one
// may trigger a grant.
type GiftEvent struct {
	TikTokUsername string
	GiftName       string
	RepeatCount    int
	EndOfStreak    bool
	Timestamp      time.Time
}

// SubscribeEvent is a membership/subscription notification from the live
// stream.
type SubscribeEvent struct {
	TikTokUsername string
	Timestamp      time.Time
}
