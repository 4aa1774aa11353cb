package domain

import "time"

// GiftTimer records that the role entitlement for a TikTok username is
// currently active and when it was last renewed. A timer may exist without
// a matching Link (gift arrived before the user ran !verify); that timer
// feeds the retroactive grant once a Link appears.
type GiftTimer struct {
	TikTokUsername string    `bson:"_id" json:"tiktok_username"`
	LastGiftAt     time.Time `bson:"last_gift_at" json:"last_gift_at"`
}

// Expired reports whether the timer's inactivity window has fully elapsed
// at now. The boundary counts as expired.
func (t *GiftTimer) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(t.LastGiftAt) >= window
}
