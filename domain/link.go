package domain

import "time"

// Link ties a TikTok username to the Discord user who claimed it.
// The TikTok username is the sole key: re-running !verify with a new Discord
// account overwrites the previous claim, and several TikTok usernames may
// point at the same Discord user (alt accounts).
type Link struct {
	TikTokUsername string    `bson:"_id" json:"tiktok_username"`
	DiscordID      string    `bson:"discord_id" json:"discord_id"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
