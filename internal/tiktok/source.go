package tiktok

import (
	"context"
	"fmt"
	"time"

	"github.com/Davincible/gotiktoklive"
	"github.com/rs/zerolog/log"

	"github.com/veylabs/rolegate/domain"
	"github.com/veylabs/rolegate/services"
)

// Source watches one TikTok live stream and feeds gift and subscription
// events into the entitlement service. Connection and reconnection are
// owned by the gotiktoklive client; this adapter only translates events.
type Source struct {
	username string
	service  *services.EntitlementService
}

// NewSource creates a source for the given TikTok username (without @).
func NewSource(username string, service *services.EntitlementService) *Source {
	return &Source{username: username, service: service}
}

// Run connects to the live stream and consumes events until ctx is
// cancelled or the stream ends. Handler errors are logged; the next event
// is the retry mechanism for grant failures, so no event is ever replayed.
func (s *Source) Run(ctx context.Context) error {
	tt := gotiktoklive.NewTikTok()

	live, err := tt.TrackUser(s.username)
	if err != nil {
		return fmt.Errorf("tracking tiktok user %s: %w", s.username, err)
	}
	log.Info().Str("tiktok_username", s.username).Msg("Connected to TikTok live stream")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-live.Events:
			if !ok {
				return fmt.Errorf("tiktok event stream for %s closed", s.username)
			}
			s.dispatch(ctx, event)
		}
	}
}

func (s *Source) dispatch(ctx context.Context, event interface{}) {
	switch e := event.(type) {
	case gotiktoklive.GiftEvent:
		if e.User == nil {
			return
		}
		evt := domain.GiftEvent{
			TikTokUsername: e.User.Username,
			GiftName:       e.Name,
			RepeatCount:    e.RepeatCount,
			EndOfStreak:    e.RepeatEnd,
			Timestamp:      time.Now().UTC(),
		}
		if err := s.service.OnGift(ctx, evt); err != nil {
			log.Error().Err(err).Str("tiktok_username", evt.TikTokUsername).Msg("Gift event handling failed")
		}
	case gotiktoklive.SubNotifyEvent:
		if e.User == nil {
			return
		}
		evt := domain.SubscribeEvent{
			TikTokUsername: e.User.Username,
			Timestamp:      time.Now().UTC(),
		}
		if err := s.service.OnSubscribe(ctx, evt); err != nil {
			log.Error().Err(err).Str("tiktok_username", evt.TikTokUsername).Msg("Subscribe event handling failed")
		}
	}
}
