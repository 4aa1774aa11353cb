package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veylabs/rolegate/domain"
)

// Role change reasons, forwarded to Discord's audit log.
const (
	ReasonRetroactive = "Retroactive: gift sent before linking"
	ReasonMember      = "TikTok member"
	ReasonUnlinked    = "Link removed"
	ReasonExpired     = "No qualifying gift within window"
)

const tracerName = "github.com/veylabs/rolegate/services"

// EntitlementService owns the grant/extend/revoke logic between the two
// stores and the Discord role transport. Every operation is a short
// forward-only saga: a failed step is logged and later steps are skipped,
// but completed writes are never rolled back.
type EntitlementService struct {
	links  domain.LinkRepository
	timers domain.TimerRepository
	roles  domain.RoleTransport

	giftAllowList    map[string]struct{}
	inactivityWindow time.Duration

	tracer trace.Tracer
	now    func() time.Time
}

// NewEntitlementService creates the service. giftNames is the allow-list of
// qualifying gift labels; matching is case-insensitive.
func NewEntitlementService(
	links domain.LinkRepository,
	timers domain.TimerRepository,
	roles domain.RoleTransport,
	giftNames []string,
	inactivityWindow time.Duration,
) *EntitlementService {
	allowList := make(map[string]struct{}, len(giftNames))
	for _, name := range giftNames {
		allowList[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	return &EntitlementService{
		links:            links,
		timers:           timers,
		roles:            roles,
		giftAllowList:    allowList,
		inactivityWindow: inactivityWindow,
		tracer:           otel.Tracer(tracerName),
		now:              time.Now,
	}
}

// OnLink stores the tikTokUsername → discordID link and, when a gift timer
// already exists for that username, grants the role retroactively. The
// returned bool reports whether the retroactive path fired. Once the link
// write has succeeded the operation succeeds; failures on the retroactive
// path are logged and swallowed.
func (s *EntitlementService) OnLink(ctx context.Context, tikTokUsername, discordID string) (bool, error) {
	tikTokUsername = normalizeUsername(tikTokUsername)

	ctx, span := s.tracer.Start(ctx, "EntitlementService.OnLink",
		trace.WithAttributes(attribute.String("tiktok.username", tikTokUsername)))
	defer span.End()

	if err := s.links.Upsert(ctx, tikTokUsername, discordID); err != nil {
		return false, err
	}
	log.Info().Str("tiktok_username", tikTokUsername).Str("discord_id", discordID).Msg("Link stored")

	exists, err := s.timers.Exists(ctx, tikTokUsername)
	if err != nil {
		log.Error().Err(err).Str("tiktok_username", tikTokUsername).Msg("Retroactive timer check failed, skipping grant")
		return false, nil
	}
	if !exists {
		return false, nil
	}

	if err := s.roles.Grant(ctx, discordID, ReasonRetroactive); err != nil {
		log.Error().Err(err).Str("discord_id", discordID).Msg("Retroactive role grant failed")
	} else {
		log.Info().Str("discord_id", discordID).Msg("Role granted retroactively")
	}
	return true, nil
}

// OnUnlink removes the link claimed by discordID and revokes the role. It
// returns the TikTok username that was linked, or domain.ErrLinkNotFound
// when the user had nothing to unlink. The gift timer is deliberately left
// in place so a re-link within the inactivity window grants retroactively
// again.
func (s *EntitlementService) OnUnlink(ctx context.Context, discordID string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "EntitlementService.OnUnlink",
		trace.WithAttributes(attribute.String("discord.id", discordID)))
	defer span.End()

	tikTokUsername, err := s.links.DeleteByDiscord(ctx, discordID)
	if err != nil {
		return "", err
	}
	log.Info().Str("tiktok_username", tikTokUsername).Str("discord_id", discordID).Msg("Link removed")

	if err := s.roles.Revoke(ctx, discordID, ReasonUnlinked); err != nil {
		log.Error().Err(err).Str("discord_id", discordID).Msg("Role revoke on unlink failed")
	}
	return tikTokUsername, nil
}

// WhoAmI returns the TikTok username linked to discordID, or
// domain.ErrLinkNotFound.
func (s *EntitlementService) WhoAmI(ctx context.Context, discordID string) (string, error) {
	return s.links.FindByDiscord(ctx, discordID)
}

// OnGift handles a gift event. Non-terminal streak events and gifts outside
// the allow-list are dropped without any side effect. For a qualifying
// gift: when a link exists the role is granted and the timer touched; when
// none exists only the timer is touched, deferring the grant to OnLink.
func (s *EntitlementService) OnGift(ctx context.Context, evt domain.GiftEvent) error {
	if !evt.EndOfStreak {
		return nil
	}
	if _, ok := s.giftAllowList[strings.ToLower(evt.GiftName)]; !ok {
		return nil
	}

	tikTokUsername := normalizeUsername(evt.TikTokUsername)
	eventID := uuid.NewString()

	ctx, span := s.tracer.Start(ctx, "EntitlementService.OnGift", trace.WithAttributes(
		attribute.String("tiktok.username", tikTokUsername),
		attribute.String("gift.name", evt.GiftName),
		attribute.String("event.id", eventID),
	))
	defer span.End()

	logger := log.With().
		Str("event_id", eventID).
		Str("tiktok_username", tikTokUsername).
		Str("gift_name", evt.GiftName).
		Logger()
	logger.Info().Int("repeat_count", evt.RepeatCount).Msg("Qualifying gift received")

	discordID, err := s.links.FindByTikTok(ctx, tikTokUsername)
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		// Not linked yet: remember the gift so OnLink can catch up.
		logger.Info().Msg("No link for gifter, deferring grant")
		return s.timers.Touch(ctx, tikTokUsername, evt.Timestamp)
	case err != nil:
		return err
	}

	// Grant before touch so an observed grant implies the timer will
	// reflect it shortly. A failed grant still renews the timer; the next
	// qualifying gift is the retry mechanism.
	if err := s.roles.Grant(ctx, discordID, "Gift: "+evt.GiftName); err != nil {
		logger.Error().Err(err).Str("discord_id", discordID).Msg("Role grant failed")
	} else {
		logger.Info().Str("discord_id", discordID).Msg("Role granted")
	}
	return s.timers.Touch(ctx, tikTokUsername, evt.Timestamp)
}

// OnSubscribe handles a membership/subscription event. Subscriptions grant
// unconditionally for linked users and never touch the gift timer, so a
// subscription-granted role is only removed by unlink or by a moderator.
func (s *EntitlementService) OnSubscribe(ctx context.Context, evt domain.SubscribeEvent) error {
	tikTokUsername := normalizeUsername(evt.TikTokUsername)

	ctx, span := s.tracer.Start(ctx, "EntitlementService.OnSubscribe",
		trace.WithAttributes(attribute.String("tiktok.username", tikTokUsername)))
	defer span.End()

	discordID, err := s.links.FindByTikTok(ctx, tikTokUsername)
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		log.Info().Str("tiktok_username", tikTokUsername).Msg("Subscriber has no link, nothing to grant")
		return nil
	case err != nil:
		return err
	}

	if err := s.roles.Grant(ctx, discordID, ReasonMember); err != nil {
		log.Error().Err(err).Str("discord_id", discordID).Msg("Role grant for subscriber failed")
	} else {
		log.Info().Str("tiktok_username", tikTokUsername).Str("discord_id", discordID).Msg("Role granted for subscription")
	}
	return nil
}

// SweepExpired scans the timer store once and revokes every entitlement
// whose inactivity window has elapsed. Expired timers are deleted whether
// or not the revoke succeeded and whether or not a link exists, so the
// sweep always makes progress. It returns the number of timers expired.
func (s *EntitlementService) SweepExpired(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "EntitlementService.SweepExpired")
	defer span.End()

	timers, err := s.timers.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	expired := 0
	for _, timer := range timers {
		if !timer.Expired(now, s.inactivityWindow) {
			continue
		}

		logger := log.With().Str("tiktok_username", timer.TikTokUsername).Logger()

		discordID, err := s.links.FindByTikTok(ctx, timer.TikTokUsername)
		switch {
		case errors.Is(err, domain.ErrLinkNotFound):
			// Orphaned timer: nothing to revoke against, but letting it
			// live forever only grows the collection.
			logger.Info().Msg("Expiring orphaned gift timer")
		case err != nil:
			logger.Error().Err(err).Msg("Link lookup failed during sweep, entry retried next tick")
			continue
		default:
			if err := s.roles.Revoke(ctx, discordID, ReasonExpired); err != nil {
				logger.Error().Err(err).Str("discord_id", discordID).Msg("Role revoke failed, timer removed anyway")
			} else {
				logger.Info().Str("discord_id", discordID).Msg("Role revoked after inactivity")
			}
		}

		if err := s.timers.Delete(ctx, timer.TikTokUsername); err != nil && !errors.Is(err, domain.ErrTimerNotFound) {
			logger.Error().Err(err).Msg("Failed to delete expired gift timer")
			continue
		}
		expired++
	}

	span.SetAttributes(attribute.Int("sweep.expired", expired))
	return expired, nil
}

// normalizeUsername canonicalizes a TikTok username before it is used as a
// store key. TikTok is case-insensitive about usernames but not consistent
// about the casing it reports.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}
