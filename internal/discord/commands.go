package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jellydator/ttlcache/v3"
	"github.com/rs/zerolog/log"

	"github.com/veylabs/rolegate/domain"
	"github.com/veylabs/rolegate/services"
)

const (
	cmdVerify = "!verify"
	cmdUnlink = "!unlink"
	cmdWhoami = "!whoami"
)

// CommandHandler answers the three operator-facing text commands in the
// configured guild. !verify is rate-limited per user through a small TTL
// cache so command spam cannot hammer the link store.
type CommandHandler struct {
	service *services.EntitlementService
	guildID string

	verifyCooldown *ttlcache.Cache[string, struct{}]
}

// NewCommandHandler creates the handler. Call Stop on shutdown to end the
// cooldown cache's cleanup goroutine.
func NewCommandHandler(service *services.EntitlementService, guildID string, cooldown time.Duration) *CommandHandler {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, struct{}](cooldown),
		ttlcache.WithDisableTouchOnHit[string, struct{}](),
	)
	go cache.Start()

	return &CommandHandler{
		service:        service,
		guildID:        guildID,
		verifyCooldown: cache,
	}
}

// Register attaches the message handler to the session.
func (h *CommandHandler) Register(session *discordgo.Session) {
	session.AddHandler(h.handleMessage)
}

// Stop shuts down the cooldown cache.
func (h *CommandHandler) Stop() {
	h.verifyCooldown.Stop()
}

func (h *CommandHandler) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != h.guildID {
		return
	}

	content := strings.TrimSpace(m.Content)
	ctx := context.Background()

	switch {
	case strings.HasPrefix(content, cmdVerify):
		h.handleVerify(ctx, s, m, content)
	case content == cmdUnlink:
		h.handleUnlink(ctx, s, m)
	case content == cmdWhoami:
		h.handleWhoami(ctx, s, m)
	}
}

func (h *CommandHandler) handleVerify(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	fields := strings.Fields(content)
	if len(fields) < 2 {
		h.reply(s, m, "Usage: `!verify <TikTokName>`")
		return
	}
	tikTokUsername := fields[1]

	if h.verifyCooldown.Has(m.Author.ID) {
		h.reply(s, m, "You are doing that too fast, try again shortly.")
		return
	}
	h.verifyCooldown.Set(m.Author.ID, struct{}{}, ttlcache.DefaultTTL)

	retroactive, err := h.service.OnLink(ctx, tikTokUsername, m.Author.ID)
	if err != nil {
		log.Error().Err(err).Str("discord_id", m.Author.ID).Msg("!verify failed")
		h.reply(s, m, "Something went wrong saving the link, please try again later.")
		return
	}

	h.reply(s, m, fmt.Sprintf("Linked: **%s** ↔ <@%s>", tikTokUsername, m.Author.ID))
	if retroactive {
		h.reply(s, m, "Role granted retroactively, a qualifying gift was already recorded.")
	}
}

func (h *CommandHandler) handleUnlink(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	tikTokUsername, err := h.service.OnUnlink(ctx, m.Author.ID)
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		h.reply(s, m, "You have no stored TikTok name.")
	case err != nil:
		log.Error().Err(err).Str("discord_id", m.Author.ID).Msg("!unlink failed")
		h.reply(s, m, "Something went wrong removing the link, please try again later.")
	default:
		h.reply(s, m, fmt.Sprintf("Link removed: **%s**", tikTokUsername))
	}
}

func (h *CommandHandler) handleWhoami(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	tikTokUsername, err := h.service.WhoAmI(ctx, m.Author.ID)
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		h.reply(s, m, "No TikTok name stored. Use `!verify <TikTokName>`.")
	case err != nil:
		log.Error().Err(err).Str("discord_id", m.Author.ID).Msg("!whoami failed")
		h.reply(s, m, "Something went wrong, please try again later.")
	default:
		h.reply(s, m, fmt.Sprintf("You are linked as **%s**.", tikTokUsername))
	}
}

func (h *CommandHandler) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		log.Error().Err(err).Str("channel_id", m.ChannelID).Msg("Could not send command reply")
	}
}
