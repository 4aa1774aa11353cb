package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// NewSession builds a Discord session with the gateway intents the bot
// needs: guilds and members for role management, messages and message
// content for the text commands.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent
	return session, nil
}

// RegisterReadyProbe attaches a Ready handler that verifies the configured
// guild, role, and bot permissions once the gateway connection is up.
// Problems are logged as warnings; the bot still starts so a permission fix
// does not need a restart.
func RegisterReadyProbe(session *discordgo.Session, guildID, roleID string) {
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.Username).Msg("Logged in to Discord")

		guild, err := s.Guild(guildID)
		if err != nil {
			log.Error().Err(err).Str("guild_id", guildID).Msg("Could not fetch configured guild")
			return
		}

		roles := guild.Roles
		if len(roles) == 0 {
			if roles, err = s.GuildRoles(guildID); err != nil {
				log.Warn().Err(err).Msg("Could not fetch guild roles")
			}
		}
		roleByID := make(map[string]*discordgo.Role, len(roles))
		for _, role := range roles {
			roleByID[role.ID] = role
		}
		if _, ok := roleByID[roleID]; !ok {
			log.Warn().Str("role_id", roleID).Msg("Configured role not found in guild. Check DISCORD_ROLE_ID.")
		}

		me, err := s.GuildMember(guildID, r.User.ID)
		if err != nil {
			log.Warn().Err(err).Msg("Could not fetch own guild member for permission check")
			return
		}
		var perms int64
		for _, id := range me.Roles {
			if role, ok := roleByID[id]; ok {
				perms |= role.Permissions
			}
		}
		if perms&discordgo.PermissionManageRoles == 0 && perms&discordgo.PermissionAdministrator == 0 {
			log.Warn().Msg("Bot is missing the Manage Roles permission")
		}
	})
}
