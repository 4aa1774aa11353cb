package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/veylabs/rolegate/domain"
)

// RoleManager implements domain.RoleTransport against one guild role. The
// reason string is forwarded to the guild's audit log.
type RoleManager struct {
	session *discordgo.Session
	guildID string
	roleID  string
}

// NewRoleManager returns a transport managing roleID in guildID.
func NewRoleManager(session *discordgo.Session, guildID, roleID string) *RoleManager {
	return &RoleManager{session: session, guildID: guildID, roleID: roleID}
}

func (m *RoleManager) Grant(ctx context.Context, discordID, reason string) error {
	err := m.session.GuildMemberRoleAdd(m.guildID, discordID, m.roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("granting role to %s: %w", discordID, err)
	}
	return nil
}

func (m *RoleManager) Revoke(ctx context.Context, discordID, reason string) error {
	err := m.session.GuildMemberRoleRemove(m.guildID, discordID, m.roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("revoking role from %s: %w", discordID, err)
	}
	return nil
}

// Ensure interface compliance
var _ domain.RoleTransport = (*RoleManager)(nil)
