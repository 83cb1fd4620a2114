package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/creatorhub/ticket-bot/internal/policy"
)

const setupCommandName = "setup"

// RegisterCommands creates the guild-scoped setup command. The
// permission gate here is cosmetic; the manager re-checks the actor.
func (b *Bot) RegisterCommands() error {
	managePerm := policy.PermManageGuild
	_, err := b.session.ApplicationCommandCreate(b.appID, b.guildID, &discordgo.ApplicationCommand{
		Name:                     setupCommandName,
		Description:              "Post the open-ticket panel in the instructions channel",
		DefaultMemberPermissions: &managePerm,
	})
	return err
}
