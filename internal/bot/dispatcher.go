package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/domain"
	"github.com/creatorhub/ticket-bot/internal/platform"
	"github.com/creatorhub/ticket-bot/internal/ticket"
	"github.com/creatorhub/ticket-bot/pkg/util"
)

// interactionTimeout bounds the work behind one interaction; Discord's
// follow-up token lives far longer than this.
const interactionTimeout = 60 * time.Second

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID != b.guildID || i.Member == nil || i.Member.User == nil {
		return
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == setupCommandName {
			b.handleSetup(i)
		}
	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case ticket.CustomIDOpenTicket:
			b.handleOpen(i)
		case ticket.CustomIDCloseTicket:
			b.handleClose(i)
		}
	}
}

func (b *Bot) handleOpen(i *discordgo.InteractionCreate) {
	if !b.ackEphemeral(i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	member := memberFromInteraction(i)
	requester := domain.Requester{ID: member.ID, DisplayName: member.DisplayName}

	tkt, err := b.manager.Open(ctx, i.GuildID, requester)
	if err != nil {
		b.metrics.RecordInteraction("open", util.ToDomainError(err).Code)
		b.followUp(i, renderError(err))
		return
	}
	b.metrics.RecordInteraction("open", "ok")
	b.followUp(i, fmt.Sprintf("Your ticket is ready: <#%s>", tkt.ChannelID))
}

func (b *Bot) handleClose(i *discordgo.InteractionCreate) {
	if !b.ackEphemeral(i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	result, err := b.manager.Close(ctx, i.GuildID, memberFromInteraction(i), i.ChannelID)
	if err != nil {
		b.metrics.RecordInteraction("close", util.ToDomainError(err).Code)
		b.followUp(i, renderError(err))
		return
	}
	b.metrics.RecordInteraction("close", "ok")
	if result.Deleting {
		b.followUp(i, "Ticket closed. This channel will be removed shortly.")
		return
	}
	b.followUp(i, "Ticket closed and archived.")
}

func (b *Bot) handleSetup(i *discordgo.InteractionCreate) {
	if !b.ackEphemeral(i) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	result, err := b.manager.Setup(ctx, i.GuildID, memberFromInteraction(i))
	if err != nil {
		b.metrics.RecordInteraction("setup", util.ToDomainError(err).Code)
		b.followUp(i, renderError(err))
		return
	}
	b.metrics.RecordInteraction("setup", "ok")
	b.followUp(i, fmt.Sprintf("Ticket panel deployed in <#%s>.", result.ChannelID))
}

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.GuildID != b.guildID || m.User == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	b.greeter.Welcome(ctx, m.GuildID, m.User.ID, m.User.Bot)
}

// ackEphemeral defers the response so the slow lifecycle work can
// follow up later; a failed ack means the interaction token is dead.
func (b *Bot) ackEphemeral(i *discordgo.InteractionCreate) bool {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		b.logger.Warn("failed to acknowledge interaction", zap.Error(err))
		return false
	}
	return true
}

func (b *Bot) followUp(i *discordgo.InteractionCreate, content string) {
	_, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		b.logger.Warn("failed to send interaction follow-up", zap.Error(err))
	}
}

func memberFromInteraction(i *discordgo.InteractionCreate) platform.Member {
	m := i.Member
	display := m.Nick
	if display == "" {
		if m.User.GlobalName != "" {
			display = m.User.GlobalName
		} else {
			display = m.User.Username
		}
	}
	return platform.Member{
		ID:          m.User.ID,
		DisplayName: display,
		RoleIDs:     m.Roles,
		Permissions: m.Permissions,
	}
}

// renderError maps the taxonomy onto member-visible text. Internal
// detail stays in the logs.
func renderError(err error) string {
	de := util.ToDomainError(err)
	if de.Code == util.CodeAlreadyOpen {
		if channelID, ok := de.Details["channel_id"].(string); ok {
			return fmt.Sprintf("You already have an open ticket: <#%s>", channelID)
		}
	}
	if de.Code == util.CodeInternalError {
		return "Something went wrong. Please try again in a moment."
	}
	return de.Message
}
