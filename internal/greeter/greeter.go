// Package greeter posts a one-shot welcome message when a member joins.
// No state is kept; a failed send is logged and forgotten.
package greeter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/config"
	"github.com/creatorhub/ticket-bot/internal/events"
	"github.com/creatorhub/ticket-bot/internal/platform"
)

// Greeter welcomes new members.
type Greeter struct {
	platform   platform.Platform
	dispatcher events.Dispatcher
	logger     *zap.Logger
	channelID  string
	message    string
}

// New builds a greeter. A missing welcome channel disables it.
func New(pf platform.Platform, cfg config.DiscordConfig, dispatcher events.Dispatcher, logger *zap.Logger) *Greeter {
	return &Greeter{
		platform:   pf,
		dispatcher: dispatcher,
		logger:     logger,
		channelID:  cfg.WelcomeChannelID,
		message:    cfg.WelcomeMessage,
	}
}

// Welcome posts the welcome message for the joined member. Bots are skipped.
func (g *Greeter) Welcome(ctx context.Context, guildID, memberID string, isBot bool) {
	if g.channelID == "" || isBot {
		return
	}

	if _, err := g.platform.SendMessage(ctx, g.channelID, g.message); err != nil {
		g.logger.Warn("failed to post welcome message",
			zap.String("channel_id", g.channelID),
			zap.String("member_id", memberID),
			zap.Error(err))
		return
	}

	g.logger.Info("welcomed member", zap.String("member_id", memberID))
	if g.dispatcher != nil {
		_ = g.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMemberWelcomed,
			GuildID:   guildID,
			Timestamp: time.Now(),
			Payload: events.MemberWelcomedPayload{
				MemberID:  memberID,
				ChannelID: g.channelID,
			},
		})
	}
}
