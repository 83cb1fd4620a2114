// Package bot wires the Discord gateway to the ticket lifecycle: it
// owns the session, routes button and command interactions to the
// manager, and renders results as ephemeral responses.
package bot

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/greeter"
	"github.com/creatorhub/ticket-bot/internal/observability"
	"github.com/creatorhub/ticket-bot/internal/ticket"
)

// Dependencies bundles collaborators for the bot.
type Dependencies struct {
	Session *discordgo.Session
	Manager *ticket.Manager
	Greeter *greeter.Greeter
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// Bot routes gateway events into the lifecycle manager.
type Bot struct {
	session *discordgo.Session
	manager *ticket.Manager
	greeter *greeter.Greeter
	metrics *observability.Metrics
	logger  *zap.Logger
	guildID string
	appID   string
}

// NewSession builds a discordgo session with the intents the bot needs.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages
	return session, nil
}

// New constructs the bot for a single guild.
func New(guildID, appID string, deps Dependencies) *Bot {
	return &Bot{
		session: deps.Session,
		manager: deps.Manager,
		greeter: deps.Greeter,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		guildID: guildID,
		appID:   appID,
	}
}

// Register attaches gateway handlers. Call before opening the session.
func (b *Bot) Register() {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteractionCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("logged in",
		zap.String("user", r.User.String()),
		zap.String("user_id", r.User.ID))
}
