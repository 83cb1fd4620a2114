package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/creatorhub/ticket-bot/internal/config"
	"github.com/creatorhub/ticket-bot/internal/events"
	"github.com/creatorhub/ticket-bot/internal/platform"
)

// NotificationService mirrors ticket events into the log channel and an
// optional webhook. Everything here is best-effort.
type NotificationService struct {
	dispatcher events.Dispatcher
	platform   platform.Platform
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, pf platform.Platform, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		platform:   pf,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handleTicketOpened)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
	n.dispatcher.Subscribe(events.EventPanelDeployed, n.handlePanelDeployed)
}

func (n *NotificationService) handleTicketOpened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketOpenedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketOpened",
		zap.String("requester_id", payload.RequesterID),
		zap.String("channel_id", payload.ChannelID))
	line := fmt.Sprintf("🎫 Ticket %s opened by <@%s> → <#%s>",
		payload.ReferenceKey, payload.RequesterID, payload.ChannelID)
	n.postLogLine(ctx, line)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("TicketClosed",
		zap.String("channel_id", payload.ChannelID),
		zap.String("closed_by", payload.ClosedByID))
	line := fmt.Sprintf("✅ Ticket channel <#%s> closed by %s", payload.ChannelID, payload.ClosedBy)
	if payload.RequesterID != "" {
		line = fmt.Sprintf("✅ Ticket for <@%s> closed by %s", payload.RequesterID, payload.ClosedBy)
	}
	n.postLogLine(ctx, line)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handlePanelDeployed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PanelDeployedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("PanelDeployed", zap.String("message_id", payload.MessageID))
	n.postLogLine(ctx, fmt.Sprintf("📌 Ticket panel deployed in <#%s>", payload.ChannelID))
	return nil
}

func (n *NotificationService) postLogLine(ctx context.Context, line string) {
	if strings.TrimSpace(n.cfg.LogChannelID) == "" {
		return
	}
	if _, err := n.platform.SendMessage(ctx, n.cfg.LogChannelID, line); err != nil {
		n.logger.Warn("failed to post log-channel line",
			zap.String("channel_id", n.cfg.LogChannelID), zap.Error(err))
	}
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
