package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/creatorhub/ticket-bot/internal/domain"
	"github.com/creatorhub/ticket-bot/internal/observability"
	"github.com/creatorhub/ticket-bot/internal/repository"
	"github.com/creatorhub/ticket-bot/internal/ticket"
)

// OpsHandler exposes the bot's tracked state to operators.
type OpsHandler struct {
	manager *ticket.Manager
	history repository.TicketHistoryRepository
	metrics *observability.Metrics
}

// NewOpsHandler returns a new handler instance. History may be nil when
// the audit trail is disabled.
func NewOpsHandler(manager *ticket.Manager, history repository.TicketHistoryRepository, metrics *observability.Metrics) *OpsHandler {
	return &OpsHandler{manager: manager, history: history, metrics: metrics}
}

// State returns a snapshot of the persisted state.
func (h *OpsHandler) State(c *fiber.Ctx) error {
	snapshot := h.manager.Snapshot(c.UserContext())
	return c.JSON(fiber.Map{
		"panel_message_id":          snapshot.PanelMessageID,
		"open_tickets_by_requester": snapshot.OpenTicketsByRequester,
		"open_ticket_count":         len(snapshot.OpenTicketsByRequester),
		"interactions":              h.metrics.InteractionCounts(),
	})
}

// History lists recent audit entries.
func (h *OpsHandler) History(c *fiber.Ctx) error {
	if h.history == nil {
		return c.JSON(fiber.Map{"entries": []domain.TicketHistory{}})
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	entries, err := h.history.ListRecent(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"entries": entries})
}
