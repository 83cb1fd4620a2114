package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened   EventType = "ticket_opened"
	EventTicketClosed   EventType = "ticket_closed"
	EventPanelDeployed  EventType = "panel_deployed"
	EventMemberWelcomed EventType = "member_welcomed"
)

// Event represents a domain event emitted by the lifecycle manager.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	GuildID   string      `json:"guild_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	ReferenceKey  string `json:"reference_key"`
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name"`
	ChannelID     string `json:"channel_id"`
	ChannelName   string `json:"channel_name"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	RequesterID string `json:"requester_id,omitempty"`
	ChannelID   string `json:"channel_id"`
	ClosedByID  string `json:"closed_by_id"`
	ClosedBy    string `json:"closed_by"`
	AutoDelete  bool   `json:"auto_delete"`
}

// PanelDeployedPayload payload.
type PanelDeployedPayload struct {
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	ActorID   string `json:"actor_id"`
}

// MemberWelcomedPayload payload.
type MemberWelcomedPayload struct {
	MemberID  string `json:"member_id"`
	ChannelID string `json:"channel_id"`
}
