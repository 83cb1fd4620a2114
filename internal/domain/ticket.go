package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen   TicketStatus = "OPEN"
	TicketStatusClosed TicketStatus = "CLOSED"
)

// Requester identifies the guild member asking for a ticket. Both fields
// come from the platform; the bot does not keep its own member records.
type Requester struct {
	ID          string
	DisplayName string
}

// Ticket ties a requester to their private channel.
type Ticket struct {
	ReferenceKey string
	ChannelID    string
	ChannelName  string
	RequesterID  string
	Status       TicketStatus
	CreatedAt    time.Time
}
