package domain

import "time"

// HistoryAction enumerates audited lifecycle transitions.
type HistoryAction string

const (
	HistoryActionOpened HistoryAction = "OPENED"
	HistoryActionClosed HistoryAction = "CLOSED"
)

// TicketHistory is an append-only audit record of a lifecycle transition.
// Active tracking forgets closed tickets; the history table retains them.
type TicketHistory struct {
	ID           int64
	ReferenceKey string
	GuildID      string
	RequesterID  string
	ChannelID    string
	Action       HistoryAction
	ActorID      string
	CreatedAt    time.Time
}
