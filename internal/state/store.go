// Package state persists the bot's durable state: the panel message ID
// and the requester to open-ticket-channel map.
package state

import (
	"context"

	"github.com/creatorhub/ticket-bot/internal/domain"
)

// Store is the load/save contract the lifecycle manager mutates through.
//
// Load never fails: missing, corrupt, or partially-shaped data yields
// the empty state. Save failures are reported so callers can log them,
// but by contract an in-memory mutation that fails to persist still
// counts as a successful operation.
type Store interface {
	Load(ctx context.Context) domain.PersistedState
	Save(ctx context.Context, s domain.PersistedState) error
}
