package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creatorhub/ticket-bot/internal/domain"
)

// TicketHistoryRepository encapsulates the append-only audit trail of
// lifecycle transitions.
type TicketHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TicketHistory) error
	ListRecent(ctx context.Context, limit, offset int) ([]domain.TicketHistory, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository instantiates repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, entry *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (reference_key, guild_id, requester_id, channel_id, action, actor_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ReferenceKey,
		entry.GuildID,
		entry.RequesterID,
		entry.ChannelID,
		entry.Action,
		entry.ActorID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *ticketHistoryRepository) ListRecent(ctx context.Context, limit, offset int) ([]domain.TicketHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, reference_key, guild_id, requester_id, channel_id, action, actor_id, created_at
        FROM ticket_history
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.TicketHistory, 0, limit)
	for rows.Next() {
		var entry domain.TicketHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.ReferenceKey,
			&entry.GuildID,
			&entry.RequesterID,
			&entry.ChannelID,
			&entry.Action,
			&entry.ActorID,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
