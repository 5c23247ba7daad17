package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"pdd-quiz-service/internal/domain"
)

// TicketLoader loads ticket JSONB rows from Postgres.
type TicketLoader struct {
	pool *pgxpool.Pool
}

func NewTicketLoader(pool *pgxpool.Pool) *TicketLoader {
	return &TicketLoader{pool: pool}
}

func (l *TicketLoader) LoadTickets(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := l.pool.Query(ctx, `SELECT number, data FROM tickets ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var (
			number int
			raw    []byte
		)
		if err := rows.Scan(&number, &raw); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		var ticket domain.Ticket
		if err := json.Unmarshal(raw, &ticket); err != nil {
			return nil, fmt.Errorf("unmarshal ticket %d: %w", number, err)
		}
		ticket.Number = number
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}
	return tickets, nil
}
