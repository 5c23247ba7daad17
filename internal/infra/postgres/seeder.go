package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"pdd-quiz-service/internal/domain"
	pgmigrations "pdd-quiz-service/internal/infra/postgres/migrations"
)

type ticketRow struct {
	bun.BaseModel `bun:"table:tickets"`

	Number    int             `bun:"number,pk"`
	Data      json.RawMessage `bun:"data,type:jsonb"`
	UpdatedAt time.Time       `bun:"updated_at"`
}

// OpenDB opens a bun handle over the pgdriver connector.
func OpenDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	return nil
}

// SeedTickets upserts tickets into the tickets table and returns how many were written.
func SeedTickets(ctx context.Context, db *bun.DB, tickets []domain.Ticket) (int, error) {
	if len(tickets) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([]ticketRow, 0, len(tickets))
	for _, t := range tickets {
		data, err := json.Marshal(t)
		if err != nil {
			return 0, fmt.Errorf("marshal ticket %d: %w", t.Number, err)
		}
		rows = append(rows, ticketRow{Number: t.Number, Data: data, UpdatedAt: now})
	}

	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (number) DO UPDATE").
		Set("data = EXCLUDED.data").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed tickets: %w", err)
	}
	return len(rows), nil
}
