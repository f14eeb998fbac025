package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reshop/server/internal/models"
)

// PaymentLedger records created payment intents in PostgreSQL.
type PaymentLedger struct {
	pool *pgxpool.Pool
}

func NewPaymentLedger(pool *pgxpool.Pool) *PaymentLedger {
	return &PaymentLedger{pool: pool}
}

// Migrate creates the payment_intents table if it doesn't exist.
func (s *PaymentLedger) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS payment_intents (
			id         TEXT PRIMARY KEY,
			email      VARCHAR(255) NOT NULL,
			amount     BIGINT       NOT NULL,
			currency   VARCHAR(3)   NOT NULL,
			created_at TIMESTAMPTZ  DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS payment_intents_email_idx ON payment_intents (email);
	`)
	return err
}

func (s *PaymentLedger) Record(ctx context.Context, rec models.PaymentRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO payment_intents (id, email, amount, currency)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.Email, rec.Amount, rec.Currency,
	)
	if err != nil {
		return fmt.Errorf("record payment intent: %w", err)
	}
	return nil
}

func (s *PaymentLedger) ListByEmail(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, amount, currency, created_at
		 FROM payment_intents WHERE email = $1 ORDER BY created_at DESC`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("list payment intents: %w", err)
	}
	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PaymentRecord, error) {
		var r models.PaymentRecord
		err := row.Scan(&r.ID, &r.Email, &r.Amount, &r.Currency, &r.CreatedAt)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("list payment intents: %w", err)
	}
	return recs, nil
}
