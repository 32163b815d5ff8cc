// Package postgres is the remote persistence backend for the multi-device
// variant, backed by a pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fiscus/internal/core"
	"fiscus/internal/persist"
)

type Repository struct {
	pool *pgxpool.Pool
}

var (
	_ persist.Backend = (*Repository)(nil)
	_ persist.Saver   = (*Repository)(nil)
)

// New connects to the database at url and ensures the schema exists.
func New(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := &Repository{pool: pool}
	if err := repo.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

func (r *Repository) Close() {
	r.pool.Close()
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			owner TEXT NOT NULL,
			tx_type TEXT NOT NULL CHECK (tx_type IN ('income', 'expense')),
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			category TEXT NOT NULL DEFAULT '',
			tx_date DATE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			seq BIGSERIAL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_owner_date
			ON transactions (owner, tx_date DESC);`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *Repository) Load(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner, tx_type, amount_cents, category, tx_date, description
		FROM transactions
		WHERE owner = $1
		ORDER BY tx_date DESC, seq ASC`, owner)
	if err != nil {
		return nil, &core.TransportError{Op: "postgres load", Err: err}
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			tx     core.Transaction
			txType string
			date   time.Time
		)
		if err := rows.Scan(&tx.ID, &tx.Owner, &txType, &tx.Amount.Cents, &tx.Category, &date, &tx.Description); err != nil {
			return nil, &core.TransportError{Op: "postgres scan", Err: err}
		}
		tx.Type = core.TxType(txType)
		tx.Date = core.DateOf(date)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.TransportError{Op: "postgres load", Err: err}
	}
	return out, nil
}

func (r *Repository) Upsert(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", core.Validationf("upsert requires a transaction id")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO transactions (id, owner, tx_type, amount_cents, category, tx_date, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			tx_type = EXCLUDED.tx_type,
			amount_cents = EXCLUDED.amount_cents,
			category = EXCLUDED.category,
			tx_date = EXCLUDED.tx_date,
			description = EXCLUDED.description`,
		tx.ID, tx.Owner, string(tx.Type), tx.Amount.Cents, tx.Category,
		tx.Date.Time, tx.Description)
	if err != nil {
		return "", &core.TransportError{Op: "postgres upsert", Err: err}
	}
	return tx.ID, nil
}

func (r *Repository) Remove(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return &core.TransportError{Op: "postgres remove", Err: err}
	}
	return nil
}

// Save replaces the owner's transactions wholesale in a single database
// transaction.
func (r *Repository) Save(ctx context.Context, owner string, txs []core.Transaction) error {
	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return &core.TransportError{Op: "postgres save", Err: err}
	}
	defer dbTx.Rollback(ctx)

	if _, err := dbTx.Exec(ctx, `DELETE FROM transactions WHERE owner = $1`, owner); err != nil {
		return &core.TransportError{Op: "postgres save", Err: err}
	}
	for _, tx := range txs {
		if tx.ID == "" {
			return core.Validationf("save requires transaction ids")
		}
		_, err := dbTx.Exec(ctx, `
			INSERT INTO transactions (id, owner, tx_type, amount_cents, category, tx_date, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			tx.ID, owner, string(tx.Type), tx.Amount.Cents, tx.Category,
			tx.Date.Time, tx.Description)
		if err != nil {
			return &core.TransportError{Op: "postgres save", Err: err}
		}
	}
	if err := dbTx.Commit(ctx); err != nil {
		return &core.TransportError{Op: "postgres save", Err: err}
	}
	return nil
}
