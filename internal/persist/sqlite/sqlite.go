// Package sqlite is the local persistence backend, backed by a single
// SQLite database file with embedded migrations.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fiscus/internal/core"
	"fiscus/internal/persist"
)

type Repository struct {
	db *sql.DB
}

var (
	_ persist.Backend = (*Repository)(nil)
	_ persist.Saver   = (*Repository)(nil)
)

// New opens (creating if needed) the database at dbPath and applies
// migrations.
func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const dateLayout = "2006-01-02"

// Load returns all of the owner's transactions, newest first; rows sharing a
// date come back in insertion order.
func (r *Repository) Load(ctx context.Context, owner string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, tx_type, amount_cents, category, tx_date, description
		FROM transactions
		WHERE owner = ?
		ORDER BY tx_date DESC, rowid ASC`, owner)
	if err != nil {
		return nil, &core.TransportError{Op: "sqlite load", Err: err}
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		var (
			tx      core.Transaction
			txType  string
			rawDate string
		)
		if err := rows.Scan(&tx.ID, &tx.Owner, &txType, &tx.Amount.Cents, &tx.Category, &rawDate, &tx.Description); err != nil {
			return nil, &core.TransportError{Op: "sqlite scan", Err: err}
		}
		tx.Type = core.TxType(txType)
		parsed, err := time.Parse(dateLayout, rawDate)
		if err != nil {
			return nil, &core.TransportError{Op: "sqlite parse date", Err: err}
		}
		tx.Date = core.DateOf(parsed)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.TransportError{Op: "sqlite load", Err: err}
	}
	return out, nil
}

// Upsert inserts or replaces the row for tx.ID.
func (r *Repository) Upsert(ctx context.Context, tx core.Transaction) (string, error) {
	if tx.ID == "" {
		return "", core.Validationf("upsert requires a transaction id")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner, tx_type, amount_cents, category, tx_date, description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			tx_type = excluded.tx_type,
			amount_cents = excluded.amount_cents,
			category = excluded.category,
			tx_date = excluded.tx_date,
			description = excluded.description`,
		tx.ID, tx.Owner, string(tx.Type), tx.Amount.Cents, tx.Category,
		tx.Date.Format(dateLayout), tx.Description)
	if err != nil {
		return "", &core.TransportError{Op: "sqlite upsert", Err: err}
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"owner", tx.Owner,
		"type", string(tx.Type),
		"amount_cents", tx.Amount.Cents)

	return tx.ID, nil
}

// Remove deletes by id; deleting an absent row succeeds.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return &core.TransportError{Op: "sqlite remove", Err: err}
	}
	return nil
}

// Save replaces the owner's transactions wholesale inside one transaction,
// so a failure leaves the previous contents intact.
func (r *Repository) Save(ctx context.Context, owner string, txs []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.TransportError{Op: "sqlite save", Err: err}
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE owner = ?`, owner); err != nil {
		return &core.TransportError{Op: "sqlite save", Err: err}
	}
	for _, tx := range txs {
		if tx.ID == "" {
			return core.Validationf("save requires transaction ids")
		}
		_, err := dbTx.ExecContext(ctx, `
			INSERT INTO transactions (id, owner, tx_type, amount_cents, category, tx_date, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, owner, string(tx.Type), tx.Amount.Cents, tx.Category,
			tx.Date.Format(dateLayout), tx.Description)
		if err != nil {
			return &core.TransportError{Op: "sqlite save", Err: err}
		}
	}
	if err := dbTx.Commit(); err != nil {
		return &core.TransportError{Op: "sqlite save", Err: err}
	}
	return nil
}
