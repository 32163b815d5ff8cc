// Package persist defines the ports the ledger core uses to talk to a
// persistence collaborator. Implementations live in subpackages (memory,
// sqlite, postgres, sheets). All operations are context-aware and expected
// to be idempotent on retry; failures surface as core.TransportError and are
// never retried here.
package persist

import (
	"context"

	"fiscus/internal/core"
)

type (
	// Loader fetches all transactions for an owner, most recent first.
	Loader interface {
		Load(ctx context.Context, owner string) ([]core.Transaction, error)
	}

	// Saver replaces an owner's stored transactions wholesale. Used by the
	// sync worker for full-ledger mirrors and exports.
	Saver interface {
		Save(ctx context.Context, owner string, txs []core.Transaction) error
	}

	// Upserter writes a single transaction, inserting or replacing by id,
	// and returns the stored id.
	Upserter interface {
		Upsert(ctx context.Context, tx core.Transaction) (string, error)
	}

	// Remover deletes a transaction by id. Removing an absent id succeeds,
	// keeping retries idempotent.
	Remover interface {
		Remove(ctx context.Context, id string) error
	}

	// Backend is the full contract a primary store must satisfy.
	Backend interface {
		Loader
		Upserter
		Remover
	}
)
