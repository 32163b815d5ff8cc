// Package worker consumes sync messages and mirrors the ledger into the
// configured backend, optionally exporting owner ledgers to Google Sheets.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fiscus/internal/amqp"
	"fiscus/internal/log"
	"fiscus/internal/metrics"
	"fiscus/internal/persist"
)

// SyncWorker applies sync messages to the backend. Messages carry the full
// transaction payload, so the worker never needs access to the publisher's
// in-memory stores.
type SyncWorker struct {
	backend  persist.Backend
	exporter persist.Saver // optional, nil disables export
	logger   *log.Logger

	mu    sync.Mutex
	dirty map[string]struct{} // owners mutated since last export
}

func NewSyncWorker(backend persist.Backend, exporter persist.Saver, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &SyncWorker{
		backend:  backend,
		exporter: exporter,
		logger:   logger,
		dirty:    make(map[string]struct{}),
	}
}

// HandleSync processes a single sync message. Returning an error causes the
// consumer to nack with requeue, so transient backend failures are retried.
func (w *SyncWorker) HandleSync(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Op {
	case amqp.OpUpsert:
		tx, err := msg.Decode()
		if err != nil {
			metrics.SyncProcessed.WithLabelValues(msg.Op, "invalid").Inc()
			return fmt.Errorf("decode sync message %s: %w", msg.ID, err)
		}
		if _, err := w.backend.Upsert(ctx, tx); err != nil {
			metrics.SyncProcessed.WithLabelValues(msg.Op, "error").Inc()
			return fmt.Errorf("upsert %s: %w", tx.ID, err)
		}

	case amqp.OpRemove:
		if err := w.backend.Remove(ctx, msg.ID); err != nil {
			metrics.SyncProcessed.WithLabelValues(msg.Op, "error").Inc()
			return fmt.Errorf("remove %s: %w", msg.ID, err)
		}

	default:
		metrics.SyncProcessed.WithLabelValues(msg.Op, "invalid").Inc()
		w.logger.WarnContext(ctx, "dropping message with unknown op",
			log.FieldOp, msg.Op, log.FieldTxID, msg.ID)
		return nil
	}

	metrics.SyncProcessed.WithLabelValues(msg.Op, "ok").Inc()
	w.markDirty(msg.Owner)

	w.logger.InfoContext(ctx, "sync message applied",
		log.FieldOp, msg.Op,
		log.FieldOwner, msg.Owner,
		log.FieldTxID, msg.ID)
	return nil
}

func (w *SyncWorker) markDirty(owner string) {
	if w.exporter == nil || owner == "" {
		return
	}
	w.mu.Lock()
	w.dirty[owner] = struct{}{}
	w.mu.Unlock()
}

// takeDirty returns and clears the set of owners mutated since the last call.
func (w *SyncWorker) takeDirty() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	owners := make([]string, 0, len(w.dirty))
	for owner := range w.dirty {
		owners = append(owners, owner)
	}
	w.dirty = make(map[string]struct{})
	return owners
}

// ExportDirty mirrors every owner mutated since the last export into the
// exporter. An owner that fails is re-marked dirty for the next round.
func (w *SyncWorker) ExportDirty(ctx context.Context) error {
	if w.exporter == nil {
		return nil
	}

	for _, owner := range w.takeDirty() {
		txs, err := w.backend.Load(ctx, owner)
		if err != nil {
			w.markDirty(owner)
			return fmt.Errorf("load %s for export: %w", owner, err)
		}
		if err := w.exporter.Save(ctx, owner, txs); err != nil {
			w.markDirty(owner)
			return fmt.Errorf("export %s: %w", owner, err)
		}
		w.logger.InfoContext(ctx, "exported owner ledger",
			log.FieldOwner, owner, log.FieldCount, len(txs))
	}
	return nil
}

// RunExportLoop exports dirty owners on a fixed interval until ctx is done.
func (w *SyncWorker) RunExportLoop(ctx context.Context, interval time.Duration) error {
	if w.exporter == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.ExportDirty(ctx); err != nil {
				w.logger.ErrorContext(ctx, "export round failed", log.FieldError, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
