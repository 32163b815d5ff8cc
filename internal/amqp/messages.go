package amqp

import (
	"encoding/json"
	"time"

	"fiscus/internal/core"
)

const (
	OpUpsert = "upsert"
	OpRemove = "remove"
)

// SyncMessage tells the worker to mirror one ledger mutation into the
// persistence backend. Upserts carry the full transaction because the
// worker has no access to the publisher's in-memory store; removes carry
// just the id.
type SyncMessage struct {
	Op          string    `json:"op"`
	Owner       string    `json:"owner"`
	ID          string    `json:"id"`
	Transaction *wireTx   `json:"transaction,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type wireTx struct {
	Type        string `json:"type"`
	AmountCents int64  `json:"amount_cents"`
	Category    string `json:"category,omitempty"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

const wireDateLayout = "2006-01-02"

// NewUpsertMessage builds a sync message carrying the full transaction.
func NewUpsertMessage(tx core.Transaction) *SyncMessage {
	return &SyncMessage{
		Op:    OpUpsert,
		Owner: tx.Owner,
		ID:    tx.ID,
		Transaction: &wireTx{
			Type:        string(tx.Type),
			AmountCents: tx.Amount.Cents,
			Category:    tx.Category,
			Date:        tx.Date.Format(wireDateLayout),
			Description: tx.Description,
		},
		Timestamp: time.Now(),
	}
}

// NewRemoveMessage builds a sync message for a deletion.
func NewRemoveMessage(owner, id string) *SyncMessage {
	return &SyncMessage{
		Op:        OpRemove,
		Owner:     owner,
		ID:        id,
		Timestamp: time.Now(),
	}
}

// Decode reconstructs the carried transaction for an upsert message.
func (m *SyncMessage) Decode() (core.Transaction, error) {
	if m.Op != OpUpsert || m.Transaction == nil {
		return core.Transaction{}, core.Validationf("message %s carries no transaction", m.ID)
	}
	parsed, err := time.Parse(wireDateLayout, m.Transaction.Date)
	if err != nil {
		return core.Transaction{}, core.Validationf("message %s has invalid date %q", m.ID, m.Transaction.Date)
	}
	return core.Transaction{
		ID:          m.ID,
		Owner:       m.Owner,
		Type:        core.TxType(m.Transaction.Type),
		Amount:      core.Money{Cents: m.Transaction.AmountCents},
		Category:    m.Transaction.Category,
		Date:        core.DateOf(parsed),
		Description: m.Transaction.Description,
	}, nil
}

// ToJSON converts the message to JSON bytes.
func (m *SyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncMessageFromJSON parses a message from JSON bytes.
func SyncMessageFromJSON(data []byte) (*SyncMessage, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
