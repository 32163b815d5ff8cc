package log

// Component names used across the application.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentService = "service"
	ComponentPersist = "persist"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentAdvisor = "advisor"
	ComponentConfig  = "config"
)

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOwner       = "owner"
	FieldTxID        = "tx_id"
	FieldTxType      = "tx_type"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldOp          = "op"
	FieldBackend     = "backend"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldPort        = "port"
	FieldQueue       = "queue"
	FieldExchange    = "exchange"
)
