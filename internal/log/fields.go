package log

// Common field names for structured logging.
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldMonth       = "month"
	FieldAccount     = "bank_account"
	FieldCard        = "credit_card"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldAmountCents = "amount_cents"
	FieldTxID        = "transaction_id"
	FieldTemplate    = "template"
	FieldSheetsRef   = "sheets_ref"
)

// Components defines standard component names.
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentLedger   = "ledger"
	ComponentCloser   = "closer"
	ComponentRecur    = "recurrence"
	ComponentRegistry = "registry"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExport   = "export"
)

// Operations defines standard operation names.
const (
	OpRecord    = "record"
	OpClose     = "close"
	OpExpand    = "expand"
	OpEvaluate  = "evaluate"
	OpBootstrap = "bootstrap"
	OpCreate    = "create"
	OpRetire    = "retire"
	OpList      = "list"
	OpExportRun = "export"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)
