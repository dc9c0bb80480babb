package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldBudget        = "budget"
	FieldSheetsRef     = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp         = "app"
	ComponentHTTP        = "http"
	ComponentTransaction = "transaction"
	ComponentWorker      = "worker"
)

// Operations defines standard operation names
const (
	OpDelete   = "delete"
	OpSync     = "sync"
	OpExtract  = "extract"
	OpDigest   = "digest"
	OpShutdown = "shutdown"
)
