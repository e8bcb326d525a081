package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldExpenseID = "id"
	FieldTitle     = "title"
	FieldAmount    = "amount"
	FieldCategory  = "category"
	FieldDate      = "date"
	FieldQuery     = "query"
	FieldPath      = "path"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStorage   = "storage"
	ComponentStore     = "store"
	ComponentViewState = "viewstate"
	ComponentReport    = "report"
	ComponentCLI       = "cli"
)
