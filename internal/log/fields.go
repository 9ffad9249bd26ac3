package log

// Field names
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldScenario   = "scenario"
	FieldMonth      = "month"
	FieldSlot       = "slot"
	FieldBackend    = "backend"
	FieldChange     = "change"
	FieldAttempt    = "attempt"
)

// Components
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentPlan      = "plan"
	ComponentStore     = "store"
	ComponentEvents    = "events"
	ComponentNarrative = "narrative"
	ComponentAccess    = "access"
	ComponentCLI       = "cli"
)

// Operations
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpApply    = "apply"
	OpPublish  = "publish"
	OpGenerate = "generate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
