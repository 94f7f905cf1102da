package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, carried through the call chain in the context logger.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldMemeID is the meme being acted on
	FieldMemeID = "meme_id"

	// FieldUserID is the acting user
	FieldUserID = "user_id"

	// FieldClientID is the realtime subscription ID
	FieldClientID = "client_id"

	// FieldTopic is the realtime topic
	FieldTopic = "topic"

	// FieldEvent is the realtime event name
	FieldEvent = "event"
)

// Metric fields, attached per entry for aggregation.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldSize is the data size in bytes
	FieldSize = "size"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldCacheHit marks whether a cache answered the call
	FieldCacheHit = "cache_hit"
)
