package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Tracing fields, propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldViewerID is the viewer the feed is ranked for ("anonymous" when unknown)
	FieldViewerID = "viewer_id"

	// FieldPass is the scoring pass currently running
	FieldPass = "pass"

	// FieldCursor marks a request that carried a pagination cursor
	FieldCursor = "has_cursor"
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

	// FieldCacheHit marks whether a response was served from the score cache
	FieldCacheHit = "cache_hit"

	// FieldLimit is the clamped page size
	FieldLimit = "limit"

	// FieldCandidates is the number of scored candidates before truncation
	FieldCandidates = "candidates"
)
