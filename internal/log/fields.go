package log

// Canonical field name constants for structured logging.
const (
	FieldSessionID = "session_id"
	FieldRequestID = "request_id"
	FieldEvent     = "event"
	FieldComponent = "component"

	FieldChapter  = "chapter"
	FieldLecture  = "lecture"
	FieldQuery    = "query"
	FieldFile     = "file"
	FieldPath     = "path"
	FieldStatus   = "status"
	FieldDuration = "duration"
)
