package reports

import "errors"

var ErrNotFound = errors.New("report not found")

// Failure codes stored on failed reports.
const (
	ErrorCodeProfile  = "PROFILE_ERROR"
	ErrorCodeEngine   = "ENGINE_ERROR"
	ErrorCodeQueue    = "QUEUE_ERROR"
	ErrorCodeStorage  = "STORAGE_ERROR"
	ErrorCodeInternal = "INTERNAL_ERROR"
)
