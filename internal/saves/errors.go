package saves

import "errors"

var (
	// ErrNotFound indicates the save does not exist or belongs to another user.
	ErrNotFound = errors.New("save not found")
	// ErrInvalidInput indicates the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrBadExport indicates the uploaded file is not a recognizable game export.
	ErrBadExport = errors.New("unrecognized export file")
)
