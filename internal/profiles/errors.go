package profiles

import "errors"

var (
	// ErrNotFound indicates the profile does not exist or is owned by
	// someone else; the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidInput indicates the caller supplied unusable data.
	ErrInvalidInput = errors.New("invalid input")
)
