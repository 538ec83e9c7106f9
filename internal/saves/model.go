package saves

import "time"

// Save is one uploaded game-state export. The raw file lives in object
// storage under StorageKey; the parsed state is applied to the owning
// profile at upload time, so a Save is an audit record, not live state.
type Save struct {
	ID         string
	UserID     string
	ProfileID  string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	CreatedAt  time.Time
}
