package reports

import (
	"time"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/lineup"
	"github.com/amk92987/wos-optimizer/internal/power"
)

// Report status lifecycle.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Report is one asynchronous full advisor run over a profile.
type Report struct {
	ID            string
	UserID        string
	ProfileID     string
	Status        string
	Focus         string
	Result        *Result
	FailureCode   string
	FailureReason string
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// Result is the stored outcome of a completed run: the merged recommendation
// feed, the power plan, a lineup per mode, an optional AI summary, and the
// same content rendered as plain text.
type Result struct {
	Phase           string                  `json:"phase"`
	Summary         string                  `json:"summary,omitempty"`
	Recommendations []advice.Recommendation `json:"recommendations"`
	PowerPlan       []power.Upgrade         `json:"powerPlan"`
	Lineups         []lineup.Lineup         `json:"lineups"`
	Text            string                  `json:"text"`
	GeneratedAt     time.Time               `json:"generatedAt"`
}
