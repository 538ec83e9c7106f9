// Package progression places an account in one of the four ordered game
// phases and turns the phase playbook into tips.
package progression

import (
	"fmt"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Tip caps per analysis. The playbook lists are longer; only the head is
// surfaced so phase tips never crowd out subsystem recommendations.
const (
	maxFocusTips   = 3
	maxMistakeTips = 2
)

// Tracker detects the account's phase from the reference thresholds.
type Tracker struct {
	tables *refdata.Tables
}

// New returns a Tracker bound to the given tables.
func New(tables *refdata.Tables) *Tracker {
	return &Tracker{tables: tables}
}

// DetectPhase returns the most advanced phase the account qualifies for.
// Phases are stored highest first and the last phase accepts everything, so
// detection is total and tie-free.
func (t *Tracker) DetectPhase(snap snapshot.Snapshot) refdata.Phase {
	for _, phase := range t.tables.Phases {
		if phaseMatches(phase, snap.Progression) {
			return phase
		}
	}
	return t.tables.Phases[len(t.tables.Phases)-1]
}

// phaseMatches checks the building path (furnace and fire crystal together)
// or, where the phase defines one, the account-age path.
func phaseMatches(p refdata.Phase, prog snapshot.Progression) bool {
	if prog.FurnaceLevel >= p.MinFurnace && prog.FireCrystalLevel >= p.MinFireCrystal {
		return true
	}
	return p.MinAgeDays > 0 && prog.AccountAgeDays >= p.MinAgeDays
}

// Analyze emits the current phase's playbook verbatim: up to three focus tips
// at priority 2 followed by up to two mistake warnings at priority 3, in list
// order.
func (t *Tracker) Analyze(snap snapshot.Snapshot) ([]advice.Recommendation, error) {
	phase := t.DetectPhase(snap)
	recs := make([]advice.Recommendation, 0, maxFocusTips+maxMistakeTips)
	for i, tip := range phase.Focus {
		if i >= maxFocusTips {
			break
		}
		recs = append(recs, advice.Recommendation{
			Priority: advice.PriorityHigh,
			Action:   tip,
			Category: advice.CategoryProgression,
			Target:   phase.ID,
			Reason:   fmt.Sprintf("%s focus, item %d of the phase playbook.", phase.Name, i+1),
			Tags:     []string{"phase", phase.ID},
			Source:   advice.SourceRules,
		})
	}
	for i, warn := range phase.Mistakes {
		if i >= maxMistakeTips {
			break
		}
		recs = append(recs, advice.Recommendation{
			Priority: advice.PriorityMedium,
			Action:   "Avoid: " + warn,
			Category: advice.CategoryProgression,
			Target:   phase.ID,
			Reason:   fmt.Sprintf("Common %s mistake.", phase.Name),
			Tags:     []string{"phase", phase.ID, "mistake"},
			Source:   advice.SourceRules,
		})
	}
	return recs, nil
}
