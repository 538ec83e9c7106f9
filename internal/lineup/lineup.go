// Package lineup assembles per-mode march lineups from the owned roster and
// the mode templates.
package lineup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/heroes"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// marchSize is how many heroes one march fields.
const marchSize = 5

// roleFitBonus is added to a hero's value when it carries a mode-preferred
// role.
const roleFitBonus = 1.0

// exactRoleOwners is how many preferred-role heroes the roster must own
// before a built lineup counts as exact rather than estimated.
const exactRoleOwners = 3

// maxAnalyzeRecs caps how many weak modes Analyze reports.
const maxAnalyzeRecs = 3

// Confidence states how solid a built lineup is.
type Confidence string

const (
	ConfidenceExact     Confidence = "exact"
	ConfidenceEstimated Confidence = "estimated"
)

// Pick is one hero slot in a built lineup.
type Pick struct {
	Hero  string              `json:"hero"`
	Class snapshot.TroopClass `json:"class"`
	Role  string              `json:"role,omitempty"`
	Value float64             `json:"value"`
}

// Lineup is a ready-to-field march for one mode.
type Lineup struct {
	Mode       string                      `json:"mode"`
	Name       string                      `json:"name"`
	Heroes     []Pick                      `json:"heroes"`
	TroopRatio map[snapshot.TroopClass]int `json:"troopRatio"`
	Notes      []string                    `json:"notes"`
	Confidence Confidence                  `json:"confidence"`
}

// Builder ranks the roster against mode templates.
type Builder struct {
	tables *refdata.Tables
}

// New returns a Builder bound to the given tables.
func New(tables *refdata.Tables) *Builder {
	return &Builder{tables: tables}
}

// Build assembles the lineup for one mode: roster value plus a flat bonus for
// mode-preferred roles, ties broken by name. An unknown mode is a vocabulary
// error; an empty roster builds an empty, estimated lineup.
func (b *Builder) Build(mode string, snap snapshot.Snapshot) (Lineup, error) {
	tpl, err := b.tables.Lineup(mode)
	if err != nil {
		return Lineup{}, fmt.Errorf("build lineup: %w", err)
	}

	ranked := heroes.Rank(b.tables, snap)
	type scored struct {
		pick  Pick
		total float64
	}
	candidates := make([]scored, 0, len(ranked))
	roleOwners := 0
	for _, r := range ranked {
		role := preferredRoleFor(r.Hero, tpl.PreferredRoles)
		total := r.Value
		if role != "" {
			total += roleFitBonus
			roleOwners++
		}
		candidates = append(candidates, scored{
			pick:  Pick{Hero: r.Hero.Name, Class: r.Hero.Class, Role: role, Value: total},
			total: total,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].total != candidates[j].total {
			return candidates[i].total > candidates[j].total
		}
		return candidates[i].pick.Hero < candidates[j].pick.Hero
	})
	if len(candidates) > marchSize {
		candidates = candidates[:marchSize]
	}

	picks := make([]Pick, 0, len(candidates))
	for _, c := range candidates {
		picks = append(picks, c.pick)
	}
	confidence := ConfidenceEstimated
	if roleOwners >= exactRoleOwners {
		confidence = ConfidenceExact
	}
	return Lineup{
		Mode:       tpl.ID,
		Name:       tpl.Name,
		Heroes:     picks,
		TroopRatio: tpl.Ratio,
		Notes:      tpl.Notes,
		Confidence: confidence,
	}, nil
}

// Analyze reports the modes whose lineup would only be estimated, suggesting
// the roles the roster is missing. At most three modes are reported, in the
// fixed mode order.
func (b *Builder) Analyze(snap snapshot.Snapshot) ([]advice.Recommendation, error) {
	recs := make([]advice.Recommendation, 0, maxAnalyzeRecs)
	for _, mode := range b.tables.ModeOrder {
		if len(recs) == maxAnalyzeRecs {
			break
		}
		built, err := b.Build(mode, snap)
		if err != nil {
			return nil, err
		}
		if built.Confidence == ConfidenceExact {
			continue
		}
		tpl, err := b.tables.Lineup(mode)
		if err != nil {
			return nil, err
		}
		recs = append(recs, advice.Recommendation{
			Priority: advice.PriorityMedium,
			Action:   fmt.Sprintf("Recruit or level heroes with %s roles for %s", strings.Join(tpl.PreferredRoles, " or "), tpl.Name),
			Category: advice.CategoryLineup,
			Target:   mode,
			Reason:   fmt.Sprintf("Fewer than %d of your heroes fit the %s template, so its lineup is a guess.", exactRoleOwners, tpl.Name),
			Tags:     []string{"roster_gap", mode},
			Source:   advice.SourceRules,
		})
	}
	return recs, nil
}

// preferredRoleFor returns the first template role the hero carries, in
// template order, or empty when none fit.
func preferredRoleFor(h refdata.Hero, preferred []string) string {
	for _, role := range preferred {
		if h.HasRole(role) {
			return role
		}
	}
	return ""
}
