// Package gear scores the chief-gear, hero-gear and charm subsystems.
// Chief gear is account-wide and always outranks single-hero gear until every
// slot sits at the top quality; charms trail both.
package gear

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// desyncSpread is the quality gap between the best and worst chief-gear slot
// that triggers the catch-up recommendation.
const desyncSpread = 2

// charmLagBehind is how far the worst charm may trail the slot average before
// a catch-up recommendation fires.
const charmLagBehind = 2.0

// Advisor evaluates gear state against the reference cost tables.
type Advisor struct {
	tables *refdata.Tables
}

// New returns an Advisor bound to the given tables.
func New(tables *refdata.Tables) *Advisor {
	return &Advisor{tables: tables}
}

// Analyze produces gear recommendations for a normalized snapshot. A desync
// between chief-gear slots is always reported first at the highest priority;
// push-to-next-tier, hero gear and charm guidance follow.
func (a *Advisor) Analyze(snap snapshot.Snapshot) ([]advice.Recommendation, error) {
	recs := make([]advice.Recommendation, 0, 6)

	if rec, err := a.nextTierRecommendation(snap); err != nil {
		return nil, err
	} else if rec != nil {
		recs = append(recs, *rec)
	}

	recs = append(recs, a.heroGearRecommendations(snap)...)

	if rec, err := a.charmRecommendation(snap); err != nil {
		return nil, err
	} else if rec != nil {
		recs = append(recs, *rec)
	}

	if rec := a.desyncRecommendation(snap); rec != nil {
		recs = append([]advice.Recommendation{*rec}, recs...)
	}
	return recs, nil
}

// desyncRecommendation fires when the chief-gear set is uneven: mixed
// qualities waste the set bonus, so lagging slots come before any push.
func (a *Advisor) desyncRecommendation(snap snapshot.Snapshot) *advice.Recommendation {
	maxQuality := a.tables.MaxGearQuality()
	low, high := maxQuality, 1
	for _, slot := range snapshot.ChiefGearSlots {
		q := clampQuality(snap.ChiefGear[slot].Quality, maxQuality)
		if q < low {
			low = q
		}
		if q > high {
			high = q
		}
	}
	if high-low < desyncSpread {
		return nil
	}
	lagging := make([]string, 0, len(snapshot.ChiefGearSlots))
	for _, slot := range snapshot.ChiefGearSlots {
		if clampQuality(snap.ChiefGear[slot].Quality, maxQuality) <= high-desyncSpread {
			lagging = append(lagging, slot)
		}
	}
	return &advice.Recommendation{
		Priority: advice.PriorityUrgent,
		Action:   fmt.Sprintf("Bring lagging chief gear (%s) up toward quality %d", strings.Join(lagging, ", "), high),
		Category: advice.CategoryGear,
		Target:   strings.Join(lagging, ", "),
		Reason:   fmt.Sprintf("Your chief gear spans qualities %d to %d; uneven sets forfeit the set bonus on every march.", low, high),
		Tags:     []string{"chief_gear", "desync"},
		Source:   advice.SourceRules,
	}
}

// nextTierRecommendation picks the next chief-gear purchase: the lowest slot
// of the first class in the fixed upgrade order that still has headroom.
func (a *Advisor) nextTierRecommendation(snap snapshot.Snapshot) (*advice.Recommendation, error) {
	maxQuality := a.tables.MaxGearQuality()
	for _, class := range snapshot.ClassUpgradeOrder {
		slot, quality, found := lowestSlotForClass(snap, class, maxQuality)
		if !found || quality >= maxQuality {
			continue
		}
		next, err := a.tables.GearTier(quality + 1)
		if err != nil {
			return nil, fmt.Errorf("gear tier lookup: %w", err)
		}
		return &advice.Recommendation{
			Priority:     advice.PriorityHigh,
			Action:       fmt.Sprintf("Upgrade chief %s to %s (quality %d)", slot, next.Name, next.Quality),
			Category:     advice.CategoryGear,
			Target:       slot,
			Reason:       fmt.Sprintf("The %s line comes first in the class investment order; this step adds %.1f%% stats.", class, next.BonusPercent),
			ResourceCost: FormatCost(next.StepCost),
			Tags:         []string{"chief_gear", string(class)},
			Source:       advice.SourceRules,
		}, nil
	}
	return nil, nil
}

// heroGearRecommendations enforces the chief-first rule and the per-tier cap
// on how many heroes receive gear at once.
func (a *Advisor) heroGearRecommendations(snap snapshot.Snapshot) []advice.Recommendation {
	policy := a.tables.SpendingPolicy(snap.SpendingTier)
	invested := heroesWithGear(snap)
	chiefFull := chiefGearComplete(snap, a.tables.MaxGearQuality())

	recs := make([]advice.Recommendation, 0, 2)
	if len(invested) > policy.HeroGearCap {
		recs = append(recs, advice.Recommendation{
			Priority: advice.PriorityHigh,
			Action:   fmt.Sprintf("Consolidate hero gear onto at most %d heroes", policy.HeroGearCap),
			Category: advice.CategoryGear,
			Target:   strings.Join(invested, ", "),
			Reason:   fmt.Sprintf("You are gearing %d heroes but the %s budget sustains %d; spreading further stalls all of them.", len(invested), policy.Name, policy.HeroGearCap),
			Tags:     []string{"hero_gear", "spending_cap"},
			Source:   advice.SourceRules,
		})
	}

	if !chiefFull {
		if len(invested) > 0 {
			recs = append(recs, advice.Recommendation{
				Priority: advice.PriorityMedium,
				Action:   "Finish chief gear before spending more on hero gear",
				Category: advice.CategoryGear,
				Reason:   "Chief gear buffs every troop you ever march; hero gear only buffs one hero's troops.",
				Tags:     []string{"hero_gear", "chief_first"},
				Source:   advice.SourceRules,
			})
		}
		return recs
	}

	targets := topLevelHeroes(snap, policy.HeroGearCap)
	if len(targets) > 0 {
		recs = append(recs, advice.Recommendation{
			Priority: advice.PriorityMedium,
			Action:   fmt.Sprintf("Start hero gear on %s", strings.Join(targets, ", ")),
			Category: advice.CategoryGear,
			Target:   strings.Join(targets, ", "),
			Reason:   fmt.Sprintf("Chief gear is complete; your %s budget supports gearing %d heroes.", policy.Name, policy.HeroGearCap),
			Tags:     []string{"hero_gear"},
			Source:   advice.SourceRules,
		})
	}
	return recs
}

// charmRecommendation flags the worst charm slot when it trails the average
// by two or more levels.
func (a *Advisor) charmRecommendation(snap snapshot.Snapshot) (*advice.Recommendation, error) {
	slots := snapshot.CharmSlots()
	maxLevel := a.tables.MaxCharmLevel()
	total := 0
	lowSlot, lowLevel := "", maxLevel+1
	for _, slot := range slots {
		level := clampQuality(snap.Charms[slot], maxLevel)
		total += level
		if level < lowLevel {
			lowSlot, lowLevel = slot, level
		}
	}
	avg := float64(total) / float64(len(slots))
	if lowLevel >= maxLevel || avg-float64(lowLevel) < charmLagBehind {
		return nil, nil
	}
	next, err := a.tables.CharmLevel(lowLevel + 1)
	if err != nil {
		return nil, fmt.Errorf("charm level lookup: %w", err)
	}
	return &advice.Recommendation{
		Priority:     advice.PriorityMedium,
		Action:       fmt.Sprintf("Catch up the %s charm to level %d", lowSlot, next.Level),
		Category:     advice.CategoryGear,
		Target:       lowSlot,
		Reason:       fmt.Sprintf("This charm sits at level %d while your slots average %.1f; charm bonuses multiply with the gear piece they sit on.", lowLevel, avg),
		ResourceCost: FormatCost(next.StepCost),
		Tags:         []string{"charm", "catch_up"},
		Source:       advice.SourceRules,
	}, nil
}

// FormatCost renders a resource map as "qty resource" pairs in alphabetical
// resource order so output is stable.
func FormatCost(cost map[string]int) string {
	if len(cost) == 0 {
		return ""
	}
	resources := make([]string, 0, len(cost))
	for r := range cost {
		resources = append(resources, r)
	}
	sort.Strings(resources)
	parts := make([]string, 0, len(resources))
	for _, r := range resources {
		parts = append(parts, fmt.Sprintf("%d %s", cost[r], r))
	}
	return strings.Join(parts, ", ")
}

func lowestSlotForClass(snap snapshot.Snapshot, class snapshot.TroopClass, maxQuality int) (string, int, bool) {
	slot, quality, found := "", maxQuality+1, false
	for _, s := range snapshot.ChiefGearSlots {
		c, err := snapshot.ClassForSlot(s)
		if err != nil || c != class {
			continue
		}
		q := clampQuality(snap.ChiefGear[s].Quality, maxQuality)
		if q < quality {
			slot, quality, found = s, q, true
		}
	}
	return slot, quality, found
}

func heroesWithGear(snap snapshot.Snapshot) []string {
	names := make([]string, 0, len(snap.Heroes))
	for _, name := range snap.HeroNames() {
		if len(snap.Heroes[name].Gear) > 0 {
			names = append(names, name)
		}
	}
	return names
}

func topLevelHeroes(snap snapshot.Snapshot, limit int) []string {
	names := snap.HeroNames()
	sort.SliceStable(names, func(i, j int) bool {
		return snap.Heroes[names[i]].Level > snap.Heroes[names[j]].Level
	})
	if len(names) > limit {
		names = names[:limit]
	}
	return names
}

func chiefGearComplete(snap snapshot.Snapshot, maxQuality int) bool {
	for _, slot := range snapshot.ChiefGearSlots {
		if snap.ChiefGear[slot].Quality < maxQuality {
			return false
		}
	}
	return true
}

func clampQuality(q, max int) int {
	if q < 1 {
		return 1
	}
	if q > max {
		return max
	}
	return q
}
