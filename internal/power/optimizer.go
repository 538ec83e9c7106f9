// Package power normalizes every upgrade path onto a single efficiency axis:
// power gained per weighted resource spent. Each subsystem contributes its
// adjacent current-to-next edges; nothing at its maximum is ever emitted.
package power

import (
	"fmt"
	"sort"

	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// DefaultLimit caps TopRecommendations when the caller does not choose one.
const DefaultLimit = 10

// Per-type priority used as the tie-break after efficiency. Account-wide
// tracks rank ahead of per-hero and long-tail tracks.
var typePriority = map[string]int{
	TypeChiefGear:    2,
	TypeHeroLevel:    2,
	TypeTroopTier:    2,
	TypeCharm:        3,
	TypeHeroStar:     3,
	TypeResearch:     3,
	TypePets:         4,
	TypeAllianceTech: 4,
}

// Optimizer computes upgrade edges against the reference tables.
type Optimizer struct {
	tables *refdata.Tables
}

// New returns an Optimizer bound to the given tables.
func New(tables *refdata.Tables) *Optimizer {
	return &Optimizer{tables: tables}
}

// Analyze returns every upgrade edge for the snapshot, qualitative tracks
// included, ranked by efficiency.
func (o *Optimizer) Analyze(snap snapshot.Snapshot) ([]Upgrade, error) {
	edges := make([]Upgrade, 0, 32)

	builders := []func(snapshot.Snapshot) ([]Upgrade, error){
		o.chiefGearEdges,
		o.charmEdges,
		o.heroLevelEdges,
		o.heroStarEdges,
		o.troopTierEdges,
		o.researchEdges,
	}
	for _, build := range builders {
		out, err := build(snap)
		if err != nil {
			return nil, err
		}
		edges = append(edges, out...)
	}
	edges = append(edges, qualitativeEdges()...)
	rank(edges)
	return edges, nil
}

// TopRecommendations is Analyze minus the qualitative tracks, truncated.
func (o *Optimizer) TopRecommendations(snap snapshot.Snapshot, limit int) ([]Upgrade, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	all, err := o.Analyze(snap)
	if err != nil {
		return nil, err
	}
	out := make([]Upgrade, 0, limit)
	for _, edge := range all {
		if edge.Confidence == ConfidenceQualitative {
			continue
		}
		out = append(out, edge)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// rank orders edges by descending efficiency, then ascending priority, then
// target and type so the output is fully deterministic.
func rank(edges []Upgrade) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Efficiency != b.Efficiency {
			return a.Efficiency > b.Efficiency
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Type < b.Type
	})
}

func (o *Optimizer) chiefGearEdges(snap snapshot.Snapshot) ([]Upgrade, error) {
	maxQ := o.tables.MaxGearQuality()
	edges := make([]Upgrade, 0, len(snapshot.ChiefGearSlots))
	for _, slot := range snapshot.ChiefGearSlots {
		quality := snap.ChiefGear[slot].Quality
		if quality >= maxQ {
			continue
		}
		cur, err := o.tables.GearTier(quality)
		if err != nil {
			return nil, fmt.Errorf("chief gear edge: %w", err)
		}
		next, err := o.tables.GearTier(quality + 1)
		if err != nil {
			return nil, fmt.Errorf("chief gear edge: %w", err)
		}
		edge, err := o.newEdge(TypeChiefGear, slot, quality, quality+1,
			float64(next.StepPower), next.BonusPercent-cur.BonusPercent,
			next.StepCost, ConfidenceExact,
			fmt.Sprintf("Chief %s to %s buffs every march's stats.", slot, next.Name))
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func (o *Optimizer) charmEdges(snap snapshot.Snapshot) ([]Upgrade, error) {
	maxL := o.tables.MaxCharmLevel()
	edges := make([]Upgrade, 0, 8)
	for _, slot := range snapshot.CharmSlots() {
		level := snap.Charms[slot]
		if level >= maxL {
			continue
		}
		cur, err := o.tables.CharmLevel(level)
		if err != nil {
			return nil, fmt.Errorf("charm edge: %w", err)
		}
		next, err := o.tables.CharmLevel(level + 1)
		if err != nil {
			return nil, fmt.Errorf("charm edge: %w", err)
		}
		edge, err := o.newEdge(TypeCharm, slot, level, level+1,
			float64(next.StepPower), next.BonusPercent-cur.BonusPercent,
			next.StepCost, ConfidenceExact,
			fmt.Sprintf("Charm %s adds flat stats on top of its gear piece.", slot))
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func (o *Optimizer) heroLevelEdges(snap snapshot.Snapshot) ([]Upgrade, error) {
	growth := o.tables.Growth
	edges := make([]Upgrade, 0, len(snap.Heroes))
	for _, name := range snap.HeroNames() {
		if _, err := o.tables.Hero(name); err != nil {
			continue // player data, not vocabulary
		}
		level := snap.Heroes[name].Level
		if level >= growth.MaxLevel {
			continue
		}
		xp, gained, exact := growth.LevelStep(level)
		confidence := ConfidenceExact
		reason := fmt.Sprintf("Next level for %s from the growth table.", name)
		if !exact {
			confidence = ConfidenceEstimated
			reason = fmt.Sprintf("Next level for %s extrapolated past the measured bands.", name)
		}
		edge, err := o.newEdge(TypeHeroLevel, name, level, level+1,
			float64(gained), 0, map[string]int{"hero_xp": xp}, confidence, reason)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func (o *Optimizer) heroStarEdges(snap snapshot.Snapshot) ([]Upgrade, error) {
	growth := o.tables.Growth
	edges := make([]Upgrade, 0, len(snap.Heroes))
	for _, name := range snap.HeroNames() {
		hero, err := o.tables.Hero(name)
		if err != nil {
			continue
		}
		stars := snap.Heroes[name].Stars
		if stars >= growth.MaxStars {
			continue
		}
		step, err := growth.StarStep(stars + 1)
		if err != nil {
			return nil, fmt.Errorf("hero star edge: %w", err)
		}
		gain := float64(hero.BasePower) * (step.PowerMultiplier - growth.StarMultiplier(stars))
		edge, err := o.newEdge(TypeHeroStar, name, stars, stars+1,
			gain, 0, map[string]int{"hero_shards": step.Shards}, ConfidenceExact,
			fmt.Sprintf("Star %d multiplies %s's base power to %.2fx.", step.Star, name, step.PowerMultiplier))
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// troopTierEdges models promoting one batch to the next tier, gated on the
// furnace level that unlocks it.
func (o *Optimizer) troopTierEdges(snap snapshot.Snapshot) ([]Upgrade, error) {
	tier := snap.Troops.HighestTier
	if tier >= o.tables.MaxTroopTier() {
		return nil, nil
	}
	cur, err := o.tables.TroopTier(tier)
	if err != nil {
		return nil, fmt.Errorf("troop tier edge: %w", err)
	}
	next, err := o.tables.TroopTier(tier + 1)
	if err != nil {
		return nil, fmt.Errorf("troop tier edge: %w", err)
	}
	if next.UnlockFurnace > snap.Progression.FurnaceLevel {
		return nil, nil
	}
	batch := o.tables.PromotionBatch
	gain := float64((next.PowerPerUnit - cur.PowerPerUnit) * batch)
	edge, err := o.newEdge(TypeTroopTier, next.Name, tier, tier+1,
		gain, 0, scaleCost(next.Cost, batch), ConfidenceExact,
		fmt.Sprintf("Promote a batch of %d troops to %s.", batch, next.Name))
	if err != nil {
		return nil, err
	}
	return []Upgrade{edge}, nil
}

func (o *Optimizer) researchEdges(snap snapshot.Snapshot) ([]Upgrade, error) {
	edges := make([]Upgrade, 0, len(o.tables.Research))
	for _, line := range o.tables.Research {
		level := snap.Research[line.ID]
		if level >= line.MaxLevel {
			continue
		}
		if line.FurnaceRequired > snap.Progression.FurnaceLevel {
			continue
		}
		edge, err := o.newEdge(TypeResearch, line.Name, level, level+1,
			float64(line.PowerPerLevel), 0, scaleCost(line.CostPerLevel, level+1), ConfidenceExact,
			fmt.Sprintf("%s research, level %d of %d.", line.Name, level+1, line.MaxLevel))
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

// qualitativeEdges covers the tracks the tables carry no numbers for. They
// surface in Analyze only; TopRecommendations filters them out.
func qualitativeEdges() []Upgrade {
	return []Upgrade{
		{
			Type:       TypePets,
			Target:     "pets",
			Priority:   typePriority[TypePets],
			Confidence: ConfidenceQualitative,
			Reason:     "Pet advancement adds march buffs; the cost curve varies by pet and is not tracked numerically.",
		},
		{
			Type:       TypeAllianceTech,
			Target:     "alliance_tech",
			Priority:   typePriority[TypeAllianceTech],
			Confidence: ConfidenceQualitative,
			Reason:     "Alliance tech donations convert spare resources into permanent buffs; returns depend on alliance focus.",
		},
	}
}

// newEdge fills the derived fields: normalized cost, efficiency and priority.
func (o *Optimizer) newEdge(edgeType, target string, from, to int, gain, bonus float64, cost map[string]int, confidence Confidence, reason string) (Upgrade, error) {
	normalized, err := o.tables.NormalizedCost(cost)
	if err != nil {
		return Upgrade{}, fmt.Errorf("normalize cost for %s %s: %w", edgeType, target, err)
	}
	efficiency := 0.0
	if normalized > 0 {
		efficiency = gain / normalized
	}
	return Upgrade{
		Type:       edgeType,
		Target:     target,
		FromLevel:  from,
		ToLevel:    to,
		PowerGain:  gain,
		BonusGain:  bonus,
		Cost:       cost,
		Efficiency: efficiency,
		Priority:   typePriority[edgeType],
		Confidence: confidence,
		Reason:     reason,
	}, nil
}

func scaleCost(cost map[string]int, factor int) map[string]int {
	out := make(map[string]int, len(cost))
	for resource, qty := range cost {
		out[resource] = qty * factor
	}
	return out
}
