// Package heroes scores owned heroes and recommends where hero XP, shards and
// skill books should go. The value function here is also what the lineup
// builder ranks candidates with.
package heroes

import (
	"fmt"
	"sort"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Value weights. Tier dominates, recency keeps old generations from hogging
// XP, skills break near-ties between similar heroes.
const (
	tierWeight    = 2.0
	recencyWeight = 1.5
	skillWeight   = 0.5
	recencyDecay  = 0.15
)

// maxSkillLevel is the top level of a single hero skill.
const maxSkillLevel = 5

// spreadAllowance is how many heroes beyond the gear cap may carry serious
// levels before the analyzer calls the investment spread out. XP spreads
// wider than gear money.
const spreadAllowance = 2

// investedLevel is the hero level from which XP spent counts as investment.
const investedLevel = 20

// Value scores one owned hero. Higher is better; the score is deterministic
// for a given catalogue entry, state and generation frontier.
func Value(h refdata.Hero, state snapshot.HeroState, currentGen int) float64 {
	recency := 1.0 - recencyDecay*float64(currentGen-h.Generation)
	if recency < 0 {
		recency = 0
	}
	return tierWeight*h.Tier + recencyWeight*recency + skillWeight*avgSkill(state)
}

func avgSkill(state snapshot.HeroState) float64 {
	if len(state.Skills) == 0 {
		return 0
	}
	total := 0
	for _, level := range state.Skills {
		total += level
	}
	return float64(total) / float64(len(state.Skills))
}

// CurrentGeneration is the max catalogue generation among owned heroes, at
// least 1. It anchors the recency term.
func CurrentGeneration(tables *refdata.Tables, snap snapshot.Snapshot) int {
	gen := 1
	for name := range snap.Heroes {
		h, err := tables.Hero(name)
		if err != nil {
			continue
		}
		if h.Generation > gen {
			gen = h.Generation
		}
	}
	return gen
}

// Ranked pairs an owned hero with its computed value.
type Ranked struct {
	Hero  refdata.Hero
	State snapshot.HeroState
	Value float64
}

// Rank scores every owned hero present in the catalogue, sorted by value
// descending with name ascending as the tie-break. Names the catalogue does
// not know are player data and are skipped, not errors.
func Rank(tables *refdata.Tables, snap snapshot.Snapshot) []Ranked {
	currentGen := CurrentGeneration(tables, snap)
	ranked := make([]Ranked, 0, len(snap.Heroes))
	for _, name := range snap.HeroNames() {
		h, err := tables.Hero(name)
		if err != nil {
			continue
		}
		state := snap.Heroes[name]
		ranked = append(ranked, Ranked{Hero: h, State: state, Value: Value(h, state, currentGen)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Hero.Name < ranked[j].Hero.Name
	})
	return ranked
}

// Analyzer turns the ranking into XP, ascension and skill recommendations.
type Analyzer struct {
	tables *refdata.Tables
}

// New returns an Analyzer bound to the given tables.
func New(tables *refdata.Tables) *Analyzer {
	return &Analyzer{tables: tables}
}

// Analyze recommends hero investment for a normalized snapshot: level the
// flagship first, then ascension and skills, with a warning when XP is spread
// over more heroes than the spending tier sustains.
func (a *Analyzer) Analyze(snap snapshot.Snapshot) ([]advice.Recommendation, error) {
	ranked := Rank(a.tables, snap)
	if len(ranked) == 0 {
		return []advice.Recommendation{{
			Priority: advice.PriorityHigh,
			Action:   "Recruit a mythic hero and make it your flagship",
			Category: advice.CategoryHero,
			Reason:   "No catalogued heroes found on this profile; every march needs a leveled mythic core.",
			Tags:     []string{"recruit"},
			Source:   advice.SourceRules,
		}}, nil
	}

	recs := make([]advice.Recommendation, 0, 5)
	if rec := a.spreadWarning(snap, ranked); rec != nil {
		recs = append(recs, *rec)
	}
	recs = append(recs, a.levelRecommendations(ranked)...)
	if rec, err := a.ascendRecommendation(ranked); err != nil {
		return nil, err
	} else if rec != nil {
		recs = append(recs, *rec)
	}
	if rec := a.skillRecommendation(ranked); rec != nil {
		recs = append(recs, *rec)
	}
	return recs, nil
}

// levelRecommendations pushes the two highest-value heroes toward their next
// level milestone. The flagship outranks everything else in this category.
func (a *Analyzer) levelRecommendations(ranked []Ranked) []advice.Recommendation {
	growth := a.tables.Growth
	recs := make([]advice.Recommendation, 0, 2)
	priority := advice.PriorityHigh
	for _, r := range ranked {
		if len(recs) == 2 {
			break
		}
		if r.State.Level >= growth.MaxLevel {
			continue
		}
		xp, _, exact := growth.LevelStep(r.State.Level)
		milestone := levelMilestone(growth, r.State.Level)
		costNote := fmt.Sprintf("%d hero_xp", xp)
		if !exact {
			costNote = "~" + costNote
		}
		recs = append(recs, advice.Recommendation{
			Priority:     priority,
			Action:       fmt.Sprintf("Level %s from %d toward %d", r.Hero.Name, r.State.Level, milestone),
			Category:     advice.CategoryHero,
			Target:       r.Hero.Name,
			Reason:       fmt.Sprintf("%s is your highest-value %s hero (score %.1f); XP on it beats XP anywhere else.", r.Hero.Name, r.Hero.Class, r.Value),
			ResourceCost: costNote,
			Tags:         []string{"level"},
			Source:       advice.SourceRules,
		})
		priority = advice.PriorityMedium
	}
	return recs
}

// ascendRecommendation proposes the next star for the best hero that still
// has one, among the top three by value.
func (a *Analyzer) ascendRecommendation(ranked []Ranked) (*advice.Recommendation, error) {
	growth := a.tables.Growth
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}
	for _, r := range top {
		if r.State.Stars >= growth.MaxStars {
			continue
		}
		step, err := growth.StarStep(r.State.Stars + 1)
		if err != nil {
			return nil, fmt.Errorf("star step lookup: %w", err)
		}
		return &advice.Recommendation{
			Priority:     advice.PriorityMedium,
			Action:       fmt.Sprintf("Ascend %s to %d stars", r.Hero.Name, step.Star),
			Category:     advice.CategoryHero,
			Target:       r.Hero.Name,
			Reason:       fmt.Sprintf("Each star multiplies %s's stats; the next one lifts the multiplier to %.2fx.", r.Hero.Name, step.PowerMultiplier),
			ResourceCost: fmt.Sprintf("%d hero_shards", step.Shards),
			Tags:         []string{"ascend"},
			Source:       advice.SourceRules,
		}, nil
	}
	return nil, nil
}

// skillRecommendation flags the flagship when its skills trail the max.
func (a *Analyzer) skillRecommendation(ranked []Ranked) *advice.Recommendation {
	flagship := ranked[0]
	if len(flagship.State.Skills) > 0 && avgSkill(flagship.State) >= maxSkillLevel {
		return nil
	}
	return &advice.Recommendation{
		Priority: advice.PriorityMedium,
		Action:   fmt.Sprintf("Raise %s's skills toward %d", flagship.Hero.Name, maxSkillLevel),
		Category: advice.CategoryHero,
		Target:   flagship.Hero.Name,
		Reason:   "Flagship skills apply to every march the hero leads and never become obsolete.",
		Tags:     []string{"skills"},
		Source:   advice.SourceRules,
	}
}

// spreadWarning fires when serious levels sit on more heroes than the
// spending tier sustains.
func (a *Analyzer) spreadWarning(snap snapshot.Snapshot, ranked []Ranked) *advice.Recommendation {
	policy := a.tables.SpendingPolicy(snap.SpendingTier)
	allowed := policy.HeroGearCap + spreadAllowance
	invested := 0
	for _, r := range ranked {
		if r.State.Level >= investedLevel {
			invested++
		}
	}
	if invested <= allowed {
		return nil
	}
	return &advice.Recommendation{
		Priority: advice.PriorityHigh,
		Action:   fmt.Sprintf("Stop leveling the roster wide; focus XP on your top %d heroes", allowed),
		Category: advice.CategoryHero,
		Reason:   fmt.Sprintf("%d heroes sit at level %d+, but the %s budget sustains about %d; wide XP starves your marches.", invested, investedLevel, policy.Name, allowed),
		Tags:     []string{"spread", "spending_cap"},
		Source:   advice.SourceRules,
	}
}

// levelMilestone is the next meaningful stop: the end of the current band or
// the hard cap.
func levelMilestone(growth refdata.HeroGrowth, level int) int {
	if band, ok := growth.LevelBand(level + 1); ok {
		return band.To
	}
	return growth.MaxLevel
}
