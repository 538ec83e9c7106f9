// Package refdata exposes the embedded game reference tables: hero catalogue,
// upgrade cost curves, lineup templates, progression phases and spending
// policies. Tables are parsed once per process and shared read-only; every
// accessor that takes a name fails loud on unknown vocabulary so bad callers
// surface immediately, while player-data gaps are the snapshot layer's job.
package refdata

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

//go:embed data/*.json
var dataFS embed.FS

var (
	ErrUnknownHero     = errors.New("unknown hero")
	ErrUnknownMode     = errors.New("unknown lineup mode")
	ErrUnknownTier     = errors.New("tier out of range")
	ErrUnknownResource = errors.New("unknown resource")
	ErrBadTable        = errors.New("malformed reference table")
)

// Hero is one catalogue entry.
type Hero struct {
	Name       string
	Generation int
	Class      snapshot.TroopClass
	Rarity     string
	Tier       float64
	Roles      []string
	BasePower  int
}

// HasRole reports whether the hero carries the given role tag.
func (h Hero) HasRole(role string) bool {
	for _, r := range h.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GearTier is one chief-gear quality step. StepCost and StepPower describe
// the upgrade INTO this tier from the previous one; quality 1 is the base.
type GearTier struct {
	Quality      int
	Name         string
	BonusPercent float64
	StepPower    int
	StepCost     map[string]int
}

// CharmLevel mirrors GearTier for the charm track.
type CharmLevel struct {
	Level        int
	BonusPercent float64
	StepPower    int
	StepCost     map[string]int
}

// LevelBand is a hero-level range with exact per-level cost and power.
type LevelBand struct {
	From          int
	To            int
	XPPerLevel    int
	PowerPerLevel int
}

// StarStep is the ascension edge INTO the given star.
type StarStep struct {
	Star            int
	Shards          int
	PowerMultiplier float64
}

// HeroGrowth bundles the hero advancement curves. Levels past the last band
// are extrapolated with the growth rates, which is why those upgrades report
// estimated rather than exact confidence.
type HeroGrowth struct {
	MaxLevel        int
	MaxStars        int
	LevelBands      []LevelBand
	XPGrowthRate    float64
	PowerGrowthRate float64
	Stars           []StarStep
}

// TroopTier is one training tier.
type TroopTier struct {
	Tier          int
	Name          string
	PowerPerUnit  int
	UnlockFurnace int
	Cost          map[string]int
}

// ResearchEdge is one research line; the level l -> l+1 step costs
// CostPerLevel scaled by l+1.
type ResearchEdge struct {
	ID              string
	Name            string
	Category        string
	MaxLevel        int
	FurnaceRequired int
	PowerPerLevel   int
	CostPerLevel    map[string]int
}

// LineupTemplate is a per-mode formation template.
type LineupTemplate struct {
	ID             string
	Name           string
	Ratio          map[snapshot.TroopClass]int
	PreferredRoles []string
	Notes          []string
}

// Phase is one progression phase; Phases are stored highest first.
type Phase struct {
	ID             string
	Name           string
	MinFurnace     int
	MinFireCrystal int
	MinAgeDays     int
	Focus          []string
	Mistakes       []string
}

// SpendingPolicy is the per-tier investment guidance.
type SpendingPolicy struct {
	ID            snapshot.SpendingTier
	Name          string
	HeroGearCap   int
	DailyAskQuota int
	Guidance      []string
}

// Tables is the full parsed reference set. Treat it as immutable.
type Tables struct {
	Heroes         map[string]Hero
	GearTiers      []GearTier
	CharmLevels    []CharmLevel
	Growth         HeroGrowth
	TroopTiers     []TroopTier
	PromotionBatch int
	Research       []ResearchEdge
	Lineups        map[string]LineupTemplate
	ModeOrder      []string
	Phases         []Phase
	Spending       map[snapshot.SpendingTier]SpendingPolicy
	Weights        map[string]float64
}

var (
	loadOnce sync.Once
	loaded   *Tables
	loadErr  error
)

// Load parses the embedded tables on first call and memoizes the result.
// Concurrent callers share one parse; a parse failure is sticky because it
// can only mean a broken embedded file.
func Load() (*Tables, error) {
	loadOnce.Do(func() {
		loaded, loadErr = parseAll()
	})
	return loaded, loadErr
}

// MustLoad is Load for program start paths where a broken table is fatal.
func MustLoad() *Tables {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}

// Hero looks up a catalogue entry by exact name.
func (t *Tables) Hero(name string) (Hero, error) {
	h, ok := t.Heroes[name]
	if !ok {
		return Hero{}, fmt.Errorf("%w: %q", ErrUnknownHero, name)
	}
	return h, nil
}

// MaxGearQuality is the top chief-gear quality.
func (t *Tables) MaxGearQuality() int { return len(t.GearTiers) }

// GearTier returns the quality step for 1..MaxGearQuality.
func (t *Tables) GearTier(quality int) (GearTier, error) {
	if quality < 1 || quality > len(t.GearTiers) {
		return GearTier{}, fmt.Errorf("%w: gear quality %d", ErrUnknownTier, quality)
	}
	return t.GearTiers[quality-1], nil
}

// MaxCharmLevel is the top charm level.
func (t *Tables) MaxCharmLevel() int { return len(t.CharmLevels) }

// CharmLevel returns the level step for 1..MaxCharmLevel.
func (t *Tables) CharmLevel(level int) (CharmLevel, error) {
	if level < 1 || level > len(t.CharmLevels) {
		return CharmLevel{}, fmt.Errorf("%w: charm level %d", ErrUnknownTier, level)
	}
	return t.CharmLevels[level-1], nil
}

// MaxTroopTier is the top training tier.
func (t *Tables) MaxTroopTier() int { return len(t.TroopTiers) }

// TroopTier returns the tier row for 1..MaxTroopTier.
func (t *Tables) TroopTier(tier int) (TroopTier, error) {
	if tier < 1 || tier > len(t.TroopTiers) {
		return TroopTier{}, fmt.Errorf("%w: troop tier %d", ErrUnknownTier, tier)
	}
	return t.TroopTiers[tier-1], nil
}

// Lineup returns the template for a mode id.
func (t *Tables) Lineup(mode string) (LineupTemplate, error) {
	tpl, ok := t.Lineups[mode]
	if !ok {
		return LineupTemplate{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return tpl, nil
}

// SpendingPolicy returns the policy for a tier, falling back to the f2p
// policy for anything unrecognized. Spend level is player data.
func (t *Tables) SpendingPolicy(tier snapshot.SpendingTier) SpendingPolicy {
	if p, ok := t.Spending[tier]; ok {
		return p
	}
	return t.Spending[snapshot.TierF2P]
}

// Weight returns the normalization weight for a resource.
func (t *Tables) Weight(resource string) (float64, error) {
	w, ok := t.Weights[resource]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return w, nil
}

// NormalizedCost collapses a resource map into one comparable number:
// the weighted sum of quantities.
func (t *Tables) NormalizedCost(cost map[string]int) (float64, error) {
	var total float64
	for resource, qty := range cost {
		w, err := t.Weight(resource)
		if err != nil {
			return 0, err
		}
		total += float64(qty) * w
	}
	return total, nil
}

// LevelBand returns the band containing the given hero level, if any.
func (g HeroGrowth) LevelBand(level int) (LevelBand, bool) {
	for _, b := range g.LevelBands {
		if level >= b.From && level <= b.To {
			return b, true
		}
	}
	return LevelBand{}, false
}

// LevelStep returns the xp cost and power gain of the level -> level+1 edge.
// Levels past the last band are extrapolated with the growth rates, in which
// case exact is false.
func (g HeroGrowth) LevelStep(level int) (xp int, power int, exact bool) {
	if band, ok := g.LevelBand(level + 1); ok {
		return band.XPPerLevel, band.PowerPerLevel, true
	}
	last := g.LevelBands[len(g.LevelBands)-1]
	xpF := float64(last.XPPerLevel)
	powerF := float64(last.PowerPerLevel)
	for l := last.To; l <= level; l++ {
		xpF *= g.XPGrowthRate
		powerF *= g.PowerGrowthRate
	}
	return int(xpF), int(powerF), false
}

// StarStep returns the ascension edge into the given star (2..MaxStars).
func (g HeroGrowth) StarStep(star int) (StarStep, error) {
	for _, s := range g.Stars {
		if s.Star == star {
			return s, nil
		}
	}
	return StarStep{}, fmt.Errorf("%w: star %d", ErrUnknownTier, star)
}

// StarMultiplier is the cumulative power multiplier at a star count.
func (g HeroGrowth) StarMultiplier(star int) float64 {
	if star <= 1 {
		return 1.0
	}
	for _, s := range g.Stars {
		if s.Star == star {
			return s.PowerMultiplier
		}
	}
	return g.Stars[len(g.Stars)-1].PowerMultiplier
}
