package snapshot

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Snapshot is the canonical player state consumed by every analyzer.
// It is reconstructed per request from the profile store and normalized at
// the boundary: after Normalized() no analyzer ever sees a nil map, a missing
// slot, or a level below 1, so downstream code never branches on absence.
type Snapshot struct {
	Progression  Progression          `json:"progression"`
	SpendingTier SpendingTier         `json:"spendingTier"`
	Heroes       map[string]HeroState `json:"heroes"`
	ChiefGear    map[string]GearPiece `json:"chiefGear"`
	Charms       map[string]int       `json:"charms"`
	Troops       TroopState           `json:"troops"`
	Research     map[string]int       `json:"research"`
}

// Progression holds account-wide advancement metrics.
type Progression struct {
	FurnaceLevel     int            `json:"furnaceLevel"`
	FireCrystalLevel int            `json:"fireCrystalLevel"`
	AccountAgeDays   int            `json:"accountAgeDays"`
	EventTiers       map[string]int `json:"eventTiers,omitempty"`
}

// HeroState is the owned state of a single hero.
type HeroState struct {
	Level  int                      `json:"level"`
	Stars  int                      `json:"stars"`
	Skills map[string]int           `json:"skills"`
	Gear   map[string]HeroGearPiece `json:"gear"`
}

// HeroGearPiece is one equipped hero-gear item.
type HeroGearPiece struct {
	Quality int `json:"quality"`
	Level   int `json:"level"`
}

// GearPiece is one chief-gear slot's quality tier and refinement level.
type GearPiece struct {
	Quality int `json:"quality"`
	Level   int `json:"level"`
}

// TroopState tracks the training camp situation.
type TroopState struct {
	HighestTier int            `json:"highestTier"`
	Counts      map[string]int `json:"counts,omitempty"`
}

// SpendingTier classifies monetization level, ordered from free-to-play up.
type SpendingTier string

const (
	TierF2P     SpendingTier = "f2p"
	TierMinnow  SpendingTier = "minnow"
	TierDolphin SpendingTier = "dolphin"
	TierOrca    SpendingTier = "orca"
	TierWhale   SpendingTier = "whale"
)

// SpendingTiers lists all tiers in ascending spend order.
var SpendingTiers = []SpendingTier{TierF2P, TierMinnow, TierDolphin, TierOrca, TierWhale}

// Rank returns the tier's position in the spend order (0 = f2p).
// Unknown tiers rank as f2p; spend level is player data, never an error.
func (t SpendingTier) Rank() int {
	for i, tier := range SpendingTiers {
		if tier == t {
			return i
		}
	}
	return 0
}

// ParseSpendingTier validates a raw tier name from the API. Unlike Rank, this
// is for caller input, so unknown names are an error rather than a default.
func ParseSpendingTier(raw string) (SpendingTier, error) {
	tier := SpendingTier(strings.ToLower(strings.TrimSpace(raw)))
	for _, t := range SpendingTiers {
		if t == tier {
			return tier, nil
		}
	}
	return "", fmt.Errorf("unknown spending tier %q", raw)
}

// TroopClass identifies one of the three troop types.
type TroopClass string

const (
	ClassInfantry TroopClass = "infantry"
	ClassMarksman TroopClass = "marksman"
	ClassLancer   TroopClass = "lancer"
)

// ClassUpgradeOrder is the fixed investment order: front line first, ranged
// second, support third.
var ClassUpgradeOrder = []TroopClass{ClassInfantry, ClassMarksman, ClassLancer}

// Chief gear slot vocabulary, in class upgrade order.
var ChiefGearSlots = []string{"coat", "pants", "cap", "watch", "weapon", "belt"}

var slotClass = map[string]TroopClass{
	"coat":   ClassInfantry,
	"pants":  ClassInfantry,
	"cap":    ClassMarksman,
	"watch":  ClassMarksman,
	"weapon": ClassLancer,
	"belt":   ClassLancer,
}

// Vocabulary errors. These indicate a programmer error in the caller (spec'd
// names are fixed), so they are raised rather than defaulted.
var (
	ErrUnknownSlot  = errors.New("unknown gear slot")
	ErrUnknownClass = errors.New("unknown troop class")
)

// ClassForSlot maps a chief-gear slot to the troop class it boosts.
func ClassForSlot(slot string) (TroopClass, error) {
	class, ok := slotClass[slot]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return class, nil
}

// ValidateClass rejects troop class names outside the fixed vocabulary.
func ValidateClass(class TroopClass) error {
	switch class {
	case ClassInfantry, ClassMarksman, ClassLancer:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
}

// CharmSlots returns the eighteen charm slot names: three per gear slot,
// suffixed _1.._3, in gear-slot order.
func CharmSlots() []string {
	slots := make([]string, 0, len(ChiefGearSlots)*3)
	for _, gear := range ChiefGearSlots {
		for i := 1; i <= 3; i++ {
			slots = append(slots, fmt.Sprintf("%s_%d", gear, i))
		}
	}
	return slots
}

// Normalized returns the canonical form of the snapshot: every chief-gear and
// charm slot present, every numeric level at least 1 (fire-crystal level and
// account age at least 0), unknown slot keys dropped, maps deep-copied so the
// caller's snapshot is never aliased.
func (s Snapshot) Normalized() Snapshot {
	out := s

	out.Progression.FurnaceLevel = atLeast(s.Progression.FurnaceLevel, 1)
	out.Progression.FireCrystalLevel = atLeast(s.Progression.FireCrystalLevel, 0)
	out.Progression.AccountAgeDays = atLeast(s.Progression.AccountAgeDays, 0)
	if s.Progression.EventTiers != nil {
		out.Progression.EventTiers = make(map[string]int, len(s.Progression.EventTiers))
		for k, v := range s.Progression.EventTiers {
			out.Progression.EventTiers[k] = atLeast(v, 0)
		}
	}

	if out.SpendingTier.Rank() == 0 {
		out.SpendingTier = TierF2P
	}

	out.Heroes = make(map[string]HeroState, len(s.Heroes))
	for name, h := range s.Heroes {
		if name == "" {
			continue
		}
		out.Heroes[name] = normalizeHero(h)
	}

	out.ChiefGear = make(map[string]GearPiece, len(ChiefGearSlots))
	for _, slot := range ChiefGearSlots {
		piece := s.ChiefGear[slot]
		out.ChiefGear[slot] = GearPiece{
			Quality: atLeast(piece.Quality, 1),
			Level:   atLeast(piece.Level, 1),
		}
	}

	out.Charms = make(map[string]int, len(ChiefGearSlots)*3)
	for _, slot := range CharmSlots() {
		out.Charms[slot] = atLeast(s.Charms[slot], 1)
	}

	out.Troops.HighestTier = atLeast(s.Troops.HighestTier, 1)
	if s.Troops.Counts != nil {
		out.Troops.Counts = make(map[string]int, len(s.Troops.Counts))
		for k, v := range s.Troops.Counts {
			out.Troops.Counts[k] = atLeast(v, 0)
		}
	}

	out.Research = make(map[string]int, len(s.Research))
	for id, level := range s.Research {
		if id == "" {
			continue
		}
		out.Research[id] = atLeast(level, 0)
	}

	return out
}

func normalizeHero(h HeroState) HeroState {
	out := HeroState{
		Level: atLeast(h.Level, 1),
		Stars: atLeast(h.Stars, 1),
	}
	out.Skills = make(map[string]int, len(h.Skills))
	for slot, level := range h.Skills {
		if slot == "" {
			continue
		}
		out.Skills[slot] = atLeast(level, 1)
	}
	out.Gear = make(map[string]HeroGearPiece, len(h.Gear))
	for slot, piece := range h.Gear {
		if slot == "" {
			continue
		}
		out.Gear[slot] = HeroGearPiece{
			Quality: atLeast(piece.Quality, 1),
			Level:   atLeast(piece.Level, 1),
		}
	}
	return out
}

// HeroNames returns the owned hero names sorted ascending, for deterministic
// iteration.
func (s Snapshot) HeroNames() []string {
	names := make([]string, 0, len(s.Heroes))
	for name := range s.Heroes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}
