package saves

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// ParseExport extracts a player snapshot from an uploaded game-state export.
// Exports come from third-party tracker tools and vary in shape, so parsing
// is tolerant: the snapshot may sit at the root or under a "snapshot" or
// "state" key, and missing sections are left zero for Normalize to fill.
// An export with no recognizable state at all is rejected.
func ParseExport(data []byte) (snapshot.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return snapshot.Snapshot{}, fmt.Errorf("%w: not valid json", ErrBadExport)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return snapshot.Snapshot{}, fmt.Errorf("%w: top level is not an object", ErrBadExport)
	}
	for _, key := range []string{"snapshot", "state"} {
		if nested := root.Get(key); nested.IsObject() {
			root = nested
			break
		}
	}

	var snap snapshot.Snapshot
	recognized := false

	if prog := root.Get("progression"); prog.IsObject() {
		recognized = true
		snap.Progression.FurnaceLevel = int(prog.Get("furnaceLevel").Int())
		snap.Progression.FireCrystalLevel = int(prog.Get("fireCrystalLevel").Int())
		snap.Progression.AccountAgeDays = int(prog.Get("accountAgeDays").Int())
		if tiers := prog.Get("eventTiers"); tiers.IsObject() {
			snap.Progression.EventTiers = make(map[string]int)
			tiers.ForEach(func(k, v gjson.Result) bool {
				snap.Progression.EventTiers[k.String()] = int(v.Int())
				return true
			})
		}
	}

	if tier := root.Get("spendingTier"); tier.Exists() {
		parsed, err := snapshot.ParseSpendingTier(tier.String())
		if err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("%w: %v", ErrBadExport, err)
		}
		snap.SpendingTier = parsed
	}

	if heroes := root.Get("heroes"); heroes.IsObject() {
		recognized = true
		snap.Heroes = make(map[string]snapshot.HeroState)
		heroes.ForEach(func(k, v gjson.Result) bool {
			snap.Heroes[k.String()] = parseHero(v)
			return true
		})
	}

	if gear := root.Get("chiefGear"); gear.IsObject() {
		recognized = true
		snap.ChiefGear = make(map[string]snapshot.GearPiece)
		gear.ForEach(func(k, v gjson.Result) bool {
			snap.ChiefGear[k.String()] = snapshot.GearPiece{
				Quality: int(v.Get("quality").Int()),
				Level:   int(v.Get("level").Int()),
			}
			return true
		})
	}

	if charms := root.Get("charms"); charms.IsObject() {
		recognized = true
		snap.Charms = make(map[string]int)
		charms.ForEach(func(k, v gjson.Result) bool {
			snap.Charms[k.String()] = int(v.Int())
			return true
		})
	}

	if troops := root.Get("troops"); troops.IsObject() {
		recognized = true
		snap.Troops.HighestTier = int(troops.Get("highestTier").Int())
		if counts := troops.Get("counts"); counts.IsObject() {
			snap.Troops.Counts = make(map[string]int)
			counts.ForEach(func(k, v gjson.Result) bool {
				snap.Troops.Counts[k.String()] = int(v.Int())
				return true
			})
		}
	}

	if research := root.Get("research"); research.IsObject() {
		recognized = true
		snap.Research = make(map[string]int)
		research.ForEach(func(k, v gjson.Result) bool {
			snap.Research[k.String()] = int(v.Int())
			return true
		})
	}

	if !recognized {
		return snapshot.Snapshot{}, fmt.Errorf("%w: no player state sections found", ErrBadExport)
	}
	return snap, nil
}

func parseHero(v gjson.Result) snapshot.HeroState {
	h := snapshot.HeroState{
		Level: int(v.Get("level").Int()),
		Stars: int(v.Get("stars").Int()),
	}
	if skills := v.Get("skills"); skills.IsObject() {
		h.Skills = make(map[string]int)
		skills.ForEach(func(k, sv gjson.Result) bool {
			h.Skills[k.String()] = int(sv.Int())
			return true
		})
	}
	if gear := v.Get("gear"); gear.IsObject() {
		h.Gear = make(map[string]snapshot.HeroGearPiece)
		gear.ForEach(func(k, gv gjson.Result) bool {
			h.Gear[k.String()] = snapshot.HeroGearPiece{
				Quality: int(gv.Get("quality").Int()),
				Level:   int(gv.Get("level").Int()),
			}
			return true
		})
	}
	return h
}
