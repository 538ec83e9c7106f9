package refdata

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func parseAll() (*Tables, error) {
	t := &Tables{}

	steps := []struct {
		file  string
		parse func(*Tables, gjson.Result) error
	}{
		{"costs.json", parseCosts},
		{"heroes.json", parseHeroes},
		{"chief_gear.json", parseChiefGear},
		{"charms.json", parseCharms},
		{"hero_growth.json", parseHeroGrowth},
		{"troops.json", parseTroops},
		{"research.json", parseResearch},
		{"lineups.json", parseLineups},
		{"phases.json", parsePhases},
		{"spending.json", parseSpending},
	}
	for _, step := range steps {
		raw, err := dataFS.ReadFile("data/" + step.file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", step.file, err)
		}
		if !gjson.ValidBytes(raw) {
			return nil, fmt.Errorf("%w: %s is not valid json", ErrBadTable, step.file)
		}
		if err := step.parse(t, gjson.ParseBytes(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", step.file, err)
		}
	}
	return t, nil
}

func parseCosts(t *Tables, root gjson.Result) error {
	t.Weights = make(map[string]float64)
	root.Get("weights").ForEach(func(k, v gjson.Result) bool {
		t.Weights[k.String()] = v.Float()
		return true
	})
	if len(t.Weights) == 0 {
		return fmt.Errorf("%w: no cost weights", ErrBadTable)
	}
	for resource, w := range t.Weights {
		if w <= 0 {
			return fmt.Errorf("%w: weight for %q must be positive", ErrBadTable, resource)
		}
	}
	return nil
}

func parseHeroes(t *Tables, root gjson.Result) error {
	t.Heroes = make(map[string]Hero)
	var err error
	root.Get("heroes").ForEach(func(_, v gjson.Result) bool {
		h := Hero{
			Name:       v.Get("name").String(),
			Generation: int(v.Get("generation").Int()),
			Class:      snapshot.TroopClass(v.Get("class").String()),
			Rarity:     v.Get("rarity").String(),
			Tier:       v.Get("tier").Float(),
			Roles:      readStrings(v.Get("roles")),
			BasePower:  int(v.Get("basePower").Int()),
		}
		if h.Name == "" {
			err = fmt.Errorf("%w: hero with empty name", ErrBadTable)
			return false
		}
		if verr := snapshot.ValidateClass(h.Class); verr != nil {
			err = fmt.Errorf("hero %q: %w", h.Name, verr)
			return false
		}
		t.Heroes[h.Name] = h
		return true
	})
	if err != nil {
		return err
	}
	if len(t.Heroes) == 0 {
		return fmt.Errorf("%w: empty hero catalogue", ErrBadTable)
	}
	return nil
}

func parseChiefGear(t *Tables, root gjson.Result) error {
	var err error
	root.Get("tiers").ForEach(func(_, v gjson.Result) bool {
		tier := GearTier{
			Quality:      int(v.Get("quality").Int()),
			Name:         v.Get("name").String(),
			BonusPercent: v.Get("bonusPercent").Float(),
			StepPower:    int(v.Get("stepPower").Int()),
			StepCost:     readCost(v.Get("stepCost")),
		}
		if tier.Quality != len(t.GearTiers)+1 {
			err = fmt.Errorf("%w: gear tiers must be contiguous from 1, got %d", ErrBadTable, tier.Quality)
			return false
		}
		if cerr := t.checkCost(tier.StepCost); cerr != nil {
			err = fmt.Errorf("gear tier %d: %w", tier.Quality, cerr)
			return false
		}
		t.GearTiers = append(t.GearTiers, tier)
		return true
	})
	if err != nil {
		return err
	}
	if len(t.GearTiers) == 0 {
		return fmt.Errorf("%w: empty gear table", ErrBadTable)
	}
	return nil
}

func parseCharms(t *Tables, root gjson.Result) error {
	var err error
	root.Get("levels").ForEach(func(_, v gjson.Result) bool {
		level := CharmLevel{
			Level:        int(v.Get("level").Int()),
			BonusPercent: v.Get("bonusPercent").Float(),
			StepPower:    int(v.Get("stepPower").Int()),
			StepCost:     readCost(v.Get("stepCost")),
		}
		if level.Level != len(t.CharmLevels)+1 {
			err = fmt.Errorf("%w: charm levels must be contiguous from 1, got %d", ErrBadTable, level.Level)
			return false
		}
		if cerr := t.checkCost(level.StepCost); cerr != nil {
			err = fmt.Errorf("charm level %d: %w", level.Level, cerr)
			return false
		}
		t.CharmLevels = append(t.CharmLevels, level)
		return true
	})
	if err != nil {
		return err
	}
	if len(t.CharmLevels) == 0 {
		return fmt.Errorf("%w: empty charm table", ErrBadTable)
	}
	return nil
}

func parseHeroGrowth(t *Tables, root gjson.Result) error {
	g := HeroGrowth{
		MaxLevel:        int(root.Get("maxLevel").Int()),
		MaxStars:        int(root.Get("maxStars").Int()),
		XPGrowthRate:    root.Get("estimation.xpGrowthRate").Float(),
		PowerGrowthRate: root.Get("estimation.powerGrowthRate").Float(),
	}
	root.Get("levelBands").ForEach(func(_, v gjson.Result) bool {
		g.LevelBands = append(g.LevelBands, LevelBand{
			From:          int(v.Get("from").Int()),
			To:            int(v.Get("to").Int()),
			XPPerLevel:    int(v.Get("xpPerLevel").Int()),
			PowerPerLevel: int(v.Get("powerPerLevel").Int()),
		})
		return true
	})
	root.Get("stars").ForEach(func(_, v gjson.Result) bool {
		g.Stars = append(g.Stars, StarStep{
			Star:            int(v.Get("star").Int()),
			Shards:          int(v.Get("shards").Int()),
			PowerMultiplier: v.Get("powerMultiplier").Float(),
		})
		return true
	})
	if g.MaxLevel < 1 || len(g.LevelBands) == 0 || len(g.Stars) == 0 {
		return fmt.Errorf("%w: incomplete growth table", ErrBadTable)
	}
	if g.XPGrowthRate <= 1 || g.PowerGrowthRate <= 1 {
		return fmt.Errorf("%w: growth rates must exceed 1", ErrBadTable)
	}
	prev := 0
	for _, b := range g.LevelBands {
		if b.From != prev+1 || b.To < b.From {
			return fmt.Errorf("%w: level bands must be contiguous ascending", ErrBadTable)
		}
		prev = b.To
	}
	for i, s := range g.Stars {
		if s.Star != i+2 {
			return fmt.Errorf("%w: star steps must run 2..%d", ErrBadTable, g.MaxStars)
		}
	}
	t.Growth = g
	return nil
}

func parseTroops(t *Tables, root gjson.Result) error {
	t.PromotionBatch = int(root.Get("promotionBatch").Int())
	if t.PromotionBatch < 1 {
		return fmt.Errorf("%w: promotionBatch must be positive", ErrBadTable)
	}
	var err error
	root.Get("tiers").ForEach(func(_, v gjson.Result) bool {
		tier := TroopTier{
			Tier:          int(v.Get("tier").Int()),
			Name:          v.Get("name").String(),
			PowerPerUnit:  int(v.Get("powerPerUnit").Int()),
			UnlockFurnace: int(v.Get("unlockFurnace").Int()),
			Cost:          readCost(v.Get("cost")),
		}
		if tier.Tier != len(t.TroopTiers)+1 {
			err = fmt.Errorf("%w: troop tiers must be contiguous from 1, got %d", ErrBadTable, tier.Tier)
			return false
		}
		if cerr := t.checkCost(tier.Cost); cerr != nil {
			err = fmt.Errorf("troop tier %d: %w", tier.Tier, cerr)
			return false
		}
		t.TroopTiers = append(t.TroopTiers, tier)
		return true
	})
	if err != nil {
		return err
	}
	if len(t.TroopTiers) == 0 {
		return fmt.Errorf("%w: empty troop table", ErrBadTable)
	}
	return nil
}

func parseResearch(t *Tables, root gjson.Result) error {
	var err error
	root.Get("edges").ForEach(func(_, v gjson.Result) bool {
		edge := ResearchEdge{
			ID:              v.Get("id").String(),
			Name:            v.Get("name").String(),
			Category:        v.Get("category").String(),
			MaxLevel:        int(v.Get("maxLevel").Int()),
			FurnaceRequired: int(v.Get("furnaceRequired").Int()),
			PowerPerLevel:   int(v.Get("powerPerLevel").Int()),
			CostPerLevel:    readCost(v.Get("costPerLevel")),
		}
		if edge.ID == "" || edge.MaxLevel < 1 {
			err = fmt.Errorf("%w: research edge missing id or maxLevel", ErrBadTable)
			return false
		}
		switch edge.Category {
		case "battle", "growth", "economy":
		default:
			err = fmt.Errorf("%w: research %q has category %q", ErrBadTable, edge.ID, edge.Category)
			return false
		}
		if cerr := t.checkCost(edge.CostPerLevel); cerr != nil {
			err = fmt.Errorf("research %q: %w", edge.ID, cerr)
			return false
		}
		t.Research = append(t.Research, edge)
		return true
	})
	if err != nil {
		return err
	}
	if len(t.Research) == 0 {
		return fmt.Errorf("%w: empty research table", ErrBadTable)
	}
	return nil
}

func parseLineups(t *Tables, root gjson.Result) error {
	t.Lineups = make(map[string]LineupTemplate)
	var err error
	root.Get("modes").ForEach(func(_, v gjson.Result) bool {
		tpl := LineupTemplate{
			ID:             v.Get("id").String(),
			Name:           v.Get("name").String(),
			Ratio:          make(map[snapshot.TroopClass]int, 3),
			PreferredRoles: readStrings(v.Get("preferredRoles")),
			Notes:          readStrings(v.Get("notes")),
		}
		if tpl.ID == "" {
			err = fmt.Errorf("%w: lineup mode with empty id", ErrBadTable)
			return false
		}
		sum := 0
		v.Get("ratio").ForEach(func(k, rv gjson.Result) bool {
			class := snapshot.TroopClass(k.String())
			if verr := snapshot.ValidateClass(class); verr != nil {
				err = fmt.Errorf("lineup %q: %w", tpl.ID, verr)
				return false
			}
			tpl.Ratio[class] = int(rv.Int())
			sum += int(rv.Int())
			return true
		})
		if err != nil {
			return false
		}
		if sum != 100 {
			err = fmt.Errorf("%w: lineup %q ratio sums to %d", ErrBadTable, tpl.ID, sum)
			return false
		}
		t.Lineups[tpl.ID] = tpl
		t.ModeOrder = append(t.ModeOrder, tpl.ID)
		return true
	})
	if err != nil {
		return err
	}
	if len(t.Lineups) == 0 {
		return fmt.Errorf("%w: empty lineup table", ErrBadTable)
	}
	return nil
}

func parsePhases(t *Tables, root gjson.Result) error {
	root.Get("phases").ForEach(func(_, v gjson.Result) bool {
		t.Phases = append(t.Phases, Phase{
			ID:             v.Get("id").String(),
			Name:           v.Get("name").String(),
			MinFurnace:     int(v.Get("minFurnace").Int()),
			MinFireCrystal: int(v.Get("minFireCrystal").Int()),
			MinAgeDays:     int(v.Get("minAgeDays").Int()),
			Focus:          readStrings(v.Get("focus")),
			Mistakes:       readStrings(v.Get("mistakes")),
		})
		return true
	})
	if len(t.Phases) == 0 {
		return fmt.Errorf("%w: empty phase table", ErrBadTable)
	}
	for i, p := range t.Phases {
		if p.ID == "" || len(p.Focus) == 0 {
			return fmt.Errorf("%w: phase %d missing id or focus", ErrBadTable, i)
		}
	}
	// The last phase is the floor everyone matches.
	last := t.Phases[len(t.Phases)-1]
	if last.MinFurnace > 1 || last.MinFireCrystal > 0 || last.MinAgeDays > 0 {
		return fmt.Errorf("%w: final phase %q is not a catch-all", ErrBadTable, last.ID)
	}
	return nil
}

func parseSpending(t *Tables, root gjson.Result) error {
	t.Spending = make(map[snapshot.SpendingTier]SpendingPolicy)
	var err error
	root.Get("tiers").ForEach(func(_, v gjson.Result) bool {
		p := SpendingPolicy{
			ID:            snapshot.SpendingTier(v.Get("id").String()),
			Name:          v.Get("name").String(),
			HeroGearCap:   int(v.Get("heroGearCap").Int()),
			DailyAskQuota: int(v.Get("dailyAskQuota").Int()),
			Guidance:      readStrings(v.Get("guidance")),
		}
		if p.HeroGearCap < 1 {
			err = fmt.Errorf("%w: spending tier %q needs heroGearCap >= 1", ErrBadTable, p.ID)
			return false
		}
		t.Spending[p.ID] = p
		return true
	})
	if err != nil {
		return err
	}
	for _, tier := range snapshot.SpendingTiers {
		if _, ok := t.Spending[tier]; !ok {
			return fmt.Errorf("%w: spending table missing tier %q", ErrBadTable, tier)
		}
	}
	return nil
}

// checkCost rejects negative quantities and resources without a weight, so a
// table typo fails at load instead of skewing efficiency silently.
func (t *Tables) checkCost(cost map[string]int) error {
	for resource, qty := range cost {
		if qty < 0 {
			return fmt.Errorf("%w: negative quantity for %q", ErrBadTable, resource)
		}
		if _, ok := t.Weights[resource]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
		}
	}
	return nil
}

func readCost(v gjson.Result) map[string]int {
	cost := make(map[string]int)
	v.ForEach(func(k, qty gjson.Result) bool {
		cost[k.String()] = int(qty.Int())
		return true
	})
	return cost
}

func readStrings(v gjson.Result) []string {
	if !v.Exists() || !v.IsArray() {
		return nil
	}
	arr := v.Array()
	out := make([]string, len(arr))
	for i, item := range arr {
		out[i] = item.String()
	}
	return out
}
