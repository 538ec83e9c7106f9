package gear

import (
	"strings"
	"testing"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func testAdvisor(t *testing.T) *Advisor {
	t.Helper()
	tables, err := refdata.Load()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(tables)
}

func chiefGear(qualities map[string]int) map[string]snapshot.GearPiece {
	out := make(map[string]snapshot.GearPiece, len(qualities))
	for slot, q := range qualities {
		out[slot] = snapshot.GearPiece{Quality: q, Level: 1}
	}
	return out
}

func TestAnalyzeDesyncComesFirst(t *testing.T) {
	adv := testAdvisor(t)
	snap := snapshot.Snapshot{
		ChiefGear: chiefGear(map[string]int{
			"coat": 6, "pants": 6, "belt": 3, "weapon": 3, "cap": 2, "watch": 2,
		}),
	}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) < 2 {
		t.Fatalf("expected desync and push recommendations, got %+v", recs)
	}
	first := recs[0]
	if first.Priority != advice.PriorityUrgent {
		t.Fatalf("desync recommendation should be priority 1, got %d", first.Priority)
	}
	for _, slot := range []string{"cap", "watch", "weapon", "belt"} {
		if !strings.Contains(first.Target, slot) {
			t.Fatalf("expected lagging slot %q in target %q", slot, first.Target)
		}
	}
	if strings.Contains(first.Target, "coat") {
		t.Fatalf("coat is not lagging, target %q", first.Target)
	}
	if recs[1].Priority != advice.PriorityHigh {
		t.Fatalf("push recommendation should follow at priority 2, got %d", recs[1].Priority)
	}
}

func TestAnalyzeEvenSetPushesFirstClass(t *testing.T) {
	adv := testAdvisor(t)
	snap := snapshot.Snapshot{
		ChiefGear: chiefGear(map[string]int{
			"coat": 5, "pants": 5, "cap": 5, "watch": 5, "weapon": 5, "belt": 5,
		}),
	}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected a push recommendation")
	}
	push := recs[0]
	if push.Priority != advice.PriorityHigh {
		t.Fatalf("expected priority 2 push, got %d", push.Priority)
	}
	if push.Target != "coat" {
		t.Fatalf("infantry slots come first, expected coat, got %q", push.Target)
	}
	if push.ResourceCost == "" {
		t.Fatal("expected a resource cost on the push recommendation")
	}
}

func TestAnalyzeChiefGearBeforeHeroGear(t *testing.T) {
	adv := testAdvisor(t)
	snap := snapshot.Snapshot{
		ChiefGear: chiefGear(map[string]int{
			"coat": 8, "pants": 8, "cap": 8, "watch": 8, "weapon": 8, "belt": 8,
		}),
		Heroes: map[string]snapshot.HeroState{
			"Molly": {Level: 50, Gear: map[string]snapshot.HeroGearPiece{"goggles": {Quality: 2, Level: 5}}},
		},
	}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	pushIdx, holdIdx := -1, -1
	for i, rec := range recs {
		if strings.HasPrefix(rec.Action, "Upgrade chief") {
			pushIdx = i
		}
		if strings.HasPrefix(rec.Action, "Finish chief gear") {
			holdIdx = i
		}
	}
	if pushIdx == -1 || holdIdx == -1 {
		t.Fatalf("expected both chief push and hero-gear hold, got %+v", recs)
	}
	if pushIdx > holdIdx {
		t.Fatalf("chief gear must come before hero gear guidance: push at %d, hold at %d", pushIdx, holdIdx)
	}
}

func TestAnalyzeSpendingCapWarning(t *testing.T) {
	adv := testAdvisor(t)
	gearPiece := map[string]snapshot.HeroGearPiece{"goggles": {Quality: 1, Level: 1}}
	snap := snapshot.Snapshot{
		SpendingTier: snapshot.TierF2P,
		Heroes: map[string]snapshot.HeroState{
			"Molly":    {Level: 40, Gear: gearPiece},
			"Natalia":  {Level: 38, Gear: gearPiece},
			"Jeronimo": {Level: 35, Gear: gearPiece},
		},
	}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var warning *advice.Recommendation
	for i := range recs {
		if strings.HasPrefix(recs[i].Action, "Consolidate hero gear") {
			warning = &recs[i]
			break
		}
	}
	if warning == nil {
		t.Fatalf("expected a consolidation warning, got %+v", recs)
	}
	if warning.Priority != advice.PriorityHigh {
		t.Fatalf("cap warning should be priority 2, got %d", warning.Priority)
	}
	if !strings.Contains(warning.Action, "2") {
		t.Fatalf("f2p cap is 2 heroes, action %q", warning.Action)
	}
}

func TestAnalyzeHeroGearAfterChiefComplete(t *testing.T) {
	adv := testAdvisor(t)
	tables := refdata.MustLoad()
	maxed := map[string]int{}
	for _, slot := range snapshot.ChiefGearSlots {
		maxed[slot] = tables.MaxGearQuality()
	}
	snap := snapshot.Snapshot{
		ChiefGear: chiefGear(maxed),
		Heroes: map[string]snapshot.HeroState{
			"Molly":    {Level: 60},
			"Natalia":  {Level: 40},
			"Jeronimo": {Level: 30},
		},
	}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var start *advice.Recommendation
	for i := range recs {
		if strings.HasPrefix(recs[i].Action, "Start hero gear") {
			start = &recs[i]
			break
		}
	}
	if start == nil {
		t.Fatalf("expected a hero gear start recommendation, got %+v", recs)
	}
	if !strings.Contains(start.Target, "Molly") || !strings.Contains(start.Target, "Natalia") {
		t.Fatalf("expected the two highest heroes, got target %q", start.Target)
	}
	if strings.Contains(start.Target, "Jeronimo") {
		t.Fatalf("f2p cap is 2 heroes, target %q", start.Target)
	}
	for _, rec := range recs {
		if strings.HasPrefix(rec.Action, "Upgrade chief") {
			t.Fatalf("maxed chief gear must not produce a push: %+v", rec)
		}
	}
}

func TestAnalyzeCharmCatchUp(t *testing.T) {
	adv := testAdvisor(t)
	charms := map[string]int{}
	for _, slot := range snapshot.CharmSlots() {
		charms[slot] = 5
	}
	charms["coat_1"] = 1
	snap := snapshot.Snapshot{Charms: charms}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var catchUp *advice.Recommendation
	for i := range recs {
		if recs[i].Target == "coat_1" {
			catchUp = &recs[i]
			break
		}
	}
	if catchUp == nil {
		t.Fatalf("expected a charm catch-up for coat_1, got %+v", recs)
	}
	if !strings.Contains(catchUp.Action, "level 2") {
		t.Fatalf("catch-up should step to the next level, action %q", catchUp.Action)
	}
}

func TestAnalyzeEvenCharmsStaySilent(t *testing.T) {
	adv := testAdvisor(t)
	charms := map[string]int{}
	for _, slot := range snapshot.CharmSlots() {
		charms[slot] = 4
	}
	snap := snapshot.Snapshot{Charms: charms}.Normalized()

	recs, err := adv.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, rec := range recs {
		for _, tag := range rec.Tags {
			if tag == "catch_up" {
				t.Fatalf("even charms must not produce a catch-up: %+v", rec)
			}
		}
	}
}

func TestFormatCostIsSortedAndStable(t *testing.T) {
	cost := map[string]int{"polishing_solution": 900, "hardened_alloy": 900, "design_plans": 100}
	want := "100 design_plans, 900 hardened_alloy, 900 polishing_solution"
	for i := 0; i < 5; i++ {
		if got := FormatCost(cost); got != want {
			t.Fatalf("FormatCost = %q, want %q", got, want)
		}
	}
	if got := FormatCost(nil); got != "" {
		t.Fatalf("empty cost should render empty, got %q", got)
	}
}
