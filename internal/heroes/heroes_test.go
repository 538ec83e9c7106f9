package heroes

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func testAnalyzer(t *testing.T) (*Analyzer, *refdata.Tables) {
	t.Helper()
	tables, err := refdata.Load()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(tables), tables
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestValueWeighting(t *testing.T) {
	_, tables := testAnalyzer(t)
	magnus, err := tables.Hero("Magnus")
	if err != nil {
		t.Fatalf("hero lookup: %v", err)
	}
	state := snapshot.HeroState{Level: 50, Skills: map[string]int{"first": 5, "second": 5}}

	// Generation frontier equals the hero's own generation: full recency.
	got := Value(magnus, state, magnus.Generation)
	want := 2.0*magnus.Tier + 1.5*1.0 + 0.5*5.0
	if !almostEqual(got, want) {
		t.Fatalf("Value(Magnus) = %v, want %v", got, want)
	}
}

func TestValueRecencyClampsAtZero(t *testing.T) {
	_, tables := testAnalyzer(t)
	jeronimo, err := tables.Hero("Jeronimo")
	if err != nil {
		t.Fatalf("hero lookup: %v", err)
	}
	// Generation 1 hero at a generation 8 frontier: 1 - 0.15*7 < 0.
	got := Value(jeronimo, snapshot.HeroState{Level: 60}, 8)
	want := 2.0 * jeronimo.Tier
	if !almostEqual(got, want) {
		t.Fatalf("Value(Jeronimo at gen 8) = %v, want %v", got, want)
	}
}

func TestRankBreaksTiesByName(t *testing.T) {
	_, tables := testAnalyzer(t)
	// Sergey, Jessie and Patrick share tier and generation; equal state
	// means equal value, so the order must be alphabetical.
	snap := snapshot.Snapshot{
		Heroes: map[string]snapshot.HeroState{
			"Sergey":  {Level: 10},
			"Jessie":  {Level: 10},
			"Patrick": {Level: 10},
		},
	}.Normalized()
	ranked := Rank(tables, snap)
	if len(ranked) != 3 {
		t.Fatalf("expected 3 ranked heroes, got %d", len(ranked))
	}
	want := []string{"Jessie", "Patrick", "Sergey"}
	for i, name := range want {
		if ranked[i].Hero.Name != name {
			t.Fatalf("position %d: got %q, want %q", i, ranked[i].Hero.Name, name)
		}
	}
}

func TestRankSkipsUnknownNames(t *testing.T) {
	_, tables := testAnalyzer(t)
	snap := snapshot.Snapshot{
		Heroes: map[string]snapshot.HeroState{
			"Molly":      {Level: 30},
			"NotAHero99": {Level: 99},
		},
	}.Normalized()
	ranked := Rank(tables, snap)
	if len(ranked) != 1 || ranked[0].Hero.Name != "Molly" {
		t.Fatalf("expected only Molly to rank, got %+v", ranked)
	}
}

func TestAnalyzeFlagshipLevelingComesFirst(t *testing.T) {
	analyzer, _ := testAnalyzer(t)
	snap := snapshot.Snapshot{
		Heroes: map[string]snapshot.HeroState{
			"Magnus": {Level: 42, Stars: 5, Skills: map[string]int{"a": 5, "b": 5}},
			"Molly":  {Level: 30},
		},
	}.Normalized()

	recs, err := analyzer.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations")
	}
	first := recs[0]
	if first.Target != "Magnus" || first.Priority != advice.PriorityHigh {
		t.Fatalf("flagship leveling should target Magnus at priority 2, got %+v", first)
	}
	if !strings.Contains(first.Action, "from 42") {
		t.Fatalf("expected the current level in the action, got %q", first.Action)
	}
	if first.ResourceCost == "" {
		t.Fatal("expected an xp cost")
	}
}

func TestAnalyzeAscensionUsesStarTable(t *testing.T) {
	analyzer, tables := testAnalyzer(t)
	snap := snapshot.Snapshot{
		Heroes: map[string]snapshot.HeroState{
			"Magnus": {Level: 42, Stars: 2},
		},
	}.Normalized()

	recs, err := analyzer.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var ascend *advice.Recommendation
	for i := range recs {
		if strings.HasPrefix(recs[i].Action, "Ascend") {
			ascend = &recs[i]
			break
		}
	}
	if ascend == nil {
		t.Fatalf("expected an ascension recommendation, got %+v", recs)
	}
	step, err := tables.Growth.StarStep(3)
	if err != nil {
		t.Fatalf("star step: %v", err)
	}
	if !strings.Contains(ascend.Action, "3 stars") {
		t.Fatalf("expected ascension to 3 stars, got %q", ascend.Action)
	}
	wantCost := fmt.Sprintf("%d hero_shards", step.Shards)
	if ascend.ResourceCost != wantCost {
		t.Fatalf("expected cost %q, got %q", wantCost, ascend.ResourceCost)
	}
}

func TestAnalyzeSpreadWarning(t *testing.T) {
	analyzer, _ := testAnalyzer(t)
	heroes := map[string]snapshot.HeroState{}
	for _, name := range []string{"Magnus", "Gatot", "Fred", "Sonya", "Edith", "Hendrik"} {
		heroes[name] = snapshot.HeroState{Level: 35}
	}
	snap := snapshot.Snapshot{
		SpendingTier: snapshot.TierF2P,
		Heroes:       heroes,
	}.Normalized()

	recs, err := analyzer.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var warning *advice.Recommendation
	for i := range recs {
		for _, tag := range recs[i].Tags {
			if tag == "spread" {
				warning = &recs[i]
			}
		}
	}
	if warning == nil {
		t.Fatalf("expected a spread warning with 6 leveled heroes on f2p, got %+v", recs)
	}
	if warning.Priority != advice.PriorityHigh {
		t.Fatalf("spread warning should be priority 2, got %d", warning.Priority)
	}
}

func TestAnalyzeEmptyRosterStillAdvises(t *testing.T) {
	analyzer, _ := testAnalyzer(t)
	recs, err := analyzer.Analyze(snapshot.Snapshot{}.Normalized())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) != 1 || !strings.HasPrefix(recs[0].Action, "Recruit") {
		t.Fatalf("expected the recruit fallback, got %+v", recs)
	}
}

func TestAnalyzeMaxedHeroGetsNoLevelRec(t *testing.T) {
	analyzer, tables := testAnalyzer(t)
	snap := snapshot.Snapshot{
		Heroes: map[string]snapshot.HeroState{
			"Magnus": {Level: tables.Growth.MaxLevel, Stars: tables.Growth.MaxStars, Skills: map[string]int{"a": 5}},
		},
	}.Normalized()

	recs, err := analyzer.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, rec := range recs {
		if strings.HasPrefix(rec.Action, "Level Magnus") {
			t.Fatalf("hero at the level cap must not get a level recommendation: %+v", rec)
		}
		if strings.HasPrefix(rec.Action, "Ascend") {
			t.Fatalf("hero at max stars must not get an ascension: %+v", rec)
		}
	}
}
