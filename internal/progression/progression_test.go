package progression

import (
	"strings"
	"testing"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func testTracker(t *testing.T) *Tracker {
	t.Helper()
	tables, err := refdata.Load()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(tables)
}

func progressionSnap(furnace, fireCrystal, ageDays int) snapshot.Snapshot {
	return snapshot.Snapshot{
		Progression: snapshot.Progression{
			FurnaceLevel:     furnace,
			FireCrystalLevel: fireCrystal,
			AccountAgeDays:   ageDays,
		},
	}.Normalized()
}

func TestDetectPhaseBoundaries(t *testing.T) {
	tracker := testTracker(t)
	cases := []struct {
		name        string
		furnace     int
		fireCrystal int
		ageDays     int
		want        string
	}{
		{name: "furnace 32 without fire crystal stays late game", furnace: 32, fireCrystal: 0, ageDays: 0, want: "late_game"},
		{name: "fire crystal unlocks endgame", furnace: 32, fireCrystal: 1, ageDays: 0, want: "endgame"},
		{name: "endgame lower bound", furnace: 30, fireCrystal: 1, ageDays: 0, want: "endgame"},
		{name: "fire crystal without furnace 30 is late game", furnace: 29, fireCrystal: 5, ageDays: 0, want: "late_game"},
		{name: "late game by furnace", furnace: 26, fireCrystal: 0, ageDays: 0, want: "late_game"},
		{name: "late game by account age", furnace: 10, fireCrystal: 0, ageDays: 300, want: "late_game"},
		{name: "mid game by furnace", furnace: 16, fireCrystal: 0, ageDays: 0, want: "mid_game"},
		{name: "mid game by account age", furnace: 5, fireCrystal: 0, ageDays: 95, want: "mid_game"},
		{name: "fresh account is early game", furnace: 1, fireCrystal: 0, ageDays: 0, want: "early_game"},
		{name: "zero values normalize into early game", furnace: 0, fireCrystal: 0, ageDays: 0, want: "early_game"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tracker.DetectPhase(progressionSnap(tc.furnace, tc.fireCrystal, tc.ageDays))
			if got.ID != tc.want {
				t.Fatalf("DetectPhase(furnace=%d, fc=%d, age=%d) = %q, want %q",
					tc.furnace, tc.fireCrystal, tc.ageDays, got.ID, tc.want)
			}
		})
	}
}

func TestAnalyzeEmitsPlaybookInOrder(t *testing.T) {
	tracker := testTracker(t)
	snap := progressionSnap(32, 2, 400)

	recs, err := tracker.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) != maxFocusTips+maxMistakeTips {
		t.Fatalf("expected %d tips, got %d: %+v", maxFocusTips+maxMistakeTips, len(recs), recs)
	}

	phase := tracker.DetectPhase(snap)
	if phase.ID != "endgame" {
		t.Fatalf("expected endgame snapshot, got %q", phase.ID)
	}
	for i := 0; i < maxFocusTips; i++ {
		if recs[i].Priority != advice.PriorityHigh {
			t.Fatalf("focus tip %d should be priority 2, got %d", i, recs[i].Priority)
		}
		if recs[i].Action != phase.Focus[i] {
			t.Fatalf("focus tip %d should be verbatim %q, got %q", i, phase.Focus[i], recs[i].Action)
		}
	}
	for i := 0; i < maxMistakeTips; i++ {
		rec := recs[maxFocusTips+i]
		if rec.Priority != advice.PriorityMedium {
			t.Fatalf("mistake tip %d should be priority 3, got %d", i, rec.Priority)
		}
		if !strings.HasSuffix(rec.Action, phase.Mistakes[i]) {
			t.Fatalf("mistake tip %d should carry the list text verbatim, got %q", i, rec.Action)
		}
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	tracker := testTracker(t)
	snap := progressionSnap(18, 0, 120)
	first, err := tracker.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := tracker.Analyze(snap)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("tip count drifted: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Action != second[i].Action {
			t.Fatalf("tip %d drifted: %q vs %q", i, first[i].Action, second[i].Action)
		}
	}
}
