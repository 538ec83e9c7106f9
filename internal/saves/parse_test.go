package saves

import (
	"errors"
	"testing"
)

const fullExport = `{
  "progression": {"furnaceLevel": 22, "fireCrystalLevel": 1, "accountAgeDays": 150, "eventTiers": {"foundry": 2}},
  "spendingTier": "dolphin",
  "heroes": {
    "Magnus": {"level": 40, "stars": 3, "skills": {"expedition_1": 2}, "gear": {"weapon": {"quality": 2, "level": 10}}},
    "Jessie": {"level": 12, "stars": 1}
  },
  "chiefGear": {"coat": {"quality": 5, "level": 1}, "pants": {"quality": 4, "level": 1}},
  "charms": {"coat_1": 3},
  "troops": {"highestTier": 8, "counts": {"infantry": 120000}},
  "research": {"infantry_attack": 4}
}`

func TestParseExportFull(t *testing.T) {
	snap, err := ParseExport([]byte(fullExport))
	if err != nil {
		t.Fatalf("ParseExport: %v", err)
	}
	if snap.Progression.FurnaceLevel != 22 {
		t.Fatalf("furnace = %d, want 22", snap.Progression.FurnaceLevel)
	}
	if snap.Progression.EventTiers["foundry"] != 2 {
		t.Fatalf("event tier = %d, want 2", snap.Progression.EventTiers["foundry"])
	}
	if snap.SpendingTier != "dolphin" {
		t.Fatalf("tier = %q, want dolphin", snap.SpendingTier)
	}
	magnus := snap.Heroes["Magnus"]
	if magnus.Level != 40 || magnus.Stars != 3 {
		t.Fatalf("Magnus = %+v", magnus)
	}
	if magnus.Skills["expedition_1"] != 2 {
		t.Fatalf("Magnus skills = %v", magnus.Skills)
	}
	if magnus.Gear["weapon"].Quality != 2 {
		t.Fatalf("Magnus gear = %v", magnus.Gear)
	}
	if snap.ChiefGear["coat"].Quality != 5 {
		t.Fatalf("coat = %+v", snap.ChiefGear["coat"])
	}
	if snap.Charms["coat_1"] != 3 {
		t.Fatalf("charms = %v", snap.Charms)
	}
	if snap.Troops.HighestTier != 8 || snap.Troops.Counts["infantry"] != 120000 {
		t.Fatalf("troops = %+v", snap.Troops)
	}
	if snap.Research["infantry_attack"] != 4 {
		t.Fatalf("research = %v", snap.Research)
	}
}

func TestParseExportNested(t *testing.T) {
	for _, key := range []string{"snapshot", "state"} {
		data := `{"exportedBy": "wos-tracker", "` + key + `": {"progression": {"furnaceLevel": 9}}}`
		snap, err := ParseExport([]byte(data))
		if err != nil {
			t.Fatalf("ParseExport under %q: %v", key, err)
		}
		if snap.Progression.FurnaceLevel != 9 {
			t.Fatalf("furnace under %q = %d, want 9", key, snap.Progression.FurnaceLevel)
		}
	}
}

func TestParseExportPartial(t *testing.T) {
	snap, err := ParseExport([]byte(`{"heroes": {"Bahiti": {"level": 5, "stars": 1}}}`))
	if err != nil {
		t.Fatalf("ParseExport: %v", err)
	}
	if len(snap.Heroes) != 1 {
		t.Fatalf("heroes = %v", snap.Heroes)
	}
	if snap.Progression.FurnaceLevel != 0 {
		t.Fatal("missing sections should stay zero for Normalize to fill")
	}
}

func TestParseExportRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `furnace: 12`},
		{"not an object", `[1, 2, 3]`},
		{"no state sections", `{"exportedBy": "wos-tracker", "version": 3}`},
		{"unknown spending tier", `{"progression": {"furnaceLevel": 5}, "spendingTier": "leviathan"}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExport([]byte(tt.data))
			if !errors.Is(err, ErrBadExport) {
				t.Fatalf("expected ErrBadExport, got %v", err)
			}
		})
	}
}
