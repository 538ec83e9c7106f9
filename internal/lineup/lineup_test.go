package lineup

import (
	"errors"
	"testing"

	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	tables, err := refdata.Load()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(tables)
}

func rosterSnap(names ...string) snapshot.Snapshot {
	heroes := make(map[string]snapshot.HeroState, len(names))
	for _, name := range names {
		heroes[name] = snapshot.HeroState{Level: 40}
	}
	return snapshot.Snapshot{Heroes: heroes}.Normalized()
}

func TestBuildUnknownModeIsAnError(t *testing.T) {
	b := testBuilder(t)
	_, err := b.Build("poker_night", rosterSnap("Molly"))
	if err == nil {
		t.Fatal("expected an error for an unknown mode")
	}
	if !errors.Is(err, refdata.ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestBuildPrefersRoleCarriers(t *testing.T) {
	b := testBuilder(t)
	// Gatot and Magnus share tier and generation; only Magnus carries the
	// arena role, so the bonus must put it first.
	built, err := b.Build("arena", rosterSnap("Gatot", "Magnus"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(built.Heroes) != 2 {
		t.Fatalf("expected 2 picks, got %+v", built.Heroes)
	}
	if built.Heroes[0].Hero != "Magnus" {
		t.Fatalf("role carrier should lead, got %q", built.Heroes[0].Hero)
	}
	if built.Heroes[0].Role != "arena" {
		t.Fatalf("expected the covered role on the pick, got %q", built.Heroes[0].Role)
	}
	if built.Heroes[1].Role != "" {
		t.Fatalf("Gatot carries no arena role, got %q", built.Heroes[1].Role)
	}
}

func TestBuildCapsMarchSize(t *testing.T) {
	b := testBuilder(t)
	built, err := b.Build("svs", rosterSnap("Magnus", "Gatot", "Fred", "Sonya", "Edith", "Hendrik", "Renee"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(built.Heroes) != marchSize {
		t.Fatalf("expected %d picks, got %d", marchSize, len(built.Heroes))
	}
}

func TestBuildConfidence(t *testing.T) {
	b := testBuilder(t)
	cases := []struct {
		name   string
		roster []string
		mode   string
		want   Confidence
	}{
		{
			name:   "three role owners make it exact",
			roster: []string{"Fred", "Bradley", "Hendrik", "Sergey"},
			mode:   "bear_trap",
			want:   ConfidenceExact,
		},
		{
			name:   "no role owners stay estimated",
			roster: []string{"Sergey", "Jessie", "Zinman"},
			mode:   "bear_trap",
			want:   ConfidenceEstimated,
		},
		{
			name:   "empty roster stays estimated",
			roster: nil,
			mode:   "bear_trap",
			want:   ConfidenceEstimated,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			built, err := b.Build(tc.mode, rosterSnap(tc.roster...))
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if built.Confidence != tc.want {
				t.Fatalf("confidence = %q, want %q", built.Confidence, tc.want)
			}
		})
	}
}

func TestBuildCarriesTemplateRatioAndNotes(t *testing.T) {
	b := testBuilder(t)
	built, err := b.Build("bear_trap", rosterSnap("Molly"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if built.TroopRatio[snapshot.ClassMarksman] != 80 {
		t.Fatalf("bear trap is marksman heavy, ratio %+v", built.TroopRatio)
	}
	if len(built.Notes) == 0 {
		t.Fatal("expected template notes to pass through")
	}
	if built.Name != "Bear Trap" {
		t.Fatalf("expected display name, got %q", built.Name)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	b := testBuilder(t)
	snap := rosterSnap("Magnus", "Gatot", "Fred", "Sonya", "Edith", "Hendrik")
	first, err := b.Build("svs", snap)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := b.Build("svs", snap)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		for j := range first.Heroes {
			if again.Heroes[j].Hero != first.Heroes[j].Hero {
				t.Fatalf("pick %d drifted: %q vs %q", j, again.Heroes[j].Hero, first.Heroes[j].Hero)
			}
		}
	}
}

func TestAnalyzeReportsWeakModes(t *testing.T) {
	b := testBuilder(t)
	recs, err := b.Analyze(rosterSnap("Sergey", "Jessie"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) == 0 || len(recs) > maxAnalyzeRecs {
		t.Fatalf("expected 1..%d roster gap recommendations, got %d", maxAnalyzeRecs, len(recs))
	}
	for _, rec := range recs {
		if rec.Target == "" {
			t.Fatalf("expected the mode on the recommendation, got %+v", rec)
		}
	}
}

func TestAnalyzeQuietOnDeepRoster(t *testing.T) {
	b := testBuilder(t)
	// A roster covering every role family in the templates.
	roster := []string{
		"Magnus", "Gatot", "Fred", "Sonya", "Edith", "Hendrik", "Renee",
		"Bradley", "Wu Ming", "Gwen", "Hector", "Bahiti", "Jasser", "Ahmose",
		"Natalia", "Logan", "Greg", "Jeronimo", "Molly", "Alonso", "Philly",
	}
	recs, err := b.Analyze(rosterSnap(roster...))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("deep roster should build every mode exactly, got %+v", recs)
	}
}
