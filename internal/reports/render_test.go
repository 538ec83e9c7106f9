package reports

import (
	"strings"
	"testing"
	"time"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/lineup"
	"github.com/amk92987/wos-optimizer/internal/power"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

func TestRenderText(t *testing.T) {
	result := Result{
		Phase:   "Mid game",
		Summary: "Keep pushing infantry gear.",
		Recommendations: []advice.Recommendation{
			{Priority: 1, Action: "Upgrade chief coat to quality 6", Reason: "Weakest slot", ResourceCost: "120 hardened alloy", Source: advice.SourceRules},
			{Priority: 2, Action: "Level Magnus to 50", Source: advice.SourceRules},
		},
		PowerPlan: []power.Upgrade{
			{Type: power.TypeChiefGear, Target: "coat", FromLevel: 5, ToLevel: 6, PowerGain: 1200},
			{Type: power.TypePets, Target: "pets", Confidence: power.ConfidenceQualitative},
		},
		Lineups: []lineup.Lineup{
			{
				Mode:       "bear_trap",
				Name:       "Bear Trap",
				Confidence: "exact",
				Heroes: []lineup.Pick{
					{Hero: "Magnus", Class: snapshot.ClassInfantry, Role: "damage"},
					{Hero: "Bahiti", Class: snapshot.ClassMarksman},
				},
			},
		},
		GeneratedAt: time.Now().UTC(),
	}

	text := renderText("Main", "gear", result)

	for _, want := range []string{
		"progress report: Main",
		"Phase: Mid game",
		"Focus: gear",
		"Keep pushing infantry gear.",
		"1. Upgrade chief coat to quality 6 (cost: 120 hardened alloy)",
		"   Weakest slot",
		"2. Level Magnus to 50",
		"- chief_gear: coat 5 to 6, +1200 power",
		"- pets: pets 0 to 0\n",
		"Bear Trap lineup (exact confidence)",
		"- Magnus (infantry, damage)",
		"- Bahiti (marksman)",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in:\n%s", want, text)
		}
	}
}

func TestRenderTextSkipsEmptySections(t *testing.T) {
	text := renderText("Alt", "", Result{Phase: "Early game"})

	if strings.Contains(text, "Focus:") {
		t.Fatal("empty focus should not render")
	}
	if strings.Contains(text, "Recommendations") || strings.Contains(text, "Power plan") {
		t.Fatal("empty sections should not render")
	}
}

func TestPollLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	limiter := newPollLimiter(time.Second, func() time.Time { return now })

	if !limiter.Allow("u1", "r1") {
		t.Fatal("first poll should pass")
	}
	if limiter.Allow("u1", "r1") {
		t.Fatal("second poll inside the window should block")
	}
	if !limiter.Allow("u1", "r2") {
		t.Fatal("different report should not share the bucket")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("u1", "r1") {
		t.Fatal("poll after the window should pass")
	}
	if limiter.RetryAfterSeconds() != 1 {
		t.Fatalf("RetryAfterSeconds = %d, want 1", limiter.RetryAfterSeconds())
	}
}
