package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/classify"
	"github.com/amk92987/wos-optimizer/internal/llm"
	"github.com/amk92987/wos-optimizer/internal/power"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

type stubLLM struct {
	text  string
	err   error
	calls int
}

func (s *stubLLM) Answer(ctx context.Context, input llm.AskInput) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

var _ llm.Client = (*stubLLM)(nil)

func testAdvisor(t *testing.T, cfg Config) *Advisor {
	t.Helper()
	tables, err := refdata.Load()
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return New(tables, cfg)
}

func baseSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		Progression:  snapshot.Progression{FurnaceLevel: 20, AccountAgeDays: 120},
		SpendingTier: snapshot.TierF2P,
		Heroes: map[string]snapshot.HeroState{
			"Magnus":   {Level: 40, Stars: 2, Skills: map[string]int{"skill_1": 3}},
			"Jeronimo": {Level: 35, Stars: 2},
			"Jessie":   {Level: 20, Stars: 1},
			"Bahiti":   {Level: 18, Stars: 1},
			"Sergey":   {Level: 10, Stars: 1},
		},
		ChiefGear: map[string]snapshot.GearPiece{
			"coat":   {Quality: 5, Level: 1},
			"pants":  {Quality: 5, Level: 1},
			"cap":    {Quality: 4, Level: 1},
			"watch":  {Quality: 4, Level: 1},
			"weapon": {Quality: 4, Level: 1},
			"belt":   {Quality: 4, Level: 1},
		},
		Troops:   snapshot.TroopState{HighestTier: 7},
		Research: map[string]int{"infantry_attack": 3},
	}.Normalized()
}

func TestGetRecommendationsMergedAndSorted(t *testing.T) {
	adv := testAdvisor(t, Config{})
	snap := baseSnapshot()

	recs, err := adv.GetRecommendations(context.Background(), snap, 25)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(recs) == 0 {
		t.Fatal("expected recommendations for a mid-game snapshot")
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Priority < recs[i-1].Priority {
			t.Fatalf("priorities out of order at %d: %+v", i, recs)
		}
	}
	seen := map[string]bool{}
	for _, r := range recs {
		key := advice.NormalizeAction(r.Action)
		if seen[key] {
			t.Fatalf("duplicate action %q survived the merge", r.Action)
		}
		seen[key] = true
	}
	var hasPower bool
	for _, r := range recs {
		if r.Source == advice.SourcePower {
			hasPower = true
		}
	}
	if !hasPower {
		t.Fatal("expected power edges folded into the merged feed")
	}
}

func TestGetRecommendationsHonorsLimit(t *testing.T) {
	adv := testAdvisor(t, Config{})

	recs, err := adv.GetRecommendations(context.Background(), baseSnapshot(), 4)
	if err != nil {
		t.Fatalf("GetRecommendations: %v", err)
	}
	if len(recs) > 4 {
		t.Fatalf("expected at most 4 recommendations, got %d", len(recs))
	}
}

func TestGetRecommendationsCanceledContext(t *testing.T) {
	adv := testAdvisor(t, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := adv.GetRecommendations(ctx, baseSnapshot(), 10); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestAskRuleRouted(t *testing.T) {
	stub := &stubLLM{text: "generative text"}
	adv := testAdvisor(t, Config{LLM: stub})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Which gear slot needs work?"})

	if ans.Source != SourceRules {
		t.Fatalf("expected rules source, got %q", ans.Source)
	}
	if ans.Classification.RuleHandler != classify.HandlerGear {
		t.Fatalf("expected gear handler, got %q", ans.Classification.RuleHandler)
	}
	if !strings.HasPrefix(ans.Answer, "Top recommendation: ") {
		t.Fatalf("unexpected answer %q", ans.Answer)
	}
	if len(ans.Recommendations) == 0 {
		t.Fatal("expected recommendations attached to a rule answer")
	}
	if stub.calls != 0 {
		t.Fatalf("rule route must not call the AI client, got %d calls", stub.calls)
	}
}

func TestAskAIRouted(t *testing.T) {
	stub := &stubLLM{text: "Focus on your infantry line first."}
	adv := testAdvisor(t, Config{LLM: stub})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Is Magnus worth it compared to Gatot?"})

	if ans.Source != SourceAI {
		t.Fatalf("expected ai source, got %q", ans.Source)
	}
	if ans.Answer != stub.text {
		t.Fatalf("expected the client text, got %q", ans.Answer)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one client call, got %d", stub.calls)
	}
	if len(ans.Recommendations) == 0 {
		t.Fatal("expected supporting recommendations on an AI answer")
	}
}

func TestAskForceAIBypassesRules(t *testing.T) {
	stub := &stubLLM{text: "forced answer"}
	adv := testAdvisor(t, Config{LLM: stub})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{
		Question: "Which gear slot needs work?",
		ForceAI:  true,
	})

	if ans.Source != SourceAI {
		t.Fatalf("expected ai source under forceAI, got %q", ans.Source)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one client call, got %d", stub.calls)
	}
}

func TestAskHybridAppendsAIText(t *testing.T) {
	stub := &stubLLM{text: "Stat bonuses compound across every march."}
	adv := testAdvisor(t, Config{LLM: stub})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Why upgrade my gear first?"})

	if ans.Source != SourceRules {
		t.Fatalf("hybrid answers keep the rules source, got %q", ans.Source)
	}
	if ans.Classification.Intent != classify.IntentHybrid {
		t.Fatalf("expected hybrid intent, got %q", ans.Classification.Intent)
	}
	if !strings.Contains(ans.Answer, "Top recommendation: ") || !strings.Contains(ans.Answer, stub.text) {
		t.Fatalf("expected rule text plus AI enhancement, got %q", ans.Answer)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one client call, got %d", stub.calls)
	}
}

func TestAskHybridSurvivesAIFailure(t *testing.T) {
	stub := &stubLLM{err: errors.New("dial tcp 10.0.0.1:443: connect: connection refused")}
	adv := testAdvisor(t, Config{LLM: stub})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Why upgrade my gear first?"})

	if ans.Source != SourceRules {
		t.Fatalf("expected rules source, got %q", ans.Source)
	}
	if !strings.HasPrefix(ans.Answer, "Top recommendation: ") {
		t.Fatalf("expected the rule answer to stand alone, got %q", ans.Answer)
	}
}

func TestAskNotConfiguredDegradesToRules(t *testing.T) {
	adv := testAdvisor(t, Config{})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Thoughts on the next event?"})

	if ans.Source != SourceRules {
		t.Fatalf("expected rules fallback without a client, got %q", ans.Source)
	}
	if ans.Answer == "" {
		t.Fatal("expected a non-empty answer")
	}
	if len(ans.Recommendations) == 0 {
		t.Fatal("expected fallback recommendations")
	}
}

func TestAskTimeoutDegradesToRules(t *testing.T) {
	stub := &stubLLM{err: fmt.Errorf("openai request timeout: %w", context.DeadlineExceeded)}
	adv := testAdvisor(t, Config{LLM: stub})

	ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Thoughts on the next event?"})

	if ans.Source != SourceRules {
		t.Fatalf("expected rules fallback on timeout, got %q", ans.Source)
	}
	if ans.Answer == "" {
		t.Fatal("expected a non-empty answer")
	}
}

func TestAskFailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		snippet string
	}{
		{
			name:    "connectivity",
			err:     errors.New("dial tcp 10.0.0.1:443: connect: connection refused"),
			snippet: "could not be reached",
		},
		{
			name:    "configuration",
			err:     errors.New("openai error: Incorrect API key provided (invalid_request_error)"),
			snippet: "not set up",
		},
		{
			name:    "rate limit",
			err:     errors.New("openai error: Rate limit reached for requests (429)"),
			snippet: "too many questions",
		},
		{
			name:    "unavailable",
			err:     errors.New("openai error: upstream exploded (server_error)"),
			snippet: "temporarily unavailable",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubLLM{err: tt.err}
			adv := testAdvisor(t, Config{LLM: stub})

			ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: "Thoughts on the next event?"})

			if ans.Source != SourceError {
				t.Fatalf("expected error source, got %q", ans.Source)
			}
			if !strings.Contains(ans.Answer, tt.snippet) {
				t.Fatalf("expected %q in answer %q", tt.snippet, ans.Answer)
			}
		})
	}
}

func TestAskCooldownBlocksSecondCall(t *testing.T) {
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubLLM{text: "first answer"}
	adv := testAdvisor(t, Config{
		LLM:      stub,
		Cooldown: NewFixedWindowCooldown(10*time.Second, func() time.Time { return fixed }),
	})
	req := AskRequest{Question: "Thoughts on the next event?", CallerKey: "user-1"}

	first := adv.Ask(context.Background(), baseSnapshot(), req)
	if first.Source != SourceAI {
		t.Fatalf("expected ai source on first ask, got %q", first.Source)
	}

	second := adv.Ask(context.Background(), baseSnapshot(), req)
	if second.Source != SourceError {
		t.Fatalf("expected error source while cooling down, got %q", second.Source)
	}
	if !strings.Contains(second.Answer, "Try again") {
		t.Fatalf("expected retry hint, got %q", second.Answer)
	}
	if stub.calls != 1 {
		t.Fatalf("cooldown must block the client call, got %d calls", stub.calls)
	}
}

func TestAskNeverReturnsEmptyAnswer(t *testing.T) {
	adv := testAdvisor(t, Config{})
	questions := []string{"", "   ", "asdf qwer", "tell me something"}

	for _, q := range questions {
		ans := adv.Ask(context.Background(), baseSnapshot(), AskRequest{Question: q})
		if strings.TrimSpace(ans.Answer) == "" {
			t.Fatalf("empty answer for question %q", q)
		}
		if ans.Source != SourceRules && ans.Source != SourceAI && ans.Source != SourceError {
			t.Fatalf("unexpected source %q for question %q", ans.Source, q)
		}
	}
}

func TestGetLineupPassthrough(t *testing.T) {
	adv := testAdvisor(t, Config{})

	l, err := adv.GetLineup(context.Background(), "bear_trap", baseSnapshot())
	if err != nil {
		t.Fatalf("GetLineup: %v", err)
	}
	if l.Mode != "bear_trap" {
		t.Fatalf("expected bear_trap lineup, got %q", l.Mode)
	}
	if len(l.Heroes) == 0 {
		t.Fatal("expected lineup picks")
	}
}

func TestGetPowerRecommendationsPassthrough(t *testing.T) {
	adv := testAdvisor(t, Config{})

	edges, err := adv.GetPowerRecommendations(context.Background(), baseSnapshot(), 5)
	if err != nil {
		t.Fatalf("GetPowerRecommendations: %v", err)
	}
	if len(edges) == 0 || len(edges) > 5 {
		t.Fatalf("expected between 1 and 5 edges, got %d", len(edges))
	}
}

func TestPowerToAdvice(t *testing.T) {
	edges := []power.Upgrade{
		{
			Type:       power.TypeChiefGear,
			Target:     "coat",
			FromLevel:  5,
			ToLevel:    6,
			Priority:   2,
			Confidence: power.ConfidenceExact,
			Cost:       map[string]int{"hardened_alloy": 20},
			Reason:     "Next coat tier.",
		},
		{
			Type:       power.TypeResearch,
			Target:     "infantry_attack",
			FromLevel:  3,
			ToLevel:    4,
			Priority:   3,
			Confidence: power.ConfidenceExact,
		},
	}

	recs := PowerToAdvice(edges)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Action != "Upgrade chief coat to quality 6" {
		t.Fatalf("unexpected action %q", recs[0].Action)
	}
	if recs[0].Source != advice.SourcePower || recs[0].Category != advice.CategoryPower {
		t.Fatalf("unexpected source/category %+v", recs[0])
	}
	if recs[0].ResourceCost != "20 hardened_alloy" {
		t.Fatalf("unexpected cost %q", recs[0].ResourceCost)
	}
	if recs[1].Action != "Research infantry_attack to level 4" {
		t.Fatalf("unexpected action %q", recs[1].Action)
	}
	if recs[0].Priority != 2 || recs[1].Priority != 3 {
		t.Fatalf("edge priorities must carry over, got %+v", recs)
	}
}
