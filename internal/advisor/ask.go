package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/classify"
	"github.com/amk92987/wos-optimizer/internal/llm"
	"github.com/amk92987/wos-optimizer/internal/shared/metrics"
	"github.com/amk92987/wos-optimizer/internal/shared/telemetry"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

// Answer source vocabulary.
const (
	SourceRules = "rules"
	SourceAI    = "ai"
	SourceError = "error"
)

const maxPromptFocus = 3

// AskRequest carries one question through the fallback chain. CallerKey is
// the cooldown bucket, usually the user id; empty bypasses the cooldown.
type AskRequest struct {
	Question  string
	ForceAI   bool
	CallerKey string
}

// Answer is the ask result. The text is never empty: the chain runs the rule
// path, the AI path, and a static default, and Source names whichever layer
// produced it.
type Answer struct {
	Answer          string                  `json:"answer"`
	Source          string                  `json:"source"`
	Classification  classify.Request        `json:"classification"`
	Recommendations []advice.Recommendation `json:"recommendations,omitempty"`
}

var errCoolingDown = errors.New("ask cooldown active")

// Ask answers a free-form question. Rule-routable questions go to the
// matching analyzer; everything else goes to the AI path with the rule engine
// and a static default behind it.
func (a *Advisor) Ask(ctx context.Context, snap snapshot.Snapshot, req AskRequest) Answer {
	started := time.Now()
	cls := classify.Classify(req.Question)

	ans := a.answer(ctx, snap, req, cls)

	switch ans.Source {
	case SourceRules:
		metrics.IncAskRules()
	case SourceAI:
		metrics.IncAskAI()
	default:
		metrics.IncAskError()
	}
	metrics.ObserveAskDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("advisor.ask", map[string]any{
		"intent":   string(cls.Intent),
		"category": cls.Category,
		"source":   ans.Source,
	})
	return ans
}

func (a *Advisor) answer(ctx context.Context, snap snapshot.Snapshot, req AskRequest, cls classify.Request) Answer {
	if !req.ForceAI && cls.RuleHandler != "" {
		recs, err := a.dispatch(cls.RuleHandler, snap)
		if err != nil {
			telemetry.Error("advisor.dispatch", map[string]any{
				"handler": cls.RuleHandler,
				"error":   err.Error(),
			})
		}
		if len(recs) > 0 {
			ans := Answer{
				Answer:          composeRuleAnswer(recs),
				Source:          SourceRules,
				Classification:  cls,
				Recommendations: recs,
			}
			// Hybrid questions get the generative explanation appended; an
			// AI failure here leaves the rule answer untouched.
			if cls.Intent == classify.IntentHybrid || classify.NeedsAIFallback(recs, req.Question) {
				if text, err := a.askAI(ctx, snap, req.Question, req.CallerKey); err == nil {
					ans.Answer += "\n\n" + text
				}
			}
			return ans
		}
	}

	text, err := a.askAI(ctx, snap, req.Question, req.CallerKey)
	if err == nil {
		return Answer{
			Answer:          text,
			Source:          SourceAI,
			Classification:  cls,
			Recommendations: a.supportingRecommendations(ctx, cls, snap),
		}
	}

	if errors.Is(err, errCoolingDown) {
		return Answer{
			Answer:         cooldownMessage(a.cooldown.RetryAfter()),
			Source:         SourceError,
			Classification: cls,
		}
	}

	if degradable(err) {
		if ans, ok := a.ruleAnswer(ctx, cls, snap); ok {
			return ans
		}
		return a.staticAnswer(cls, snap)
	}

	kind := classifyFailure(err)
	telemetry.Error("advisor.ask_ai", map[string]any{
		"kind":  string(kind),
		"error": err.Error(),
	})
	return Answer{
		Answer:          kind.message(),
		Source:          SourceError,
		Classification:  cls,
		Recommendations: a.supportingRecommendations(ctx, cls, snap),
	}
}

// askAI calls the configured client with the snapshot summary and phase
// context. The cooldown is checked first so a throttled caller never spends
// provider quota.
func (a *Advisor) askAI(ctx context.Context, snap snapshot.Snapshot, question, callerKey string) (string, error) {
	if a.cooldown != nil && callerKey != "" && !a.cooldown.Allow(callerKey) {
		return "", errCoolingDown
	}

	phase := a.progression.DetectPhase(snap)
	focus := phase.Focus
	if len(focus) > maxPromptFocus {
		focus = focus[:maxPromptFocus]
	}
	input := llm.AskInput{
		Question:        question,
		SnapshotSummary: Summarize(a.tables, snap),
		Phase:           phase.Name,
		Focus:           focus,
	}

	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	text, err := a.llmClient.Answer(ctx, input)
	if err != nil {
		return "", fmt.Errorf("llm answer: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("llm answer: empty response")
	}
	return text, nil
}

// degradable reports whether an AI failure should silently fall back to the
// rule path instead of surfacing an error answer.
func degradable(err error) bool {
	if errors.Is(err, llm.ErrNotConfigured) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}

// ruleAnswer tries to answer from analyzer output alone.
func (a *Advisor) ruleAnswer(ctx context.Context, cls classify.Request, snap snapshot.Snapshot) (Answer, bool) {
	recs := a.supportingRecommendations(ctx, cls, snap)
	if len(recs) == 0 {
		return Answer{}, false
	}
	return Answer{
		Answer:          composeRuleAnswer(recs),
		Source:          SourceRules,
		Classification:  cls,
		Recommendations: recs,
	}, true
}

// supportingRecommendations picks the records that best accompany a non-rule
// answer: the routed analyzer when the question had one, otherwise the top of
// the merged feed.
func (a *Advisor) supportingRecommendations(ctx context.Context, cls classify.Request, snap snapshot.Snapshot) []advice.Recommendation {
	if cls.RuleHandler != "" {
		recs, err := a.dispatch(cls.RuleHandler, snap)
		if err == nil && len(recs) > 0 {
			if len(recs) > fallbackRecLimit {
				recs = recs[:fallbackRecLimit]
			}
			return recs
		}
	}
	recs, err := a.GetRecommendations(ctx, snap, fallbackRecLimit)
	if err != nil {
		return nil
	}
	return recs
}

// composeRuleAnswer turns the top records into a short prose answer.
func composeRuleAnswer(recs []advice.Recommendation) string {
	var b strings.Builder
	top := recs[0]
	fmt.Fprintf(&b, "Top recommendation: %s.", top.Action)
	if top.Reason != "" {
		b.WriteString(" " + top.Reason)
	}
	if top.ResourceCost != "" {
		fmt.Fprintf(&b, " Cost: %s.", top.ResourceCost)
	}
	if len(recs) > 1 {
		fmt.Fprintf(&b, "\nAlso worth doing: %s.", recs[1].Action)
	}
	return b.String()
}

// staticAnswer is the last resort. It still anchors on the detected phase so
// the text is not fully canned.
func (a *Advisor) staticAnswer(cls classify.Request, snap snapshot.Snapshot) Answer {
	phase := a.progression.DetectPhase(snap)
	text := fmt.Sprintf(
		"I do not have a confident answer for that one. You are in the %s phase, so keep your furnace moving and your main heroes leveled, and check the recommendations feed for the next efficient upgrade.",
		phase.Name,
	)
	return Answer{Answer: text, Source: SourceRules, Classification: cls}
}

func cooldownMessage(retry time.Duration) string {
	return fmt.Sprintf("You are asking faster than the assistant can keep up. Try again in about %d seconds.", int(retry.Seconds()))
}

// ReportSummary asks the model for a short narrative to head a generated
// report. Reports are complete without one, so every failure degrades to an
// empty summary rather than an error. The cooldown does not apply; this runs
// from the worker, not from user traffic.
func (a *Advisor) ReportSummary(ctx context.Context, snap snapshot.Snapshot, focus string, recs []advice.Recommendation) string {
	topics := make([]string, 0, maxPromptFocus+1)
	if focus = strings.TrimSpace(focus); focus != "" {
		topics = append(topics, focus)
	}
	for _, rec := range recs {
		if len(topics) == maxPromptFocus+1 {
			break
		}
		topics = append(topics, rec.Action)
	}
	phase := a.progression.DetectPhase(snap)
	input := llm.AskInput{
		Question:        "Write a short plain-language summary of this player's standing and best next steps.",
		SnapshotSummary: Summarize(a.tables, snap),
		Phase:           phase.Name,
		Focus:           topics,
	}

	ctx, cancel := context.WithTimeout(ctx, a.askTimeout)
	defer cancel()
	text, err := a.llmClient.Answer(ctx, input)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			telemetry.Error("advisor.report_summary", map[string]any{"error": err.Error()})
		}
		return ""
	}
	return strings.TrimSpace(text)
}
