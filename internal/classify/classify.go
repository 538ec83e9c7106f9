// Package classify routes free-text player questions to either the
// deterministic rule analyzers or the generative fallback. Classification is
// pure and total: any input, including the empty string, yields exactly one
// Request.
package classify

import (
	"regexp"
	"strings"

	"github.com/amk92987/wos-optimizer/internal/advice"
)

// Intent names the pipeline that should answer a question.
type Intent string

const (
	IntentRules  Intent = "RULES"
	IntentAI     Intent = "AI"
	IntentHybrid Intent = "HYBRID"
)

// Handler keys the orchestrator dispatches rule-routed questions on.
const (
	HandlerHero        = "hero"
	HandlerGear        = "gear"
	HandlerLineup      = "lineup"
	HandlerProgression = "progression"
	HandlerPower       = "power"
)

// Request is the routing decision for one question.
type Request struct {
	Intent      Intent  `json:"intent"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	RuleHandler string  `json:"ruleHandler,omitempty"`
	Reason      string  `json:"reason"`
}

type aiRule struct {
	pattern    *regexp.Regexp
	category   string
	confidence float64
	reason     string
}

type ruleMatch struct {
	pattern    *regexp.Regexp
	category   string
	handler    string
	confidence float64
	reason     string
}

// Explicit requests for the assistant override everything else.
var explicitAIRules = []aiRule{
	{regexp.MustCompile(`\bai\b`), "explicit_ai", 1.0, "question names the assistant"},
	{regexp.MustCompile(`\b(gpt|chatgpt|claude|gemini)\b`), "explicit_ai", 1.0, "question names a model"},
}

// Comparative, hypothetical and opinion questions need generative reasoning
// even when a deterministic rule would also match. First match wins.
var contextualRules = []aiRule{
	{regexp.MustCompile(`\bvs\.?\b|\bversus\b|\bcompare\b|\bbetter\b|\bworth\b|\w\s+or\s+\w`), "comparison", 0.95, "comparison question"},
	{regexp.MustCompile(`\bwhat if\b|\bshould i\b|\bwould it\b`), "hypothetical", 0.9, "hypothetical question"},
	{regexp.MustCompile(`\bbest way\b|\bthoughts on\b|\bopinions?\b|\bis it good\b|\bany good\b`), "opinion", 0.85, "opinion question"},
}

// Deterministic routes. Every rule is evaluated; the highest confidence wins
// and exact ties resolve to the earliest entry, so list order is part of the
// contract.
var deterministicRules = []ruleMatch{
	{regexp.MustCompile(`\bgear\b|\bequipment\b|\bcharms?\b`), "gear", HandlerGear, 0.85, "gear keywords"},
	{regexp.MustCompile(`\bhero(es)?\b|\blevel up\b|\bascend\b|\bshards?\b`), "hero", HandlerHero, 0.85, "hero keywords"},
	{regexp.MustCompile(`\blineups?\b|\bformation\b|\bmarch\b|\bteam\b|\brally\b|\bbear trap\b|\bcrazy joe\b|\bgarrison\b|\barena\b|\bcanyon\b`), "lineup", HandlerLineup, 0.9, "battle mode keywords"},
	{regexp.MustCompile(`\bfurnace\b|\bbuildings?\b|\bresearch\b|\bprogress\w*\b|\bfocus\b|\bwhat next\b|\bnext step\b`), "progression", HandlerProgression, 0.8, "progression keywords"},
	{regexp.MustCompile(`\bpower\b|\befficien\w+\b|\bupgrades?\b|\bbiggest gain\b|\binvest\w*\b`), "power", HandlerPower, 0.8, "power keywords"},
}

var explanationPattern = regexp.MustCompile(`\bwhy\b|\bexplain\b|\bhow come\b|\breasons?\b`)

var comparisonMarkerPattern = regexp.MustCompile(`\bvs\.?\b`)

// Classify maps a question to an intent, category, confidence and, for rule
// routes, the analyzer handler. Evaluation order: explicit AI invocation,
// contextual reasoning, deterministic rules, then the general default.
func Classify(question string) Request {
	q := normalize(question)
	if q == "" {
		return defaultRequest("empty question")
	}
	for _, rule := range explicitAIRules {
		if rule.pattern.MatchString(q) {
			return Request{Intent: IntentAI, Category: rule.category, Confidence: rule.confidence, Reason: rule.reason}
		}
	}
	for _, rule := range contextualRules {
		if rule.pattern.MatchString(q) {
			return Request{Intent: IntentAI, Category: rule.category, Confidence: rule.confidence, Reason: rule.reason}
		}
	}
	var best *ruleMatch
	for i := range deterministicRules {
		rule := &deterministicRules[i]
		if !rule.pattern.MatchString(q) {
			continue
		}
		if best == nil || rule.confidence > best.confidence {
			best = rule
		}
	}
	if best != nil {
		intent := IntentRules
		reason := best.reason
		if wantsExplanation(q) {
			intent = IntentHybrid
			reason += "; explanation requested"
		}
		return Request{
			Intent:      intent,
			Category:    best.category,
			Confidence:  best.confidence,
			RuleHandler: best.handler,
			Reason:      reason,
		}
	}
	return defaultRequest("no pattern matched")
}

// NeedsAIFallback reports whether a successful rule dispatch should still
// consult the generative fallback: the rule produced nothing, or the player
// asked for an explanation, or the question compares options.
func NeedsAIFallback(recs []advice.Recommendation, question string) bool {
	if len(recs) == 0 {
		return true
	}
	q := normalize(question)
	if wantsExplanation(q) {
		return true
	}
	if comparisonMarkerPattern.MatchString(q) || strings.Contains(q, " or ") {
		return true
	}
	return false
}

func defaultRequest(reason string) Request {
	return Request{Intent: IntentAI, Category: "general", Confidence: 0.5, Reason: reason}
}

func wantsExplanation(normalized string) bool {
	return explanationPattern.MatchString(normalized)
}

func normalize(question string) string {
	return strings.Join(strings.Fields(strings.ToLower(question)), " ")
}
