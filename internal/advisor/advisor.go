// Package advisor composes the classifier, the rule analyzers, the power
// optimizer and the generative fallback behind one query surface. Handlers
// and the report worker talk to this package only; they never reach into the
// analyzers directly.
package advisor

import (
	"context"
	"fmt"
	"time"

	"github.com/amk92987/wos-optimizer/internal/advice"
	"github.com/amk92987/wos-optimizer/internal/classify"
	"github.com/amk92987/wos-optimizer/internal/gear"
	"github.com/amk92987/wos-optimizer/internal/heroes"
	"github.com/amk92987/wos-optimizer/internal/lineup"
	"github.com/amk92987/wos-optimizer/internal/llm"
	"github.com/amk92987/wos-optimizer/internal/power"
	"github.com/amk92987/wos-optimizer/internal/progression"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/shared/metrics"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

const (
	defaultAskTimeout = 20 * time.Second

	// powerMergeCount is how many power edges fold into the general
	// recommendation feed; the full machine-readable list stays behind
	// GetPowerRecommendations.
	powerMergeCount = 3

	// fallbackRecLimit caps the recommendations attached to AI and error
	// answers.
	fallbackRecLimit = 3
)

// Config carries the optional collaborators. The zero value builds an advisor
// that answers from rules alone.
type Config struct {
	LLM        llm.Client
	Cooldown   CooldownPolicy
	AskTimeout time.Duration
}

// Advisor runs the decision engine. Analyzers execute in a fixed order so
// merged output is reproducible for identical snapshots.
type Advisor struct {
	tables      *refdata.Tables
	gear        *gear.Advisor
	progression *progression.Tracker
	heroes      *heroes.Analyzer
	lineups     *lineup.Builder
	power       *power.Optimizer

	llmClient  llm.Client
	cooldown   CooldownPolicy
	askTimeout time.Duration
}

// New builds an Advisor over the given reference tables.
func New(tables *refdata.Tables, cfg Config) *Advisor {
	client := cfg.LLM
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	timeout := cfg.AskTimeout
	if timeout <= 0 {
		timeout = defaultAskTimeout
	}
	return &Advisor{
		tables:      tables,
		gear:        gear.New(tables),
		progression: progression.New(tables),
		heroes:      heroes.New(tables),
		lineups:     lineup.New(tables),
		power:       power.New(tables),
		llmClient:   client,
		cooldown:    cfg.Cooldown,
		askTimeout:  timeout,
	}
}

// GetRecommendations runs every analyzer over the snapshot and merges the
// results into one deduplicated, priority-ordered list.
func (a *Advisor) GetRecommendations(ctx context.Context, snap snapshot.Snapshot, limit int) ([]advice.Recommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		run  func(snapshot.Snapshot) ([]advice.Recommendation, error)
	}{
		{"gear", a.gear.Analyze},
		{"progression", a.progression.Analyze},
		{"heroes", a.heroes.Analyze},
		{"lineup", a.lineups.Analyze},
	}

	lists := make([][]advice.Recommendation, 0, len(steps)+1)
	for _, s := range steps {
		recs, err := s.run(snap)
		if err != nil {
			return nil, fmt.Errorf("%s analysis: %w", s.name, err)
		}
		lists = append(lists, recs)
	}

	edges, err := a.power.TopRecommendations(snap, powerMergeCount)
	if err != nil {
		return nil, fmt.Errorf("power analysis: %w", err)
	}
	lists = append(lists, PowerToAdvice(edges))

	out := advice.Merge(limit, lists...)
	metrics.AddRecommendationsServed(len(out))
	return out, nil
}

// GetPowerRecommendations returns the ranked numeric upgrade edges.
func (a *Advisor) GetPowerRecommendations(ctx context.Context, snap snapshot.Snapshot, limit int) ([]power.Upgrade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.power.TopRecommendations(snap, limit)
}

// GetLineup builds the best lineup for the given battle mode.
func (a *Advisor) GetLineup(ctx context.Context, mode string, snap snapshot.Snapshot) (lineup.Lineup, error) {
	if err := ctx.Err(); err != nil {
		return lineup.Lineup{}, err
	}
	return a.lineups.Build(mode, snap)
}

// Phase reports the detected progression phase for the snapshot.
func (a *Advisor) Phase(snap snapshot.Snapshot) refdata.Phase {
	return a.progression.DetectPhase(snap)
}

// Classify exposes the request classifier, mostly for routing and quota
// checks ahead of Ask.
func (a *Advisor) Classify(question string) classify.Request {
	return classify.Classify(question)
}

// dispatch runs the single analyzer a classified question routes to. Power
// questions get their edges converted into the shared record shape.
func (a *Advisor) dispatch(handler string, snap snapshot.Snapshot) ([]advice.Recommendation, error) {
	switch handler {
	case classify.HandlerGear:
		return a.gear.Analyze(snap)
	case classify.HandlerHero:
		return a.heroes.Analyze(snap)
	case classify.HandlerLineup:
		return a.lineups.Analyze(snap)
	case classify.HandlerProgression:
		return a.progression.Analyze(snap)
	case classify.HandlerPower:
		edges, err := a.power.TopRecommendations(snap, advice.DefaultLimit)
		if err != nil {
			return nil, err
		}
		return PowerToAdvice(edges), nil
	default:
		return nil, fmt.Errorf("unknown rule handler %q", handler)
	}
}

// PowerToAdvice converts upgrade edges into the shared record shape so they
// can merge with analyzer output. Edge priorities carry over unchanged.
func PowerToAdvice(edges []power.Upgrade) []advice.Recommendation {
	recs := make([]advice.Recommendation, 0, len(edges))
	for _, e := range edges {
		recs = append(recs, advice.Recommendation{
			Priority:     e.Priority,
			Action:       upgradeAction(e),
			Category:     advice.CategoryPower,
			Target:       e.Target,
			Reason:       e.Reason,
			ResourceCost: gear.FormatCost(e.Cost),
			Tags:         []string{e.Type, string(e.Confidence)},
			Source:       advice.SourcePower,
		})
	}
	return recs
}

func upgradeAction(e power.Upgrade) string {
	switch e.Type {
	case power.TypeChiefGear:
		return fmt.Sprintf("Upgrade chief %s to quality %d", e.Target, e.ToLevel)
	case power.TypeCharm:
		return fmt.Sprintf("Level charm %s to %d", e.Target, e.ToLevel)
	case power.TypeHeroLevel:
		return fmt.Sprintf("Level %s to %d", e.Target, e.ToLevel)
	case power.TypeHeroStar:
		return fmt.Sprintf("Ascend %s to %d stars", e.Target, e.ToLevel)
	case power.TypeTroopTier:
		return fmt.Sprintf("Promote troops to tier %d", e.ToLevel)
	case power.TypeResearch:
		return fmt.Sprintf("Research %s to level %d", e.Target, e.ToLevel)
	default:
		return fmt.Sprintf("Invest in %s", e.Target)
	}
}
