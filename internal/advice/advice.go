// Package advice defines the recommendation record shared by every
// analyzer and the merge pipeline that turns per-analyzer output into a
// single ranked list.
package advice

import (
	"fmt"
	"sort"
	"strings"
)

// Priority bounds. 1 means act now, 5 means when idle.
const (
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityMedium = 3
	PriorityLow    = 4
	PriorityIdle   = 5
)

// DefaultLimit caps a merged recommendation list when the caller does not
// ask for a specific size.
const DefaultLimit = 10

// Category names the subsystem a recommendation belongs to.
type Category string

const (
	CategoryHero        Category = "hero"
	CategoryGear        Category = "gear"
	CategoryLineup      Category = "lineup"
	CategoryProgression Category = "progression"
	CategoryPower       Category = "power"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryHero,
	CategoryGear,
	CategoryLineup,
	CategoryProgression,
	CategoryPower,
}

// ParseCategory validates a raw category string against the known vocabulary.
func ParseCategory(raw string) (Category, error) {
	value := Category(strings.ToLower(strings.TrimSpace(raw)))
	for _, c := range Categories {
		if value == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown recommendation category %q", raw)
}

// Source records which pipeline produced a recommendation.
type Source string

const (
	SourceRules Source = "rules"
	SourceAI    Source = "ai"
	SourcePower Source = "power"
)

// Recommendation is one actionable suggestion for the player.
type Recommendation struct {
	Priority     int      `json:"priority"`
	Action       string   `json:"action"`
	Category     Category `json:"category"`
	Target       string   `json:"target,omitempty"`
	Reason       string   `json:"reason"`
	ResourceCost string   `json:"resourceCost,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Source       Source   `json:"source"`
}

// NormalizeAction lowercases an action and collapses runs of whitespace.
// Two recommendations with equal normalized actions are duplicates.
func NormalizeAction(action string) string {
	return strings.Join(strings.Fields(strings.ToLower(action)), " ")
}

// Dedupe drops later recommendations whose normalized action was already
// seen. The first occurrence wins so analyzer order decides survivors.
func Dedupe(items []Recommendation) []Recommendation {
	seen := make(map[string]bool, len(items))
	out := make([]Recommendation, 0, len(items))
	for _, item := range items {
		key := NormalizeAction(item.Action)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// SortStable orders recommendations by ascending priority while keeping the
// emission order of entries that share a priority.
func SortStable(items []Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority < items[j].Priority
	})
}

// Merge concatenates analyzer outputs in the order given, sorts them by
// priority, removes duplicate actions, and truncates to limit. A limit of
// zero or less falls back to DefaultLimit.
func Merge(limit int, lists ...[]Recommendation) []Recommendation {
	if limit <= 0 {
		limit = DefaultLimit
	}
	merged := make([]Recommendation, 0, 16)
	for _, list := range lists {
		merged = append(merged, list...)
	}
	SortStable(merged)
	deduped := Dedupe(merged)
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}
	return deduped
}
