package advisor

import (
	"fmt"
	"strings"

	"github.com/amk92987/wos-optimizer/internal/heroes"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/snapshot"
)

const maxSummaryHeroes = 5

// Summarize renders the snapshot as the compact plain-text state block the
// generative path receives. Only facts the player already sees in game go in.
func Summarize(tables *refdata.Tables, snap snapshot.Snapshot) string {
	var b strings.Builder

	p := snap.Progression
	fmt.Fprintf(&b, "Furnace %d", p.FurnaceLevel)
	if p.FireCrystalLevel > 0 {
		fmt.Fprintf(&b, ", fire crystal %d", p.FireCrystalLevel)
	}
	fmt.Fprintf(&b, ", account age %d days, spending profile %s.\n", p.AccountAgeDays, snap.SpendingTier)

	b.WriteString("Chief gear quality:")
	for _, slot := range snapshot.ChiefGearSlots {
		fmt.Fprintf(&b, " %s %d", slot, snap.ChiefGear[slot].Quality)
	}
	b.WriteString(".\n")

	if ranked := heroes.Rank(tables, snap); len(ranked) > 0 {
		if len(ranked) > maxSummaryHeroes {
			ranked = ranked[:maxSummaryHeroes]
		}
		parts := make([]string, 0, len(ranked))
		for _, r := range ranked {
			parts = append(parts, fmt.Sprintf("%s (level %d, %d star)", r.Hero.Name, r.State.Level, r.State.Stars))
		}
		fmt.Fprintf(&b, "Key heroes: %s.\n", strings.Join(parts, ", "))
	}

	fmt.Fprintf(&b, "Highest troop tier: T%d.", snap.Troops.HighestTier)
	return b.String()
}
