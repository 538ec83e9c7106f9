package reports

import (
	"fmt"
	"strings"
)

// renderText lays a result out as plain text, for download or pasting into
// alliance chat.
func renderText(profileName, focus string, result Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Whiteout Survival progress report: %s\n", profileName)
	fmt.Fprintf(&b, "Phase: %s\n", result.Phase)
	if focus != "" {
		fmt.Fprintf(&b, "Focus: %s\n", focus)
	}
	if result.Summary != "" {
		b.WriteString("\n")
		b.WriteString(result.Summary)
		b.WriteString("\n")
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("\nRecommendations\n")
		for i, rec := range result.Recommendations {
			fmt.Fprintf(&b, "%d. %s", i+1, rec.Action)
			if rec.ResourceCost != "" {
				fmt.Fprintf(&b, " (cost: %s)", rec.ResourceCost)
			}
			b.WriteString("\n")
			if rec.Reason != "" {
				fmt.Fprintf(&b, "   %s\n", rec.Reason)
			}
		}
	}

	if len(result.PowerPlan) > 0 {
		b.WriteString("\nPower plan\n")
		for _, up := range result.PowerPlan {
			fmt.Fprintf(&b, "- %s: %s %d to %d", up.Type, up.Target, up.FromLevel, up.ToLevel)
			if up.PowerGain > 0 {
				fmt.Fprintf(&b, ", +%.0f power", up.PowerGain)
			}
			b.WriteString("\n")
		}
	}

	for _, l := range result.Lineups {
		fmt.Fprintf(&b, "\n%s lineup (%s confidence)\n", l.Name, l.Confidence)
		for _, pick := range l.Heroes {
			fmt.Fprintf(&b, "- %s (%s", pick.Hero, pick.Class)
			if pick.Role != "" {
				fmt.Fprintf(&b, ", %s", pick.Role)
			}
			b.WriteString(")\n")
		}
	}

	return b.String()
}
