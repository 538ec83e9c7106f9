package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a veteran Whiteout Survival advisor. Players paste their account state and ask what to do next. Answer in plain language, three short paragraphs at most, and always name concrete upgrades, heroes or resources. If the state does not support a confident answer, say what extra information you would need. Never invent exact numbers the state does not contain.`

// Message is one chat turn handed to a provider.
type Message struct {
	Role    string
	Content string
}

// BuildMessages renders the turns shared by every provider: the fixed
// advisor persona plus one user message combining state and question.
func BuildMessages(input AskInput) []Message {
	var b strings.Builder
	if input.SnapshotSummary != "" {
		b.WriteString("Player state:\n")
		b.WriteString(input.SnapshotSummary)
		b.WriteString("\n\n")
	}
	if input.Phase != "" {
		fmt.Fprintf(&b, "Progression phase: %s\n", input.Phase)
	}
	if len(input.Focus) > 0 {
		fmt.Fprintf(&b, "Current phase focus: %s\n", strings.Join(input.Focus, "; "))
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(input.Question))
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// FlattenMessages joins chat turns into one prompt string for providers
// without a role-based API.
func FlattenMessages(messages []Message) string {
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Content)
	}
	return b.String()
}
