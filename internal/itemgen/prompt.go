package itemgen

import (
	"fmt"
	"strings"

	"github.com/algodrill/algodrill/internal/model"
)

const systemPrompt = `You are an algorithms coach authoring drill items for coding-interview patterns.

Rules:
- Generate a single item for the given pattern, item type, and difficulty.
- Use plain ASCII text. Pseudocode is fine; full code listings are not.
- The prompt must be self-contained and answerable in under two minutes.
- "mcq": the prompt lists exactly 4 numbered options (0-3); the answer gives the index of the correct one. Distractors reflect common misconceptions about the pattern, not random noise.
- "fitb": the prompt has exactly one blank written as "____"; the answer lists every accepted completion.
- "ordering": the prompt lists labeled steps of the technique out of order; the answer gives the step labels in correct order.
- "plan": the prompt describes a small problem; the answer lists the key points a good solution sketch must cover.
- "insight": a short memorable observation about the pattern. No answer payload.
- Do not repeat any prompt from the "already in the catalog" list.`

// buildUserMessage constructs the user message for one generation call.
func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Pattern: %s\n", input.Pattern)
	fmt.Fprintf(&b, "Item type: %s\n", input.Type)
	if input.Type != model.TypeInsight {
		fmt.Fprintf(&b, "Difficulty: %s\n", input.Difficulty)
	}

	b.WriteString("\nAlready in the catalog:\n")
	b.WriteString(buildDedup(input.ExistingPrompts, cfg.MaxExistingPrompts))

	return b.String()
}

// buildDedup formats existing prompts for the prompt, keeping the most
// recent max entries. Returns "None" when the catalog is empty.
func buildDedup(prompts []string, max int) string {
	if len(prompts) == 0 {
		return "None"
	}
	if max > 0 && len(prompts) > max {
		prompts = prompts[len(prompts)-max:]
	}

	var b strings.Builder
	for i, p := range prompts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return strings.TrimRight(b.String(), "\n")
}
