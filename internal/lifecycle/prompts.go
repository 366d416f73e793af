package lifecycle

import (
	"fmt"
	"strings"

	"github.com/ideavault/ideavault/internal/idea"
)

const titleSystemPrompt = `You write titles for raw idea notes. Reply with a single ` +
	`concise title of at most 8 words. No quotes, no trailing punctuation.`

const clarifySystemPrompt = `You help sharpen early-stage ideas. Given an idea note, ` +
	`ask exactly one short clarifying question that would most improve understanding ` +
	`of the idea. Reply with the question only.`

// enrichmentSystemPrompt builds the JSON-mode analysis prompt,
// listing known categories so the model prefers reusing them.
func enrichmentSystemPrompt(known []idea.Category) string {
	var b strings.Builder
	b.WriteString(`You are a startup analyst. Analyze the idea and reply with a single JSON object:
{
  "summary": "2-3 sentence summary",
  "competitors": [{"name": "...", "one_line": "..."}],
  "market_size_estimate": "e.g. $2.5B",
  "cagr_pct_estimate": 0.0,
  "likely_biz_models": ["..."],
  "next_step": "one concrete validation step",
  "category": {"name": "...", "confidence": 0.0, "reasoning": "..."}
}
List at most 5 competitors. Confidence is between 0 and 1.`)
	if len(known) > 0 {
		names := make([]string, len(known))
		for i, c := range known {
			names[i] = c.Name
		}
		fmt.Fprintf(&b, "\nPrefer one of the existing categories when it fits: %s.",
			strings.Join(names, ", "))
	}
	return b.String()
}
