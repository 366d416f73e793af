package bot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ideavault/ideavault/internal/costs"
	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/internal/provider"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes the entities Telegram's HTML parse mode requires.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func formatBrief(res *lifecycle.EnrichResult) string {
	e := res.Enrichment
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b>%s</b>\n\n", EscapeHTML(res.Idea.Title))
	sb.WriteString(EscapeHTML(e.Summary))

	if res.Category != "" {
		fmt.Fprintf(&sb, "\n\nCategory: <b>%s</b>", EscapeHTML(res.Category))
	}
	if e.MarketSizeEstimate != "" {
		fmt.Fprintf(&sb, "\nMarket size: %s", EscapeHTML(e.MarketSizeEstimate))
	}
	if e.CAGREstimate != 0 {
		fmt.Fprintf(&sb, "\nCAGR: %.1f%%", e.CAGREstimate)
	}
	if len(e.Competitors) > 0 {
		sb.WriteString("\n\n<b>Competitors</b>")
		for _, c := range e.Competitors {
			line := c.Name
			if c.OneLine != "" {
				line += " - " + c.OneLine
			}
			fmt.Fprintf(&sb, "\n• %s", EscapeHTML(line))
		}
	}
	if len(e.BusinessModels) > 0 {
		fmt.Fprintf(&sb, "\n\nBusiness models: %s", EscapeHTML(strings.Join(e.BusinessModels, ", ")))
	}
	if e.NextStep != "" {
		fmt.Fprintf(&sb, "\n\nNext step: %s", EscapeHTML(e.NextStep))
	}
	fmt.Fprintf(&sb, "\n\n<i>%s</i>", EscapeHTML(e.Disclaimer))
	return sb.String()
}

func formatStats(stats *idea.Stats, summary costs.Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>Vault stats</b>\n\nIdeas: %d", stats.Total)

	if len(stats.ByStatus) > 0 {
		sb.WriteString("\n\n<b>By status</b>")
		for _, status := range []idea.Status{
			idea.StatusCaptured,
			idea.StatusAwaitingClarification,
			idea.StatusClarified,
			idea.StatusReadyForEnrichment,
			idea.StatusEnriched,
		} {
			if n := stats.ByStatus[status]; n > 0 {
				fmt.Fprintf(&sb, "\n%s: %d", status, n)
			}
		}
	}

	if len(stats.ByCategory) > 0 {
		names := make([]string, 0, len(stats.ByCategory))
		for name := range stats.ByCategory {
			names = append(names, name)
		}
		sort.Strings(names)
		sb.WriteString("\n\n<b>By category</b>")
		for _, name := range names {
			fmt.Fprintf(&sb, "\n%s: %d", EscapeHTML(name), stats.ByCategory[name])
		}
	}

	fmt.Fprintf(&sb, "\n\n<b>AI spend</b>\nSince %s: $%.4f over %d calls",
		summary.Since.Format("2006-01-02"), summary.TotalUSD, summary.Calls)
	return sb.String()
}

// Error texts name the failed step in plain language; detail stays in
// the logs.
func captureErrorText(err error) string {
	switch {
	case errors.Is(err, idea.ErrValidation):
		return "I could not save that. The message seems empty; send some text, a voice note, a photo, or a document."
	case errors.Is(err, idea.ErrAttachmentTooLarge):
		return "That attachment is too large for me to process. Files up to 20 MB and voice notes up to 30 seconds work."
	case errors.Is(err, idea.ErrTranscription), errors.Is(err, provider.ErrFileTooLarge):
		return "I could not transcribe that voice note. Please try again or send the idea as text."
	case errors.Is(err, idea.ErrStorage):
		return "Saving the idea failed. Nothing was stored, please send it again."
	default:
		return "Something went wrong while capturing the idea. Please try again."
	}
}

func clarifyErrorText(err error) string {
	switch {
	case errors.Is(err, idea.ErrNotFound):
		return "I could not find that idea anymore. Please send it again."
	case errors.Is(err, idea.ErrValidation):
		return "That idea has already moved on; nothing to confirm."
	default:
		return "Confirming the idea failed. Press Retry to try again."
	}
}

func enrichErrorText(err error) string {
	switch {
	case errors.Is(err, idea.ErrNotFound):
		return "I could not find that idea anymore. Please send it again."
	case errors.Is(err, idea.ErrEnrichmentParse):
		return "The market analysis came back malformed. Press Retry to run it again."
	case errors.Is(err, provider.ErrRateLimit):
		return "The analysis service is rate-limiting us. Please retry in a minute."
	case errors.Is(err, provider.ErrProviderDown):
		return "The analysis service is unreachable right now. Press Retry in a moment."
	case errors.Is(err, idea.ErrStorage):
		return "The analysis succeeded but saving it failed. Press Retry to run it again."
	default:
		return "Generating the market brief failed. Press Retry to try again."
	}
}
