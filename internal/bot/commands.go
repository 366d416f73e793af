package bot

import (
	"context"
	"strings"

	"github.com/ideavault/ideavault/pkg/message"
)

func (b *Bot) handleCommand(ctx context.Context, msg message.InboundMessage, text string) {
	cmd := strings.Fields(text)[0]
	// Strip the @botname suffix used in groups.
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		b.reply(ctx, msg, welcomeText)
	case "/help":
		b.reply(ctx, msg, helpText)
	case "/stats":
		b.handleStats(ctx, msg)
	default:
		b.reply(ctx, msg, "Unknown command. Try /help.")
	}
}

func (b *Bot) handleStats(ctx context.Context, msg message.InboundMessage) {
	if !b.allow.IsAdmin(msg) {
		b.reply(ctx, msg, "Stats are only available to admins.")
		return
	}

	stats, costs, err := b.svc.Stats(ctx)
	if err != nil {
		b.logger.Error("stats failed", "error", err)
		b.reply(ctx, msg, "Could not load stats right now. Please try again.")
		return
	}
	b.reply(ctx, msg, formatStats(stats, costs))
}

const welcomeText = `<b>Idea Vault</b>

Send me an idea as text, a voice note (up to 30 seconds), a photo with a caption, or a document. I will save it, ask a clarifying question, and on your OK produce a short market brief.

Use /help for details.`

const helpText = `<b>How it works</b>

1. Send an idea: text, voice (&#8804;30s), photo, or document.
2. I save it and ask one clarifying question.
3. Press <b>OK - Save &amp; Enrich</b> to get a market brief, or <b>Cancel</b> to keep the raw idea.

Commands:
/start - welcome
/help - this message
/stats - idea and cost statistics (admins)`
