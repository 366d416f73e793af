package bot

import (
	"context"
	"strings"

	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/pkg/message"
)

// Callback payloads carry the action and the idea id, so no session
// state is needed between the question and the button press.
func (b *Bot) handleCallback(ctx context.Context, msg message.InboundMessage) {
	action, id, ok := parseCallback(msg.Callback.Data)
	if !ok {
		b.ack(ctx, msg, "")
		b.logger.Warn("unrecognized callback payload", "data", msg.Callback.Data)
		return
	}

	switch action {
	case "ok":
		b.ack(ctx, msg, "Enriching...")
		b.confirmAndEnrich(ctx, msg, id)
	case "cancel":
		b.ack(ctx, msg, "Kept as is")
		b.reply(ctx, msg, "OK, keeping the idea as captured. You can find it in your vault.")
	case "retry_enrich":
		b.ack(ctx, msg, "Retrying...")
		b.runEnrich(ctx, msg, id)
	case "retry_confirm":
		b.ack(ctx, msg, "Retrying...")
		b.confirmAndEnrich(ctx, msg, id)
	default:
		b.ack(ctx, msg, "")
		b.logger.Warn("unknown callback action", "action", action)
	}
}

func (b *Bot) confirmAndEnrich(ctx context.Context, msg message.InboundMessage, id string) {
	if _, err := b.svc.Clarify(ctx, id, lifecycle.ActionConfirm, ""); err != nil {
		b.logger.Error("confirm failed", "idea_id", id, "error", err)
		b.send(ctx, msg, clarifyErrorText(err), retryKeyboard("confirm", id))
		return
	}
	b.runEnrich(ctx, msg, id)
}

// parseCallback splits "ok_<id>", "cancel_<id>" and
// "retry_<action>_<id>" payloads.
func parseCallback(data string) (action, id string, ok bool) {
	switch {
	case strings.HasPrefix(data, "ok_"):
		return "ok", data[len("ok_"):], true
	case strings.HasPrefix(data, "cancel_"):
		return "cancel", data[len("cancel_"):], true
	case strings.HasPrefix(data, "retry_"):
		rest := data[len("retry_"):]
		i := strings.IndexByte(rest, '_')
		if i <= 0 || i == len(rest)-1 {
			return "", "", false
		}
		return "retry_" + rest[:i], rest[i+1:], true
	}
	return "", "", false
}

func clarifyKeyboard(id string) *message.Keyboard {
	return message.NewKeyboardRow(
		message.Button{Label: "OK - Save & Enrich", Data: "ok_" + id},
		message.Button{Label: "Cancel", Data: "cancel_" + id},
	)
}

func retryKeyboard(action, id string) *message.Keyboard {
	return message.NewKeyboardRow(
		message.Button{Label: "Retry", Data: "retry_" + action + "_" + id},
	)
}
