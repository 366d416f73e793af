package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/ideavault/ideavault/internal/channel"
	"github.com/ideavault/ideavault/pkg/message"
)

// sendOutbound sends an OutboundMessage through the Telegram API.
// It splits the message if needed and dispatches each block by type.
func (t *Telegram) sendOutbound(ctx context.Context, msg message.OutboundMessage) error {
	chunks := channel.SplitMessage(msg, channel.ChunkConfig{
		MaxLength:      t.config.MaxMessageLength,
		PreserveBlocks: true,
	})

	chatID, err := strconv.ParseInt(msg.Chat.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat ID %q: %w", msg.Chat.ID, err)
	}

	for _, chunk := range chunks {
		if err := t.sendChunk(ctx, chunk, chatID); err != nil {
			return err
		}
	}

	return nil
}

// sendChunk dispatches a single chunk's blocks to the appropriate
// Telegram API methods. Fail-fast: if any block send fails, remaining
// blocks are skipped so partial delivery is never silently treated as
// success by the caller. The chunk's keyboard rides on its last block.
func (t *Telegram) sendChunk(ctx context.Context, chunk message.OutboundMessage, chatID int64) error {
	replyToID := parseOptionalInt(chunk.ReplyToID, t.logger)
	parseMode := resolveParseMode(chunk.Hints)
	disablePreview := false
	disableNotification := false

	if chunk.Hints != nil {
		disablePreview = chunk.Hints.DisablePreview
		disableNotification = chunk.Hints.DisableNotification
	}
	markup := convertKeyboard(chunk.Keyboard)

	for i, block := range chunk.Blocks {
		var err error
		var blockMarkup *InlineKeyboardMarkup
		if i == len(chunk.Blocks)-1 {
			blockMarkup = markup
		}

		switch block.Type {
		case message.BlockText:
			_, err = t.client.SendMessage(ctx, SendMessageRequest{
				ChatID:                chatID,
				Text:                  block.Text,
				ParseMode:             parseMode,
				ReplyToMessageID:      replyToID,
				DisableWebPagePreview: disablePreview,
				DisableNotification:   disableNotification,
				ReplyMarkup:           blockMarkup,
			})

		case message.BlockImage:
			_, err = t.client.SendPhoto(ctx, SendPhotoRequest{
				ChatID:              chatID,
				Photo:               block.URL,
				Caption:             block.Caption,
				ParseMode:           parseMode,
				ReplyToMessageID:    replyToID,
				DisableNotification: disableNotification,
				ReplyMarkup:         blockMarkup,
			})

		case message.BlockFile:
			_, err = t.client.SendDocument(ctx, SendDocumentRequest{
				ChatID:              chatID,
				Document:            block.URL,
				Caption:             block.Caption,
				ParseMode:           parseMode,
				ReplyToMessageID:    replyToID,
				DisableNotification: disableNotification,
				ReplyMarkup:         blockMarkup,
			})

		default:
			// Audio replies are not part of the bot's vocabulary.
			continue
		}

		if err != nil {
			return fmt.Errorf("telegram: send %s block: %w", block.Type, err)
		}
	}

	return nil
}

// convertKeyboard maps the platform-agnostic keyboard to the Bot API
// reply_markup payload.
func convertKeyboard(k *message.Keyboard) *InlineKeyboardMarkup {
	if k == nil || len(k.Rows) == 0 {
		return nil
	}
	markup := &InlineKeyboardMarkup{InlineKeyboard: make([][]InlineKeyboardButton, len(k.Rows))}
	for i, row := range k.Rows {
		buttons := make([]InlineKeyboardButton, len(row))
		for j, b := range row {
			buttons[j] = InlineKeyboardButton{Text: b.Label, CallbackData: b.Data}
		}
		markup.InlineKeyboard[i] = buttons
	}
	return markup
}

// resolveParseMode returns the parse mode from hints. Empty means
// plain text.
func resolveParseMode(hints *message.OutboundHints) string {
	if hints != nil && hints.ParseMode != "" {
		return hints.ParseMode
	}
	return ""
}

// parseOptionalInt converts a string to int, returning 0 for empty
// strings. Logs a warning if the string is non-empty but not a valid
// integer.
func parseOptionalInt(s string, logger *slog.Logger) int {
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		logger.Warn("parseOptionalInt: invalid integer value",
			"value", s,
			"error", err,
		)
		return 0
	}
	return v
}
