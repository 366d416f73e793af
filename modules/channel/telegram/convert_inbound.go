package telegram

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ideavault/ideavault/pkg/message"
)

// fileIDRef returns a reference URI for a Telegram file_id.
// This is NOT a download URL — consumers must call Client.GetFile +
// Client.FileURL to resolve it into a real download URL. The
// tg://file_id/ scheme signals this.
func fileIDRef(fileID string) string {
	return "tg://file_id/" + fileID
}

// convertInbound transforms a Telegram Update into a platform-agnostic
// InboundMessage. Callback queries become messages with Callback set.
func convertInbound(update *Update, channelName string) (message.InboundMessage, error) {
	if update.CallbackQuery != nil {
		return convertCallback(update, channelName)
	}

	msg := extractMessage(update)
	if msg == nil {
		return message.InboundMessage{}, fmt.Errorf("telegram: update %d contains no message", update.UpdateID)
	}

	raw, err := json.Marshal(update)
	if err != nil {
		return message.InboundMessage{}, fmt.Errorf("telegram: marshal update: %w", err)
	}

	inbound := message.InboundMessage{
		ID:        strconv.Itoa(msg.MessageID),
		Timestamp: time.Unix(int64(msg.Date), 0),
		Channel:   channelName,
		Sender:    convertSender(msg.From),
		Chat:      convertChat(msg.Chat),
		Raw:       raw,
	}
	if msg.ReplyToMessage != nil {
		inbound.ReplyToID = strconv.Itoa(msg.ReplyToMessage.MessageID)
	}
	inbound.Blocks = convertBlocks(msg)

	return inbound, nil
}

// convertCallback maps a callback query to an inbound message carrying
// the button payload.
func convertCallback(update *Update, channelName string) (message.InboundMessage, error) {
	cq := update.CallbackQuery

	raw, err := json.Marshal(update)
	if err != nil {
		return message.InboundMessage{}, fmt.Errorf("telegram: marshal update: %w", err)
	}

	inbound := message.InboundMessage{
		ID:        cq.ID,
		Timestamp: time.Now(),
		Channel:   channelName,
		Sender:    convertSender(cq.From),
		Callback:  &message.Callback{ID: cq.ID, Data: cq.Data},
		Raw:       raw,
	}
	if cq.Message != nil {
		inbound.Chat = convertChat(cq.Message.Chat)
		inbound.Callback.MessageID = strconv.Itoa(cq.Message.MessageID)
	}
	return inbound, nil
}

// extractMessage returns the actual message from an Update, checking
// Message and EditedMessage in order.
func extractMessage(update *Update) *Message {
	if update.Message != nil {
		return update.Message
	}
	return update.EditedMessage
}

// convertSender maps a Telegram User to a platform-agnostic Sender.
func convertSender(user *User) message.Sender {
	if user == nil {
		return message.Sender{}
	}
	displayName := user.FirstName
	if user.LastName != "" {
		displayName += " " + user.LastName
	}
	return message.Sender{
		ID:          strconv.FormatInt(user.ID, 10),
		Username:    user.Username,
		DisplayName: displayName,
	}
}

// convertChat maps a Telegram Chat to a platform-agnostic Chat.
func convertChat(chat Chat) message.Chat {
	return message.Chat{
		ID:    strconv.FormatInt(chat.ID, 10),
		Type:  mapChatType(chat.Type),
		Title: chat.Title,
	}
}

// mapChatType converts Telegram chat type strings to message.ChatType.
func mapChatType(tgType string) message.ChatType {
	switch tgType {
	case "private":
		return message.ChatDM
	default:
		return message.ChatGroup
	}
}

// convertBlocks builds content blocks from a Telegram message,
// carrying the size and duration metadata the pipeline needs for its
// attachment bounds. Media URLs use a tg://file_id/ reference that
// must be resolved lazily via GetFile.
func convertBlocks(msg *Message) []message.ContentBlock {
	var blocks []message.ContentBlock

	switch {
	case len(msg.Photo) > 0:
		largest := msg.Photo[len(msg.Photo)-1]
		b := message.NewImageBlock(fileIDRef(largest.FileID), "")
		b.Size = largest.FileSize
		blocks = append(blocks, b)
	case msg.Voice != nil:
		b := message.NewAudioBlock(fileIDRef(msg.Voice.FileID), msg.Voice.MIMEType, true)
		b.Size = msg.Voice.FileSize
		b.Duration = msg.Voice.Duration
		blocks = append(blocks, b)
	case msg.Audio != nil:
		b := message.NewAudioBlock(fileIDRef(msg.Audio.FileID), msg.Audio.MIMEType, false)
		b.Size = msg.Audio.FileSize
		b.Duration = msg.Audio.Duration
		b.FileName = msg.Audio.FileName
		blocks = append(blocks, b)
	case msg.Document != nil:
		b := message.NewFileBlock(fileIDRef(msg.Document.FileID), msg.Document.MIMEType, msg.Document.FileName)
		b.Size = msg.Document.FileSize
		blocks = append(blocks, b)
	}

	// Append caption as a text block after media blocks.
	if msg.Caption != "" {
		blocks = append(blocks, message.NewTextBlock(msg.Caption))
	}

	// If no media was found, use the text field.
	if len(blocks) == 0 && msg.Text != "" {
		blocks = append(blocks, message.NewTextBlock(msg.Text))
	}

	return blocks
}
