package message

import (
	"encoding/json"
	"time"
)

// InboundMessage represents a message or button press received from a
// channel. When Callback is set the message is a button press and
// Blocks is usually empty.
type InboundMessage struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Channel   string          `json:"channel"`
	Sender    Sender          `json:"sender"`
	Chat      Chat            `json:"chat"`
	ReplyToID string          `json:"reply_to_id,omitempty"`
	Blocks    []ContentBlock  `json:"blocks"`
	Callback  *Callback       `json:"callback,omitempty"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// TextContent returns the concatenated text of all text blocks.
func (m *InboundMessage) TextContent() string {
	return textContent(m.Blocks)
}

// HasMedia reports whether the message contains media blocks.
func (m *InboundMessage) HasMedia() bool {
	return hasMedia(m.Blocks)
}

// IsCallback reports whether the message is an inline-keyboard button
// press.
func (m *InboundMessage) IsCallback() bool {
	return m.Callback != nil
}

// IsGroup reports whether the message was sent in a group chat.
func (m *InboundMessage) IsGroup() bool {
	return m.Chat.IsGroup()
}
