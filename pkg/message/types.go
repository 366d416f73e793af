// Package message defines the platform-agnostic data contract between
// channels and the bot: text, media, inline keyboards, and button
// callbacks.
package message

// ChatType indicates the kind of conversation.
type ChatType string

const (
	// ChatDM is a direct (one-to-one) conversation.
	ChatDM ChatType = "dm"
	// ChatGroup is a multi-participant group conversation.
	ChatGroup ChatType = "group"
)

// BlockType discriminates the variant stored in a ContentBlock.
type BlockType string

// Supported block types.
const (
	BlockText  BlockType = "text"
	BlockImage BlockType = "image"
	BlockAudio BlockType = "audio"
	BlockFile  BlockType = "file"
)

// Sender identifies the author of an inbound message.
type Sender struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID    string   `json:"id"`
	Type  ChatType `json:"type"`
	Title string   `json:"title,omitempty"`
}

// IsGroup reports whether the chat is a group conversation.
func (c Chat) IsGroup() bool {
	return c.Type == ChatGroup
}

// IsDirectMessage reports whether the chat is a direct message.
func (c Chat) IsDirectMessage() bool {
	return c.Type == ChatDM
}

// Callback is a pressed inline-keyboard button. Data carries the
// payload the button was created with.
type Callback struct {
	ID        string `json:"id"`
	Data      string `json:"data"`
	MessageID string `json:"message_id,omitempty"`
}

// Button is one inline-keyboard button.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Keyboard is an inline keyboard laid out as rows of buttons.
type Keyboard struct {
	Rows [][]Button `json:"rows"`
}

// NewKeyboard builds a keyboard with one button per row.
func NewKeyboard(buttons ...Button) *Keyboard {
	k := &Keyboard{Rows: make([][]Button, len(buttons))}
	for i, b := range buttons {
		k.Rows[i] = []Button{b}
	}
	return k
}

// NewKeyboardRow builds a keyboard with all buttons on a single row.
func NewKeyboardRow(buttons ...Button) *Keyboard {
	return &Keyboard{Rows: [][]Button{buttons}}
}
