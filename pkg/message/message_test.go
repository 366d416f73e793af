package message

import "testing"

func TestTextContent(t *testing.T) {
	m := InboundMessage{Blocks: []ContentBlock{
		NewTextBlock("first"),
		NewImageBlock("https://example.com/i.png", "image/png"),
		NewTextBlock("second"),
	}}
	if got := m.TextContent(); got != "first\nsecond" {
		t.Errorf("TextContent = %q", got)
	}
	if !m.HasMedia() {
		t.Error("HasMedia = false, want true")
	}
}

func TestIsCallback(t *testing.T) {
	m := InboundMessage{}
	if m.IsCallback() {
		t.Error("plain message reported as callback")
	}
	m.Callback = &Callback{ID: "1", Data: "ok_idea-1"}
	if !m.IsCallback() {
		t.Error("callback not detected")
	}
}

func TestNewKeyboardLayouts(t *testing.T) {
	col := NewKeyboard(Button{Label: "A", Data: "a"}, Button{Label: "B", Data: "b"})
	if len(col.Rows) != 2 || len(col.Rows[0]) != 1 {
		t.Errorf("NewKeyboard rows = %+v", col.Rows)
	}
	row := NewKeyboardRow(Button{Label: "A", Data: "a"}, Button{Label: "B", Data: "b"})
	if len(row.Rows) != 1 || len(row.Rows[0]) != 2 {
		t.Errorf("NewKeyboardRow rows = %+v", row.Rows)
	}
}

func TestNewTextMessage(t *testing.T) {
	chat := Chat{ID: "42", Type: ChatDM}
	m := NewTextMessage(chat, "hello")
	if m.TextContent() != "hello" {
		t.Errorf("TextContent = %q", m.TextContent())
	}
	if m.HasMedia() {
		t.Error("text message reports media")
	}
	if !m.Chat.IsDirectMessage() {
		t.Error("chat type lost")
	}
}
