package telegram

import (
	"testing"

	"github.com/ideavault/ideavault/pkg/message"
)

func TestConvertInboundText(t *testing.T) {
	update := &Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 10,
			From:      &User{ID: 42, FirstName: "Ada", LastName: "L", Username: "ada"},
			Chat:      Chat{ID: 42, Type: "private"},
			Date:      1756700000,
			Text:      "A sock marketplace",
		},
	}

	msg, err := convertInbound(update, "channel.telegram")
	if err != nil {
		t.Fatalf("convertInbound: %v", err)
	}
	if msg.Sender.ID != "42" || msg.Sender.DisplayName != "Ada L" {
		t.Errorf("sender = %+v", msg.Sender)
	}
	if msg.Chat.Type != message.ChatDM {
		t.Errorf("chat type = %q, want dm", msg.Chat.Type)
	}
	if msg.TextContent() != "A sock marketplace" {
		t.Errorf("text = %q", msg.TextContent())
	}
}

func TestConvertInboundVoiceCarriesMetadata(t *testing.T) {
	update := &Update{
		UpdateID: 2,
		Message: &Message{
			MessageID: 11,
			From:      &User{ID: 42, FirstName: "Ada"},
			Chat:      Chat{ID: 42, Type: "private"},
			Voice:     &Voice{FileID: "voice-file", Duration: 12, FileSize: 34567, MIMEType: "audio/ogg"},
		},
	}

	msg, err := convertInbound(update, "channel.telegram")
	if err != nil {
		t.Fatalf("convertInbound: %v", err)
	}
	if len(msg.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(msg.Blocks))
	}
	b := msg.Blocks[0]
	if b.Type != message.BlockAudio || !b.IsVoice {
		t.Errorf("block = %+v, want voice audio", b)
	}
	if b.URL != "tg://file_id/voice-file" {
		t.Errorf("url = %q", b.URL)
	}
	if b.Duration != 12 || b.Size != 34567 {
		t.Errorf("metadata lost: duration=%d size=%d", b.Duration, b.Size)
	}
}

func TestConvertInboundPhotoPicksLargest(t *testing.T) {
	update := &Update{
		UpdateID: 3,
		Message: &Message{
			MessageID: 12,
			From:      &User{ID: 42, FirstName: "Ada"},
			Chat:      Chat{ID: 42, Type: "private"},
			Photo: []PhotoSize{
				{FileID: "small", Width: 90},
				{FileID: "large", Width: 1280, FileSize: 99999},
			},
			Caption: "whiteboard sketch",
		},
	}

	msg, err := convertInbound(update, "channel.telegram")
	if err != nil {
		t.Fatalf("convertInbound: %v", err)
	}
	if len(msg.Blocks) != 2 {
		t.Fatalf("blocks = %d, want image + caption", len(msg.Blocks))
	}
	if msg.Blocks[0].URL != "tg://file_id/large" {
		t.Errorf("picked %q, want largest", msg.Blocks[0].URL)
	}
	if msg.TextContent() != "whiteboard sketch" {
		t.Errorf("caption = %q", msg.TextContent())
	}
}

func TestConvertInboundCallback(t *testing.T) {
	update := &Update{
		UpdateID: 4,
		CallbackQuery: &CallbackQuery{
			ID:      "cb-9",
			From:    &User{ID: 42, FirstName: "Ada"},
			Data:    "ok_idea-3",
			Message: &Message{MessageID: 20, Chat: Chat{ID: 42, Type: "private"}},
		},
	}

	msg, err := convertInbound(update, "channel.telegram")
	if err != nil {
		t.Fatalf("convertInbound: %v", err)
	}
	if !msg.IsCallback() {
		t.Fatal("callback not detected")
	}
	if msg.Callback.Data != "ok_idea-3" {
		t.Errorf("data = %q", msg.Callback.Data)
	}
	if msg.Callback.MessageID != "20" {
		t.Errorf("message_id = %q", msg.Callback.MessageID)
	}
	if msg.Chat.ID != "42" {
		t.Errorf("chat = %q", msg.Chat.ID)
	}
}

func TestConvertInboundEmptyUpdate(t *testing.T) {
	if _, err := convertInbound(&Update{UpdateID: 5}, "channel.telegram"); err == nil {
		t.Error("expected error for update without message")
	}
}

func TestConvertKeyboard(t *testing.T) {
	k := message.NewKeyboardRow(
		message.Button{Label: "OK - Save & Enrich", Data: "ok_idea-1"},
		message.Button{Label: "Cancel", Data: "cancel_idea-1"},
	)
	markup := convertKeyboard(k)
	if markup == nil || len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("markup = %+v", markup)
	}
	if markup.InlineKeyboard[0][1].CallbackData != "cancel_idea-1" {
		t.Errorf("callback data = %q", markup.InlineKeyboard[0][1].CallbackData)
	}
	if convertKeyboard(nil) != nil {
		t.Error("nil keyboard should convert to nil markup")
	}
}
