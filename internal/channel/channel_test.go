package channel

import (
	"errors"
	"strings"
	"testing"

	"github.com/ideavault/ideavault/pkg/message"
)

func inboundFrom(senderID, chatID string) message.InboundMessage {
	return message.InboundMessage{
		Sender: message.Sender{ID: senderID},
		Chat:   message.Chat{ID: chatID, Type: message.ChatDM},
	}
}

func TestAllowListDeniesByDefault(t *testing.T) {
	var a *AllowList
	if a.IsAllowed(inboundFrom("1", "1")) {
		t.Error("nil allow-list permitted a sender")
	}
	empty := NewAllowList(nil, nil, nil)
	if empty.IsAllowed(inboundFrom("1", "1")) {
		t.Error("empty allow-list permitted a sender")
	}
}

func TestAllowListMatchesUserAndGroup(t *testing.T) {
	a := NewAllowList([]string{" Alice ", "42"}, []string{"-100"}, nil)

	if !a.IsAllowed(inboundFrom("42", "7")) {
		t.Error("user ID not matched")
	}
	msg := inboundFrom("99", "7")
	msg.Sender.Username = "ALICE"
	if !a.IsAllowed(msg) {
		t.Error("username not matched case-insensitively")
	}
	if !a.IsAllowed(inboundFrom("99", "-100")) {
		t.Error("group not matched")
	}
	if a.IsAllowed(inboundFrom("99", "7")) {
		t.Error("unknown sender permitted")
	}
}

func TestAllowListAdmins(t *testing.T) {
	a := NewAllowList(nil, nil, []string{"42"})

	msg := inboundFrom("42", "7")
	if !a.IsAllowed(msg) {
		t.Error("admin not implicitly allowed")
	}
	if !a.IsAdmin(msg) {
		t.Error("admin not recognized")
	}
	if a.IsAdmin(inboundFrom("99", "7")) {
		t.Error("non-admin recognized as admin")
	}
}

func TestSplitMessageShortPassThrough(t *testing.T) {
	msg := message.NewTextMessage(message.Chat{ID: "1"}, "short")
	chunks := SplitMessage(msg, ChunkConfig{MaxLength: 100})
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
}

func TestSplitMessageLongText(t *testing.T) {
	text := strings.Repeat("line of the enrichment brief\n", 50)
	msg := message.NewTextMessage(message.Chat{ID: "1"}, text)
	msg.Keyboard = message.NewKeyboardRow(message.Button{Label: "OK", Data: "ok_1"})

	chunks := SplitMessage(msg, ChunkConfig{MaxLength: 200})
	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, want several", len(chunks))
	}
	for i, c := range chunks {
		if got := len(c.TextContent()); got > 200 {
			t.Errorf("chunk %d length = %d, exceeds limit", i, got)
		}
		isLast := i == len(chunks)-1
		if isLast && c.Keyboard == nil {
			t.Error("keyboard missing from last chunk")
		}
		if !isLast && c.Keyboard != nil {
			t.Errorf("keyboard on chunk %d, want last only", i)
		}
	}
}

func TestSplitMessagePreservesCodeBlocks(t *testing.T) {
	text := "intro\n```\ncode line one\ncode line two\n```\noutro"
	msg := message.NewTextMessage(message.Chat{ID: "1"}, text)

	chunks := SplitMessage(msg, ChunkConfig{MaxLength: 20, PreserveBlocks: true})
	for _, c := range chunks {
		body := c.TextContent()
		opens := strings.Count(body, "```")
		if opens == 1 {
			t.Errorf("code fence split across chunks: %q", body)
		}
	}
}

func TestMockChannelSimulateMessage(t *testing.T) {
	mock := NewMockChannel("telegram", NewAllowList([]string{"1"}, nil, nil))

	if err := mock.SimulateMessage(inboundFrom("1", "1")); !errors.Is(err, ErrNoInbox) {
		t.Errorf("no inbox: %v", err)
	}

	var delivered []message.InboundMessage
	mock.SetInbox(func(m message.InboundMessage) error {
		delivered = append(delivered, m)
		return nil
	})

	if err := mock.SimulateMessage(inboundFrom("1", "1")); err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}
	if err := mock.SimulateMessage(inboundFrom("2", "2")); !errors.Is(err, ErrDenied) {
		t.Errorf("denied sender: %v", err)
	}
	if len(delivered) != 1 {
		t.Errorf("delivered = %d, want 1", len(delivered))
	}
}
