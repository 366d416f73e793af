package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ideavault/ideavault/internal/channel"
	"github.com/ideavault/ideavault/internal/costs"
	"github.com/ideavault/ideavault/internal/events"
	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/lifecycle"
	"github.com/ideavault/ideavault/internal/provider"
	"github.com/ideavault/ideavault/internal/storage"
	"github.com/ideavault/ideavault/pkg/message"
)

type fakeStore struct {
	mu     sync.Mutex
	ideas  map[string]*idea.Idea
	nextID int
}

func newFakeStore() *fakeStore {
	return &fakeStore{ideas: make(map[string]*idea.Idea)}
}

func (f *fakeStore) CreateIdea(_ context.Context, in storage.CreateIdeaInput) (*idea.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	i := &idea.Idea{
		ID:      fmt.Sprintf("idea-%d", f.nextID),
		Title:   in.Title,
		RawText: in.RawText,
		Status:  in.Status,
		ChatID:  in.ChatID,
		UserID:  in.UserID,
	}
	f.ideas[i.ID] = i
	c := *i
	return &c, nil
}

func (f *fakeStore) GetIdea(_ context.Context, id string) (*idea.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ideas[id]
	if !ok {
		return nil, idea.ErrNotFound
	}
	c := *i
	return &c, nil
}

func (f *fakeStore) UpdateIdea(_ context.Context, id string, in storage.UpdateIdeaInput) (*idea.Idea, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.ideas[id]
	if !ok {
		return nil, idea.ErrNotFound
	}
	if in.Status != nil {
		i.Status = *in.Status
	}
	if in.RawText != nil {
		i.RawText = *in.RawText
	}
	if in.Category != nil {
		i.Category = *in.Category
	}
	if in.Enrichment != nil {
		i.Enrichment = in.Enrichment
	}
	c := *i
	return &c, nil
}

func (f *fakeStore) ListCategories(context.Context) ([]idea.Category, error) { return nil, nil }

func (f *fakeStore) AddCategory(_ context.Context, name, color string) (idea.Category, error) {
	return idea.Category{Name: name, Color: color}, nil
}

func (f *fakeStore) Stats(context.Context) (*idea.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &idea.Stats{ByStatus: make(map[idea.Status]int), ByCategory: make(map[string]int)}
	for _, i := range f.ideas {
		s.Total++
		s.ByStatus[i.Status]++
	}
	return s, nil
}

type scriptedCompleter struct{}

func (scriptedCompleter) Complete(_ context.Context, req provider.CompletionRequest) (*provider.CompletionResponse, error) {
	if req.JSONMode {
		return &provider.CompletionResponse{Content: enrichmentJSON, Usage: provider.Usage{TotalTokens: 500}}, nil
	}
	system := req.Messages[0].Content
	if strings.Contains(system, "clarifying question") {
		return &provider.CompletionResponse{Content: "Who is the first customer?", Usage: provider.Usage{TotalTokens: 30}}, nil
	}
	return &provider.CompletionResponse{Content: "Solar bike lights", Usage: provider.Usage{TotalTokens: 20}}, nil
}

func (scriptedCompleter) ModelName() string { return "fake-model" }

type fakeTranscriber struct{}

func (fakeTranscriber) Transcribe(context.Context, string, io.Reader) (*provider.Transcription, error) {
	return &provider.Transcription{Text: "spoken idea", Duration: 10}, nil
}

type fakeDownloader struct{}

func (fakeDownloader) DownloadFile(context.Context, string, int64) ([]byte, error) {
	return []byte("ogg"), nil
}

const enrichmentJSON = `{
	"summary": "Commuter safety lights that self-charge.",
	"competitors": [{"name": "LumosCo", "one_line": "helmet lights"}],
	"market_size_estimate": "$1.2B",
	"cagr_pct_estimate": 6.5,
	"likely_biz_models": ["d2c hardware"],
	"next_step": "Prototype with 5 commuters",
	"category": {"name": "Hardware", "confidence": 0.9, "reasoning": "physical product"}
}`

func newTestBot(t *testing.T, skip bool) (*Bot, *channel.MockChannel, *fakeStore) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := newFakeStore()
	svc := lifecycle.NewService(store, scriptedCompleter{}, fakeTranscriber{}, fakeDownloader{},
		costs.NewLedger(), events.NewHub(), logger, lifecycle.Options{SkipClarification: skip})

	allow := channel.NewAllowList([]string{"alice"}, nil, []string{"admin"})
	mock := channel.NewMockChannel("mock", allow)
	b := New(svc, mock, allow, logger)
	mock.SetInbox(b.HandleMessage)
	return b, mock, store
}

func inbound(text string) message.InboundMessage {
	return message.InboundMessage{
		ID:        "m1",
		Timestamp: time.Now(),
		Channel:   "mock",
		Sender:    message.Sender{ID: "7", Username: "alice"},
		Chat:      message.Chat{ID: "42", Type: message.ChatDM},
		Blocks:    []message.ContentBlock{message.NewTextBlock(text)},
	}
}

func lastSent(t *testing.T, mock *channel.MockChannel) message.OutboundMessage {
	t.Helper()
	sent := mock.Sent()
	if len(sent) == 0 {
		t.Fatal("no messages sent")
	}
	return sent[len(sent)-1]
}

func TestStartCommand(t *testing.T) {
	_, mock, _ := newTestBot(t, false)
	if err := mock.SimulateMessage(inbound("/start")); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "Idea Vault") {
		t.Errorf("reply = %q", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	_, mock, _ := newTestBot(t, false)
	if err := mock.SimulateMessage(inbound("/frobnicate")); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "/help") {
		t.Errorf("reply = %q", got)
	}
}

func TestStatsAdminOnly(t *testing.T) {
	_, mock, _ := newTestBot(t, false)
	if err := mock.SimulateMessage(inbound("/stats")); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "only available to admins") {
		t.Errorf("reply = %q", got)
	}

	admin := inbound("/stats")
	admin.Sender = message.Sender{ID: "1", Username: "admin"}
	if err := mock.SimulateMessage(admin); err != nil {
		t.Fatalf("simulate admin: %v", err)
	}
	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "Vault stats") {
		t.Errorf("admin reply = %q", got)
	}
}

func TestCaptureClarifyFlow(t *testing.T) {
	_, mock, store := newTestBot(t, false)
	if err := mock.SimulateMessage(inbound("Bike lights that charge while riding")); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	last := lastSent(t, mock)
	if !strings.Contains(last.TextContent(), "Who is the first customer?") {
		t.Errorf("question missing: %q", last.TextContent())
	}
	if last.Keyboard == nil || len(last.Keyboard.Rows) != 1 || len(last.Keyboard.Rows[0]) != 2 {
		t.Fatalf("keyboard = %+v", last.Keyboard)
	}
	if got := last.Keyboard.Rows[0][0].Data; got != "ok_idea-1" {
		t.Errorf("ok payload = %q", got)
	}
	if got := last.Keyboard.Rows[0][1].Data; got != "cancel_idea-1" {
		t.Errorf("cancel payload = %q", got)
	}

	saved, err := store.GetIdea(context.Background(), "idea-1")
	if err != nil {
		t.Fatalf("GetIdea: %v", err)
	}
	if saved.Status != idea.StatusAwaitingClarification {
		t.Errorf("status = %q", saved.Status)
	}
}

func TestCallbackOKEnriches(t *testing.T) {
	_, mock, store := newTestBot(t, false)
	if err := mock.SimulateMessage(inbound("Bike lights")); err != nil {
		t.Fatalf("capture: %v", err)
	}

	press := inbound("")
	press.Blocks = nil
	press.Callback = &message.Callback{ID: "cb1", Data: "ok_idea-1"}
	if err := mock.SimulateMessage(press); err != nil {
		t.Fatalf("callback: %v", err)
	}

	if acked := mock.Acked(); len(acked) != 1 || acked[0] != "cb1" {
		t.Errorf("acked = %v", acked)
	}
	brief := lastSent(t, mock).TextContent()
	if !strings.Contains(brief, "Commuter safety lights") {
		t.Errorf("brief = %q", brief)
	}
	if !strings.Contains(brief, "Estimates") {
		t.Errorf("disclaimer missing: %q", brief)
	}

	saved, _ := store.GetIdea(context.Background(), "idea-1")
	if saved.Status != idea.StatusEnriched {
		t.Errorf("status = %q", saved.Status)
	}
}

func TestCallbackCancel(t *testing.T) {
	_, mock, store := newTestBot(t, false)
	if err := mock.SimulateMessage(inbound("Bike lights")); err != nil {
		t.Fatalf("capture: %v", err)
	}

	press := inbound("")
	press.Blocks = nil
	press.Callback = &message.Callback{ID: "cb2", Data: "cancel_idea-1"}
	if err := mock.SimulateMessage(press); err != nil {
		t.Fatalf("callback: %v", err)
	}

	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "keeping the idea") {
		t.Errorf("reply = %q", got)
	}
	saved, _ := store.GetIdea(context.Background(), "idea-1")
	if saved.Status != idea.StatusAwaitingClarification {
		t.Errorf("status = %q", saved.Status)
	}
}

func TestSkipClarificationEnrichesImmediately(t *testing.T) {
	_, mock, store := newTestBot(t, true)
	if err := mock.SimulateMessage(inbound("Bike lights")); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "Commuter safety lights") {
		t.Errorf("expected brief, got %q", got)
	}
	saved, _ := store.GetIdea(context.Background(), "idea-1")
	if saved.Status != idea.StatusEnriched {
		t.Errorf("status = %q", saved.Status)
	}
}

func TestVoiceTooLongRejected(t *testing.T) {
	_, mock, _ := newTestBot(t, false)
	msg := inbound("")
	msg.Blocks = []message.ContentBlock{{
		Type:     message.BlockAudio,
		URL:      "https://example.com/v.ogg",
		IsVoice:  true,
		Duration: 45,
	}}
	if err := mock.SimulateMessage(msg); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if got := lastSent(t, mock).TextContent(); !strings.Contains(got, "30 seconds") {
		t.Errorf("reply = %q", got)
	}
}

func TestDocumentPlaceholder(t *testing.T) {
	sub, err := submissionFromMessage(message.InboundMessage{
		Channel: "mock",
		Chat:    message.Chat{ID: "42"},
		Blocks: []message.ContentBlock{{
			Type:     message.BlockFile,
			URL:      "https://example.com/pitch.pdf",
			FileName: "pitch.pdf",
			Size:     1024,
		}},
	})
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if sub.Text != "Document: pitch.pdf" {
		t.Errorf("text = %q", sub.Text)
	}
	if len(sub.Attachments) != 1 || sub.Attachments[0].Type != idea.AttachmentDocument {
		t.Errorf("attachments = %+v", sub.Attachments)
	}
}

func TestParseCallback(t *testing.T) {
	tests := []struct {
		data   string
		action string
		id     string
		ok     bool
	}{
		{"ok_idea-1", "ok", "idea-1", true},
		{"cancel_idea-2", "cancel", "idea-2", true},
		{"retry_enrich_idea-3", "retry_enrich", "idea-3", true},
		{"retry_confirm_idea-4", "retry_confirm", "idea-4", true},
		{"retry_", "", "", false},
		{"bogus", "", "", false},
	}
	for _, tt := range tests {
		action, id, ok := parseCallback(tt.data)
		if action != tt.action || id != tt.id || ok != tt.ok {
			t.Errorf("parseCallback(%q) = %q, %q, %v", tt.data, action, id, ok)
		}
	}
}

func TestEscapeHTML(t *testing.T) {
	if got := EscapeHTML(`<b>&"ok"`); got != `&lt;b&gt;&amp;"ok"` {
		t.Errorf("got %q", got)
	}
}
