package idea

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSanitizeStripsControlChars(t *testing.T) {
	in := "hello\x00world\x07 ok\nline\ttab"
	got := Sanitize(in)
	want := "helloworld ok\nline\ttab"
	if got != want {
		t.Errorf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	in := strings.Repeat("a", MaxTextLen+100)
	got := Sanitize(in)
	if len([]rune(got)) != MaxTextLen {
		t.Errorf("len = %d, want %d", len([]rune(got)), MaxTextLen)
	}
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "A marketplace for socks", "A marketplace for socks"},
		{"first line only", "Headline\nBody text follows", "Headline"},
		{"empty", "   ", "Untitled idea"},
		{"exact bound", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"over bound", strings.Repeat("x", 51), strings.Repeat("x", 50) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.in); got != tt.want {
				t.Errorf("DeriveTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckAttachmentSize(t *testing.T) {
	err := CheckAttachment(Attachment{Type: AttachmentDocument, URL: "https://x.test/f", Size: MaxAttachmentBytes + 1})
	if !errors.Is(err, ErrAttachmentTooLarge) {
		t.Errorf("want ErrAttachmentTooLarge, got %v", err)
	}
	if err := CheckAttachment(Attachment{Type: AttachmentDocument, URL: "https://x.test/f", Size: MaxAttachmentBytes}); err != nil {
		t.Errorf("at bound: unexpected error %v", err)
	}
}

func TestCheckAttachmentVoiceDuration(t *testing.T) {
	err := CheckAttachment(Attachment{Type: AttachmentAudio, URL: "https://x.test/v", Duration: 31 * time.Second})
	if !errors.Is(err, ErrAttachmentTooLarge) {
		t.Errorf("want ErrAttachmentTooLarge, got %v", err)
	}
	if err := CheckAttachment(Attachment{Type: AttachmentAudio, URL: "https://x.test/v", Duration: 30 * time.Second}); err != nil {
		t.Errorf("at bound: unexpected error %v", err)
	}
}

func TestCheckAttachmentMissingURL(t *testing.T) {
	err := CheckAttachment(Attachment{Type: AttachmentImage})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("want ErrValidation, got %v", err)
	}
}

func TestExtractURLs(t *testing.T) {
	text := "See https://example.com/a and http://b.test, also https://example.com/a again"
	got := ExtractURLs(text)
	want := []string{"https://example.com/a", "http://b.test"}
	if len(got) != len(want) {
		t.Fatalf("got %d URLs %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("url[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStatusCanAdvance(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusCaptured, StatusAwaitingClarification, true},
		{StatusCaptured, StatusEnriched, true},
		{StatusClarified, StatusCaptured, false},
		{StatusEnriched, StatusEnriched, false},
		{Status("bogus"), StatusEnriched, false},
		{StatusCaptured, Status("bogus"), false},
	}
	for _, tt := range tests {
		if got := tt.from.CanAdvance(tt.to); got != tt.want {
			t.Errorf("%s -> %s: CanAdvance = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestAdvanceRejectsBackward(t *testing.T) {
	i := &Idea{Status: StatusClarified}
	if err := i.Advance(StatusCaptured); err == nil {
		t.Fatal("expected backward transition to fail")
	}
	if i.Status != StatusClarified {
		t.Errorf("status mutated to %s on failed advance", i.Status)
	}
	if err := i.Advance(StatusReadyForEnrichment); err != nil {
		t.Fatalf("forward advance: %v", err)
	}
}

func TestSuggestionClamp(t *testing.T) {
	s := CategorySuggestion{Confidence: 1.4}
	s.Clamp()
	if s.Confidence != 1 {
		t.Errorf("clamped high = %v, want 1", s.Confidence)
	}
	s.Confidence = -0.2
	s.Clamp()
	if s.Confidence != 0 {
		t.Errorf("clamped low = %v, want 0", s.Confidence)
	}
}

func TestParseEnrichment(t *testing.T) {
	raw := []byte(`{
		"summary": "A sock marketplace",
		"competitors": [
			{"name":"A","one_line":"a"},{"name":"B","one_line":"b"},
			{"name":"C","one_line":"c"},{"name":"D","one_line":"d"},
			{"name":"E","one_line":"e"},{"name":"F","one_line":"f"}
		],
		"market_size_estimate": "$1B",
		"cagr_pct_estimate": 12.5,
		"likely_biz_models": ["subscription"],
		"next_step": "Talk to buyers",
		"category": {"name":"E-commerce","confidence":1.8,"reasoning":"retail"},
		"disclaimer": "trust me"
	}`)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	e, err := ParseEnrichment(raw, now)
	if err != nil {
		t.Fatalf("ParseEnrichment: %v", err)
	}
	if len(e.Competitors) != MaxCompetitors {
		t.Errorf("competitors = %d, want %d", len(e.Competitors), MaxCompetitors)
	}
	if e.Disclaimer != Disclaimer {
		t.Errorf("disclaimer = %q, want %q", e.Disclaimer, Disclaimer)
	}
	if !e.GeneratedAt.Equal(now) {
		t.Errorf("generated_at = %v, want %v", e.GeneratedAt, now)
	}
	if e.Category == nil || e.Category.Confidence != 1 {
		t.Errorf("category confidence not clamped: %+v", e.Category)
	}
}

func TestParseEnrichmentInvalid(t *testing.T) {
	for _, raw := range []string{"not json", `{"competitors": []}`} {
		_, err := ParseEnrichment([]byte(raw), time.Now())
		if !errors.Is(err, ErrEnrichmentParse) {
			t.Errorf("ParseEnrichment(%q): want ErrEnrichmentParse, got %v", raw, err)
		}
	}
}
