package idea

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxTextLen bounds the raw text stored per idea.
	MaxTextLen = 10000

	// MaxTitleLen bounds the derived title before an ellipsis is
	// appended.
	MaxTitleLen = 50
)

// Sanitize strips control characters (except newline and tab) from s
// and truncates it to MaxTextLen runes. The result is trimmed of
// surrounding whitespace.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if utf8.RuneCountInString(out) > MaxTextLen {
		runes := []rune(out)
		out = string(runes[:MaxTextLen])
	}
	return out
}

// DeriveTitle produces a one-line title from the idea text: the first
// line, truncated to MaxTitleLen runes with a trailing ellipsis when
// cut.
func DeriveTitle(text string) string {
	line := text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "Untitled idea"
	}
	runes := []rune(line)
	if len(runes) <= MaxTitleLen {
		return line
	}
	return string(runes[:MaxTitleLen]) + "..."
}

// ValidateText checks that text is usable after sanitization.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("idea: empty text: %w", ErrValidation)
	}
	return nil
}

// CheckAttachment enforces size and duration bounds before download.
func CheckAttachment(a Attachment) error {
	if a.URL == "" {
		return fmt.Errorf("idea: %s attachment without URL: %w", a.Type, ErrValidation)
	}
	if a.Size > MaxAttachmentBytes {
		return fmt.Errorf("idea: %s is %d bytes (limit %d): %w",
			a.Type, a.Size, int64(MaxAttachmentBytes), ErrAttachmentTooLarge)
	}
	if a.Type == AttachmentAudio && a.Duration > MaxVoiceDuration {
		return fmt.Errorf("idea: voice is %s (limit %s): %w",
			a.Duration, MaxVoiceDuration, ErrAttachmentTooLarge)
	}
	return nil
}

// ExtractURLs returns http(s) URLs found in text, in order of
// appearance, without duplicates.
func ExtractURLs(text string) []string {
	var urls []string
	seen := make(map[string]struct{})
	for _, field := range strings.Fields(text) {
		if !strings.HasPrefix(field, "http://") && !strings.HasPrefix(field, "https://") {
			continue
		}
		u := strings.TrimRight(field, ".,;:!?)")
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}
