// Package idea defines the domain model for captured ideas: the idea
// record itself, its lifecycle status, attachments, category
// suggestions, and enrichment results.
package idea

import "time"

// Attachment size and duration bounds enforced before any download.
const (
	MaxAttachmentBytes = 20 << 20 // 20 MiB
	MaxVoiceDuration   = 30 * time.Second
)

// AttachmentType classifies what an attachment points at.
type AttachmentType string

const (
	AttachmentAudio    AttachmentType = "audio"
	AttachmentImage    AttachmentType = "image"
	AttachmentDocument AttachmentType = "document"
	AttachmentURL      AttachmentType = "url"
)

// Attachment references supporting material for an idea. URL is
// always set; the source channel resolves its file identifiers to
// URLs before the attachment reaches the pipeline.
type Attachment struct {
	Type     AttachmentType
	URL      string
	Name     string
	Size     int64
	Duration time.Duration // audio only
}

// Idea is a captured idea at any point of its lifecycle.
type Idea struct {
	ID          string
	Title       string
	RawText     string
	Transcript  string
	Attachments []Attachment
	Status      Status
	Category    string
	Confidence  float64
	Source      string
	ChatID      int64
	UserID      int64
	PageID      string // external storage page, set after persistence
	Enrichment  *Enrichment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category is a known taxonomy entry with its display color.
type Category struct {
	Name  string
	Color string
}

// CategorySuggestion is a model-proposed category with confidence and
// reasoning. Confidence is clamped to [0, 1] on construction.
type CategorySuggestion struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Clamp bounds the suggestion's confidence to [0, 1].
func (s *CategorySuggestion) Clamp() {
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
}

// ConfidenceThreshold is the minimum confidence required before a
// suggested category is applied to an idea.
const ConfidenceThreshold = 0.7

// Stats is an aggregate view over stored ideas.
type Stats struct {
	Total      int
	ByStatus   map[Status]int
	ByCategory map[string]int
}
