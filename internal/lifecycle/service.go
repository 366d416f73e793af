// Package lifecycle orchestrates the idea pipeline: capture,
// clarification, and enrichment. It owns no transport; channels and
// the HTTP gateway call into it, adapters are injected.
package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ideavault/ideavault/internal/costs"
	"github.com/ideavault/ideavault/internal/events"
	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/provider"
	"github.com/ideavault/ideavault/internal/storage"
)

// Service runs the idea pipeline. All dependencies are injected;
// construct with NewService.
type Service struct {
	store      storage.Store
	completer  provider.Completer
	transcrib  provider.Transcriber
	downloader provider.Downloader
	ledger     *costs.Ledger
	hub        *events.Hub
	logger     *slog.Logger
	tracer     trace.Tracer
	now        func() time.Time

	skipClarification bool
}

// Options configures optional Service behavior.
type Options struct {
	// SkipClarification captures ideas straight into
	// ReadyForEnrichment instead of asking a clarifying question.
	SkipClarification bool

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// NewService builds a Service. Store and Completer are required;
// Transcriber and Downloader may be nil when voice capture is not
// configured.
func NewService(store storage.Store, completer provider.Completer, transcriber provider.Transcriber, downloader provider.Downloader, ledger *costs.Ledger, hub *events.Hub, logger *slog.Logger, opts Options) *Service {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:             store,
		completer:         completer,
		transcrib:         transcriber,
		downloader:        downloader,
		ledger:            ledger,
		hub:               hub,
		logger:            logger,
		tracer:            otel.Tracer("ideavault/lifecycle"),
		now:               now,
		skipClarification: opts.SkipClarification,
	}
}

// Submission is an inbound idea from any channel.
type Submission struct {
	Text        string
	Attachments []idea.Attachment
	Source      string
	ChatID      int64
	UserID      int64
}

// NextStep tells the caller what the pipeline expects next.
type NextStep string

const (
	StepClarify NextStep = "clarify"
	StepEnrich  NextStep = "enrich"
)

// CaptureResult reports a successful capture.
type CaptureResult struct {
	Idea     *idea.Idea
	Question string // clarifying question, when one was generated
	Next     NextStep
}

// Capture validates a submission, transcribes voice if present,
// persists the idea, and either generates a clarifying question or
// marks it ready for enrichment. A transcription failure is fatal and
// leaves nothing persisted.
func (s *Service) Capture(ctx context.Context, sub Submission) (*CaptureResult, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.capture")
	defer span.End()

	text := idea.Sanitize(sub.Text)
	if text == "" && len(sub.Attachments) == 0 {
		return nil, s.fail(span, fmt.Errorf("lifecycle: nothing to capture: %w", idea.ErrValidation))
	}

	attachments := sub.Attachments
	for _, a := range attachments {
		if err := idea.CheckAttachment(a); err != nil {
			return nil, s.fail(span, err)
		}
	}

	var transcript string
	if audio := firstAudio(attachments); audio != nil {
		var err error
		transcript, err = s.transcribe(ctx, *audio)
		if err != nil {
			return nil, s.fail(span, err)
		}
		if text == "" {
			text = idea.Sanitize(transcript)
		}
	}

	if err := idea.ValidateText(text); err != nil {
		return nil, s.fail(span, err)
	}

	// Secondary URLs in the text become attachments of their own.
	for _, u := range idea.ExtractURLs(text) {
		attachments = append(attachments, idea.Attachment{
			Type: idea.AttachmentURL,
			URL:  u,
			Name: path.Base(u),
		})
	}

	title := s.generateTitle(ctx, text)

	created, err := s.store.CreateIdea(ctx, storage.CreateIdeaInput{
		Title:       title,
		RawText:     text,
		Transcript:  transcript,
		Attachments: attachments,
		Status:      idea.StatusCaptured,
		Source:      sub.Source,
		ChatID:      sub.ChatID,
		UserID:      sub.UserID,
	})
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("lifecycle: persisting idea: %v: %w", err, idea.ErrStorage))
	}
	created.Attachments = attachments
	ideasCaptured.Inc()
	s.publish(events.Event{Type: events.TypeCaptured, IdeaID: created.ID, Status: string(created.Status)})

	res := &CaptureResult{Idea: created}
	if s.skipClarification {
		status := idea.StatusReadyForEnrichment
		updated, err := s.store.UpdateIdea(ctx, created.ID, storage.UpdateIdeaInput{Status: &status})
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("lifecycle: advancing idea %s: %v: %w", created.ID, err, idea.ErrStorage))
		}
		res.Idea = updated
		res.Idea.Attachments = attachments
		res.Next = StepEnrich
		return res, nil
	}

	res.Next = StepClarify
	bestEffort(s.logger, "clarifying question", func() error {
		q, err := s.generateQuestion(ctx, text)
		if err != nil {
			return err
		}
		status := idea.StatusAwaitingClarification
		if _, err := s.store.UpdateIdea(ctx, created.ID, storage.UpdateIdeaInput{Status: &status}); err != nil {
			return err
		}
		res.Idea.Status = status
		res.Question = q
		return nil
	})
	return res, nil
}

// ClarifyAction selects what Clarify should do.
type ClarifyAction string

const (
	ActionAddDetail        ClarifyAction = "add_detail"
	ActionGenerateQuestion ClarifyAction = "generate_question"
	ActionConfirm          ClarifyAction = "confirm"
)

// ClarifyResult reports the outcome of a Clarify call.
type ClarifyResult struct {
	Idea     *idea.Idea
	Question string
	Next     NextStep
}

// Clarify advances an idea through the clarification stage.
// add_detail appends the user's answer and moves to Clarified;
// generate_question produces a fresh question without mutating the
// idea; confirm moves to ReadyForEnrichment.
func (s *Service) Clarify(ctx context.Context, id string, action ClarifyAction, detail string) (*ClarifyResult, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.clarify")
	defer span.End()

	current, err := s.store.GetIdea(ctx, id)
	if err != nil {
		return nil, s.fail(span, classifyStoreErr(id, err))
	}

	switch action {
	case ActionAddDetail:
		if !current.Status.CanAdvance(idea.StatusClarified) {
			return nil, s.fail(span, fmt.Errorf("lifecycle: idea %s is %s: %w", id, current.Status, idea.ErrValidation))
		}
		detail = idea.Sanitize(detail)
		if detail == "" {
			return nil, s.fail(span, fmt.Errorf("lifecycle: empty detail: %w", idea.ErrValidation))
		}
		text := current.RawText + "\n\nAdditional details:\n" + detail
		if len([]rune(text)) > idea.MaxTextLen {
			text = string([]rune(text)[:idea.MaxTextLen])
		}
		status := idea.StatusClarified
		updated, err := s.store.UpdateIdea(ctx, id, storage.UpdateIdeaInput{RawText: &text, Status: &status})
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("lifecycle: updating idea %s: %v: %w", id, err, idea.ErrStorage))
		}
		s.publish(events.Event{Type: events.TypeClarified, IdeaID: id, Status: string(status)})
		return &ClarifyResult{Idea: updated, Next: StepEnrich}, nil

	case ActionGenerateQuestion:
		q, err := s.generateQuestion(ctx, current.RawText)
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("lifecycle: generating question: %v: %w", err, idea.ErrEnrichment))
		}
		return &ClarifyResult{Idea: current, Question: q, Next: StepClarify}, nil

	case ActionConfirm:
		if !current.Status.CanAdvance(idea.StatusReadyForEnrichment) {
			return nil, s.fail(span, fmt.Errorf("lifecycle: idea %s is %s: %w", id, current.Status, idea.ErrValidation))
		}
		status := idea.StatusReadyForEnrichment
		updated, err := s.store.UpdateIdea(ctx, id, storage.UpdateIdeaInput{Status: &status})
		if err != nil {
			return nil, s.fail(span, fmt.Errorf("lifecycle: updating idea %s: %v: %w", id, err, idea.ErrStorage))
		}
		return &ClarifyResult{Idea: updated, Next: StepEnrich}, nil

	default:
		return nil, s.fail(span, fmt.Errorf("lifecycle: unknown clarify action %q: %w", action, idea.ErrValidation))
	}
}

// EnrichResult reports a completed enrichment.
type EnrichResult struct {
	Idea       *idea.Idea
	Enrichment *idea.Enrichment
	Category   string
	CostUSD    float64
}

// Enrich runs the market analysis for an idea. text overrides the
// stored raw text when non-empty. A successful AI call is never
// rolled back: when persistence fails afterwards the result is
// returned alongside the storage error.
func (s *Service) Enrich(ctx context.Context, id, text string) (*EnrichResult, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.enrich")
	defer span.End()

	current, err := s.store.GetIdea(ctx, id)
	if err != nil {
		return nil, s.fail(span, classifyStoreErr(id, err))
	}
	if current.Status == idea.StatusEnriched {
		return nil, s.fail(span, fmt.Errorf("lifecycle: idea %s is already enriched: %w", id, idea.ErrValidation))
	}
	if text == "" {
		text = current.RawText
	}

	var known []idea.Category
	bestEffort(s.logger, "taxonomy prefetch", func() error {
		var err error
		known, err = s.store.ListCategories(ctx)
		return err
	})

	resp, err := s.completer.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: enrichmentSystemPrompt(known)},
			{Role: provider.RoleUser, Content: text},
		},
		Temperature: 0.4,
		MaxTokens:   1200,
		JSONMode:    true,
	})
	if err != nil {
		pipelineErrors.WithLabelValues("enrichment").Inc()
		return nil, s.fail(span, fmt.Errorf("lifecycle: enriching idea %s: %v: %w", id, err, idea.ErrEnrichment))
	}
	cost := costs.EstimateCompletion(resp.Usage.TotalTokens)
	s.recordCost(costs.KindCompletion, cost)

	enrichment, err := idea.ParseEnrichment([]byte(resp.Content), s.now())
	if err != nil {
		pipelineErrors.WithLabelValues("enrichment_parse").Inc()
		return nil, s.fail(span, err)
	}

	category, confidence := s.reconcileCategory(ctx, enrichment.Category, known)

	status := idea.StatusEnriched
	in := storage.UpdateIdeaInput{Status: &status, Enrichment: enrichment}
	if category != "" {
		in.Category = &category
		in.Confidence = &confidence
	}
	res := &EnrichResult{Idea: current, Enrichment: enrichment, Category: category, CostUSD: cost}
	updated, err := s.store.UpdateIdea(ctx, id, in)
	if err != nil {
		pipelineErrors.WithLabelValues("storage").Inc()
		return res, s.fail(span, fmt.Errorf("lifecycle: persisting enrichment for %s: %v: %w", id, err, idea.ErrStorage))
	}
	res.Idea = updated
	ideasEnriched.Inc()
	s.publish(events.Event{Type: events.TypeEnriched, IdeaID: id, Status: string(status)})
	return res, nil
}

// Get returns a stored idea by id.
func (s *Service) Get(ctx context.Context, id string) (*idea.Idea, error) {
	current, err := s.store.GetIdea(ctx, id)
	if err != nil {
		return nil, classifyStoreErr(id, err)
	}
	return current, nil
}

// Stats returns aggregate idea counts and the current cost summary.
func (s *Service) Stats(ctx context.Context) (*idea.Stats, costs.Summary, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, costs.Summary{}, fmt.Errorf("lifecycle: reading stats: %v: %w", err, idea.ErrStorage)
	}
	return stats, s.ledger.Summary(), nil
}

// Categories returns the known taxonomy.
func (s *Service) Categories(ctx context.Context) ([]idea.Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("lifecycle: listing categories: %v: %w", err, idea.ErrStorage)
	}
	return cats, nil
}

// AddCategory adds a taxonomy entry with a palette color.
func (s *Service) AddCategory(ctx context.Context, name string) (idea.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return idea.Category{}, fmt.Errorf("lifecycle: empty category name: %w", idea.ErrValidation)
	}
	cat, err := s.store.AddCategory(ctx, name, randomColor())
	if err != nil {
		return idea.Category{}, fmt.Errorf("lifecycle: adding category %q: %v: %w", name, err, idea.ErrStorage)
	}
	return cat, nil
}

// Ledger exposes the cost ledger for the reset job and stats surfaces.
func (s *Service) Ledger() *costs.Ledger { return s.ledger }

// ResetCosts clears the ledger and announces it.
func (s *Service) ResetCosts() {
	s.ledger.Reset()
	s.publish(events.Event{Type: events.TypeCostReset})
	s.logger.Info("cost ledger reset")
}

func (s *Service) transcribe(ctx context.Context, audio idea.Attachment) (string, error) {
	if s.transcrib == nil || s.downloader == nil {
		return "", fmt.Errorf("lifecycle: voice capture not configured: %w", idea.ErrValidation)
	}
	data, err := s.downloader.DownloadFile(ctx, audio.URL, idea.MaxAttachmentBytes)
	if err != nil {
		if errors.Is(err, provider.ErrFileTooLarge) {
			return "", fmt.Errorf("lifecycle: downloading voice: %w", idea.ErrAttachmentTooLarge)
		}
		pipelineErrors.WithLabelValues("transcription").Inc()
		return "", fmt.Errorf("lifecycle: downloading voice: %v: %w", err, idea.ErrTranscription)
	}
	name := audio.Name
	if name == "" {
		name = "voice.ogg"
	}
	tr, err := s.transcrib.Transcribe(ctx, name, bytes.NewReader(data))
	if err != nil {
		pipelineErrors.WithLabelValues("transcription").Inc()
		return "", fmt.Errorf("lifecycle: transcribing voice: %v: %w", err, idea.ErrTranscription)
	}
	duration := time.Duration(tr.Duration * float64(time.Second))
	if duration <= 0 {
		duration = audio.Duration
	}
	s.recordCost(costs.KindTranscription, costs.EstimateTranscription(duration))
	return tr.Text, nil
}

// generateTitle asks the model for a short title and falls back to
// first-line truncation when the call fails.
func (s *Service) generateTitle(ctx context.Context, text string) string {
	title := idea.DeriveTitle(text)
	bestEffort(s.logger, "title generation", func() error {
		resp, err := s.completer.Complete(ctx, provider.CompletionRequest{
			Messages: []provider.Message{
				{Role: provider.RoleSystem, Content: titleSystemPrompt},
				{Role: provider.RoleUser, Content: text},
			},
			Temperature: 0.3,
			MaxTokens:   30,
		})
		if err != nil {
			return err
		}
		s.recordCost(costs.KindCompletion, costs.EstimateCompletion(resp.Usage.TotalTokens))
		if t := idea.DeriveTitle(resp.Content); t != "" && t != "Untitled idea" {
			title = t
		}
		return nil
	})
	return title
}

func (s *Service) generateQuestion(ctx context.Context, text string) (string, error) {
	resp, err := s.completer.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: clarifySystemPrompt},
			{Role: provider.RoleUser, Content: text},
		},
		Temperature: 0.7,
		MaxTokens:   120,
	})
	if err != nil {
		return "", err
	}
	s.recordCost(costs.KindCompletion, costs.EstimateCompletion(resp.Usage.TotalTokens))
	return strings.TrimSpace(resp.Content), nil
}

func (s *Service) recordCost(kind costs.Kind, usd float64) {
	s.ledger.Record(kind, usd)
	costRecorded.WithLabelValues(string(kind)).Add(usd)
}

func (s *Service) publish(ev events.Event) {
	if s.hub != nil {
		s.hub.Publish(ev)
	}
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	s.publishFailure(err)
	return err
}

func (s *Service) publishFailure(err error) {
	if s.hub != nil && !errors.Is(err, idea.ErrValidation) {
		s.hub.Publish(events.Event{Type: events.TypeFailed, Message: err.Error()})
	}
}

func classifyStoreErr(id string, err error) error {
	if errors.Is(err, idea.ErrNotFound) {
		return fmt.Errorf("lifecycle: idea %s: %w", id, idea.ErrNotFound)
	}
	return fmt.Errorf("lifecycle: loading idea %s: %v: %w", id, err, idea.ErrStorage)
}

func firstAudio(attachments []idea.Attachment) *idea.Attachment {
	for i := range attachments {
		if attachments[i].Type == idea.AttachmentAudio {
			return &attachments[i]
		}
	}
	return nil
}
