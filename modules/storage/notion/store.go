package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/storage"
)

// Page property names. These match the database schema the integration
// expects; creating the database with different property names is a
// configuration error surfaced on the first write.
const (
	propTitle      = "Idea title"
	propRawText    = "Raw text"
	propTranscript = "Transcript"
	propStatus     = "Status"
	propCategory   = "Category"
	propConfidence = "Confidence"
	propCreated    = "Created"
	propSource     = "Source"
)

// CreateIdea creates a page in the database. Attachments are appended as
// page content rather than properties.
func (s *Store) CreateIdea(ctx context.Context, in storage.CreateIdeaInput) (*idea.Idea, error) {
	now := time.Now().UTC()
	props := map[string]property{
		propTitle:   {Title: toRichText(in.Title)},
		propRawText: {RichText: toRichText(in.RawText)},
		propStatus:  {Select: &selectOption{Name: string(in.Status)}},
		propCreated: {Date: &dateValue{Start: now.Format(time.RFC3339)}},
	}
	if in.Transcript != "" {
		props[propTranscript] = property{RichText: toRichText(in.Transcript)}
	}
	if in.Source != "" {
		props[propSource] = property{Select: &selectOption{Name: in.Source}}
	}

	req := createPageRequest{
		Parent:     parent{DatabaseID: s.config.DatabaseID},
		Properties: props,
		Children:   attachmentBlocks(in.Attachments),
	}

	p, err := do[page](ctx, s, http.MethodPost, "/pages", req, false)
	if err != nil {
		return nil, fmt.Errorf("notion: create idea: %w", err)
	}

	out := pageToIdea(p)
	out.Attachments = in.Attachments
	out.ChatID = in.ChatID
	out.UserID = in.UserID
	return out, nil
}

// GetIdea fetches a page by id.
func (s *Store) GetIdea(ctx context.Context, id string) (*idea.Idea, error) {
	p, err := do[page](ctx, s, http.MethodGet, "/pages/"+id, nil, true)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("notion: page %s: %w", id, idea.ErrNotFound)
		}
		return nil, fmt.Errorf("notion: get idea: %w", err)
	}
	return pageToIdea(p), nil
}

// UpdateIdea patches page properties. An enrichment update also appends
// the brief as page content.
func (s *Store) UpdateIdea(ctx context.Context, id string, in storage.UpdateIdeaInput) (*idea.Idea, error) {
	props := make(map[string]property)
	if in.Status != nil {
		props[propStatus] = property{Select: &selectOption{Name: string(*in.Status)}}
	}
	if in.RawText != nil {
		props[propRawText] = property{RichText: toRichText(*in.RawText)}
	}
	if in.Category != nil {
		props[propCategory] = property{Select: &selectOption{Name: *in.Category}}
	}
	if in.Confidence != nil {
		props[propConfidence] = property{Number: in.Confidence}
	}

	p, err := do[page](ctx, s, http.MethodPatch, "/pages/"+id, updatePageRequest{Properties: props}, false)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, fmt.Errorf("notion: page %s: %w", id, idea.ErrNotFound)
		}
		return nil, fmt.Errorf("notion: update idea: %w", err)
	}

	out := pageToIdea(p)
	if in.Enrichment != nil {
		out.Enrichment = in.Enrichment
		if err := s.appendBrief(ctx, id, in.Enrichment); err != nil {
			// Properties are already saved; losing the brief body is
			// recoverable by re-running enrichment.
			s.logger.Warn("notion: appending enrichment brief failed", "page_id", id, "error", err)
		}
	}
	return out, nil
}

// appendBrief writes the enrichment summary as page blocks.
func (s *Store) appendBrief(ctx context.Context, id string, e *idea.Enrichment) error {
	blocks := []block{
		heading("Market brief"),
		paragraph(e.Summary),
	}
	if e.MarketSizeEstimate != "" {
		blocks = append(blocks, bullet("Market size: "+e.MarketSizeEstimate))
	}
	if e.CAGREstimate != 0 {
		blocks = append(blocks, bullet(fmt.Sprintf("CAGR: %.1f%%", e.CAGREstimate)))
	}
	for _, c := range e.Competitors {
		line := "Competitor: " + c.Name
		if c.OneLine != "" {
			line += " - " + c.OneLine
		}
		blocks = append(blocks, bullet(line))
	}
	for _, m := range e.BusinessModels {
		blocks = append(blocks, bullet("Business model: "+m))
	}
	if e.NextStep != "" {
		blocks = append(blocks, paragraph("Next step: "+e.NextStep))
	}
	blocks = append(blocks, paragraph(e.Disclaimer))

	_, err := do[page](ctx, s, http.MethodPatch, "/blocks/"+id+"/children", appendChildrenRequest{Children: blocks}, false)
	return err
}

// ListCategories reads the select options of the Category property.
func (s *Store) ListCategories(ctx context.Context) ([]idea.Category, error) {
	db, err := do[database](ctx, s, http.MethodGet, "/databases/"+s.config.DatabaseID, nil, true)
	if err != nil {
		return nil, fmt.Errorf("notion: list categories: %w", err)
	}

	prop, ok := db.Properties[propCategory]
	if !ok || prop.Select == nil {
		return nil, nil
	}
	cats := make([]idea.Category, 0, len(prop.Select.Options))
	for _, opt := range prop.Select.Options {
		cats = append(cats, idea.Category{Name: opt.Name, Color: opt.Color})
	}
	return cats, nil
}

// AddCategory appends a select option to the Category property. An
// existing name (any casing) is returned untouched.
func (s *Store) AddCategory(ctx context.Context, name, color string) (idea.Category, error) {
	existing, err := s.ListCategories(ctx)
	if err != nil {
		return idea.Category{}, err
	}
	options := make([]selectOption, 0, len(existing)+1)
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
		options = append(options, selectOption{Name: c.Name, Color: c.Color})
	}
	options = append(options, selectOption{Name: name, Color: color})

	payload := map[string]any{
		"properties": map[string]any{
			propCategory: map[string]any{
				"select": map[string]any{"options": options},
			},
		},
	}
	if _, err := do[database](ctx, s, http.MethodPatch, "/databases/"+s.config.DatabaseID, payload, false); err != nil {
		return idea.Category{}, fmt.Errorf("notion: add category: %w", err)
	}
	return idea.Category{Name: name, Color: color}, nil
}

// Stats queries the whole database and aggregates counts client-side.
func (s *Store) Stats(ctx context.Context) (*idea.Stats, error) {
	stats := &idea.Stats{
		ByStatus:   make(map[idea.Status]int),
		ByCategory: make(map[string]int),
	}

	cursor := ""
	for {
		req := queryRequest{StartCursor: cursor, PageSize: 100}
		resp, err := do[queryResponse](ctx, s, http.MethodPost, "/databases/"+s.config.DatabaseID+"/query", req, true)
		if err != nil {
			return nil, fmt.Errorf("notion: stats query: %w", err)
		}
		for _, p := range resp.Results {
			stats.Total++
			if sel := p.Properties[propStatus].Select; sel != nil {
				stats.ByStatus[idea.Status(sel.Name)]++
			}
			if sel := p.Properties[propCategory].Select; sel != nil && sel.Name != "" {
				stats.ByCategory[sel.Name]++
			}
		}
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return stats, nil
}

func attachmentBlocks(attachments []idea.Attachment) []block {
	if len(attachments) == 0 {
		return nil
	}
	blocks := []block{heading("Attachments")}
	for _, a := range attachments {
		label := string(a.Type)
		if a.Name != "" {
			label += ": " + a.Name
		}
		blocks = append(blocks, bullet(label+" "+a.URL))
	}
	return blocks
}

func pageToIdea(p *page) *idea.Idea {
	out := &idea.Idea{
		ID:        p.ID,
		PageID:    p.ID,
		Title:     plainText(p.Properties[propTitle].Title),
		RawText:   plainText(p.Properties[propRawText].RichText),
		CreatedAt: p.CreatedTime,
		UpdatedAt: p.LastEditedTime,
	}
	out.Transcript = plainText(p.Properties[propTranscript].RichText)
	if sel := p.Properties[propStatus].Select; sel != nil {
		out.Status = idea.Status(sel.Name)
	}
	if sel := p.Properties[propCategory].Select; sel != nil {
		out.Category = sel.Name
	}
	if n := p.Properties[propConfidence].Number; n != nil {
		out.Confidence = *n
	}
	if sel := p.Properties[propSource].Select; sel != nil {
		out.Source = sel.Name
	}
	if d := p.Properties[propCreated].Date; d != nil {
		if t, err := time.Parse(time.RFC3339, d.Start); err == nil {
			out.CreatedAt = t
		}
	}
	return out
}
