package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/lifecycle"
)

// maxBodySize caps API request bodies at 1 MiB.
const maxBodySize = 1 << 20

// --- Request/response shapes ---

type attachmentJSON struct {
	Type     string `json:"type"`
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Duration int    `json:"duration_seconds,omitempty"`
}

type captureRequest struct {
	Text        string           `json:"text"`
	Source      string           `json:"source,omitempty"`
	ChatID      int64            `json:"chat_id,omitempty"`
	UserID      int64            `json:"user_id,omitempty"`
	Attachments []attachmentJSON `json:"attachments,omitempty"`
}

type clarifyRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}

type enrichRequest struct {
	ID   string `json:"id"`
	Text string `json:"text,omitempty"`
}

type addCategoryRequest struct {
	Name string `json:"name"`
}

type ideaJSON struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	RawText    string           `json:"raw_text"`
	Transcript string           `json:"transcript,omitempty"`
	Status     string           `json:"status"`
	Category   string           `json:"category,omitempty"`
	Confidence float64          `json:"confidence,omitempty"`
	Source     string           `json:"source,omitempty"`
	Enrichment *idea.Enrichment `json:"enrichment,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func toIdeaJSON(i *idea.Idea) ideaJSON {
	return ideaJSON{
		ID:         i.ID,
		Title:      i.Title,
		RawText:    i.RawText,
		Transcript: i.Transcript,
		Status:     string(i.Status),
		Category:   i.Category,
		Confidence: i.Confidence,
		Source:     i.Source,
		Enrichment: i.Enrichment,
		CreatedAt:  i.CreatedAt,
		UpdatedAt:  i.UpdatedAt,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// --- Handlers ---

func (g *Gateway) handleCapture() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req captureRequest
		if !decodeBody(w, r, &req) {
			return
		}

		sub := lifecycle.Submission{
			Text:   req.Text,
			Source: req.Source,
			ChatID: req.ChatID,
			UserID: req.UserID,
		}
		if sub.Source == "" {
			sub.Source = "api"
		}
		for _, a := range req.Attachments {
			sub.Attachments = append(sub.Attachments, idea.Attachment{
				Type:     idea.AttachmentType(a.Type),
				URL:      a.URL,
				Name:     a.Name,
				Size:     a.Size,
				Duration: time.Duration(a.Duration) * time.Second,
			})
		}

		res, err := g.svc.Capture(r.Context(), sub)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusCreated, map[string]any{
			"idea":     toIdeaJSON(res.Idea),
			"question": res.Question,
			"next":     res.Next,
		})
	}
}

func (g *Gateway) handleClarify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clarifyRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := g.svc.Clarify(r.Context(), req.ID, lifecycle.ClarifyAction(req.Action), req.Detail)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{
			"idea":     toIdeaJSON(res.Idea),
			"question": res.Question,
			"next":     res.Next,
		})
	}
}

func (g *Gateway) handleEnrich() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrichRequest
		if !decodeBody(w, r, &req) {
			return
		}

		res, err := g.svc.Enrich(r.Context(), req.ID, req.Text)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{
			"idea":       toIdeaJSON(res.Idea),
			"enrichment": res.Enrichment,
			"category":   res.Category,
			"cost_usd":   res.CostUSD,
		})
	}
}

func (g *Gateway) handleGetIdea() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, err := g.svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, toIdeaJSON(i))
	}
}

func (g *Gateway) handleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, costSummary, err := g.svc.Stats(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]any{
			"ideas": stats,
			"costs": costSummary,
		})
	}
}

func (g *Gateway) handleListCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := g.svc.Categories(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if cats == nil {
			cats = []idea.Category{}
		}
		writeData(w, http.StatusOK, cats)
	}
}

func (g *Gateway) handleAddCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCategoryRequest
		if !decodeBody(w, r, &req) {
			return
		}

		cat, err := g.svc.AddCategory(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeData(w, http.StatusCreated, cat)
	}
}
