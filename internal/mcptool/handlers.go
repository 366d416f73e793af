package mcptool

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/lifecycle"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	svc *lifecycle.Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc *lifecycle.Service) *Handlers {
	return &Handlers{svc: svc}
}

// CaptureRequest represents the arguments for idea_capture.
type CaptureRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
}

// CategoriesRequest represents the arguments for idea_categories.
type CategoriesRequest struct {
	Add string `json:"add,omitempty"`
}

// HandleCapture handles the idea_capture tool call.
func (h *Handlers) HandleCapture(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CaptureRequest](req)
	if err != nil {
		return errorResult("INVALID_REQUEST", err.Error()), nil
	}

	source := input.Source
	if source == "" {
		source = "mcp"
	}

	res, err := h.svc.Capture(ctx, lifecycle.Submission{Text: input.Text, Source: source})
	if err != nil {
		return errorResult(errorCode(err), err.Error()), nil
	}

	return successResult(map[string]any{
		"id":       res.Idea.ID,
		"title":    res.Idea.Title,
		"status":   res.Idea.Status,
		"question": res.Question,
		"next":     res.Next,
	})
}

// HandleStats handles the idea_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, spend, err := h.svc.Stats(ctx)
	if err != nil {
		return errorResult(errorCode(err), err.Error()), nil
	}

	return successResult(map[string]any{
		"total":       stats.Total,
		"by_status":   stats.ByStatus,
		"by_category": stats.ByCategory,
		"ai_spend": map[string]any{
			"total_usd": spend.TotalUSD,
			"calls":     spend.Calls,
			"since":     spend.Since,
		},
	})
}

// HandleCategories handles the idea_categories tool call. With an
// "add" argument it creates the category first, then returns the
// full taxonomy either way.
func (h *Handlers) HandleCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CategoriesRequest](req)
	if err != nil {
		return errorResult("INVALID_REQUEST", err.Error()), nil
	}

	if input.Add != "" {
		if _, err := h.svc.AddCategory(ctx, input.Add); err != nil {
			return errorResult(errorCode(err), err.Error()), nil
		}
	}

	cats, err := h.svc.Categories(ctx)
	if err != nil {
		return errorResult(errorCode(err), err.Error()), nil
	}

	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	return successResult(map[string]any{"categories": names})
}

// errorCode maps domain sentinels to stable MCP error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, idea.ErrValidation):
		return "VALIDATION"
	case errors.Is(err, idea.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, idea.ErrStorage):
		return "STORAGE"
	default:
		return "INTERNAL"
	}
}

// errorResult creates an MCP error result with IsError set so clients
// recognize failures properly.
func errorResult(code, message string) *mcp.CallToolResult {
	content, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
