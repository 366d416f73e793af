package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ideavault/ideavault/internal/provider"
)

// maxResponseSize caps API response bodies at 10 MB.
const maxResponseSize = 10 * 1024 * 1024

// Complete implements provider.Completer.
func (p *Provider) Complete(ctx context.Context, req provider.CompletionRequest) (*provider.CompletionResponse, error) {
	payload := p.buildChatRequest(req)

	body, status, err := p.doPost(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, mapHTTPError(status, body)
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return fromResponse(&resp), nil
}

func (p *Provider) buildChatRequest(req provider.CompletionRequest) chatRequest {
	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	cr := chatRequest{
		Model:     model,
		Messages:  toMessages(req.Messages),
		MaxTokens: req.MaxTokens,
	}
	if cr.MaxTokens == 0 {
		cr.MaxTokens = p.config.MaxTokens
	}
	if req.Temperature != 0 {
		t := req.Temperature
		cr.Temperature = &t
	} else if p.config.Temperature != nil {
		cr.Temperature = p.config.Temperature
	}
	if req.JSONMode {
		cr.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return cr
}

// doPost sends a JSON POST and returns the response body and status code.
// Transport-level failures are mapped to provider sentinels.
func (p *Provider) doPost(ctx context.Context, path string, payload any) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, 0, mapConnectionError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
