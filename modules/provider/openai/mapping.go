package openai

import "github.com/ideavault/ideavault/internal/provider"

// --- OpenAI API request/response types (unexported, serialization only) ---

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason *string     `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type transcriptionResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// --- Converter functions ---

// toMessages converts provider messages to OpenAI API messages.
func toMessages(msgs []provider.Message) []chatMessage {
	out := make([]chatMessage, len(msgs))
	for i, m := range msgs {
		out[i] = chatMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return out
}

// fromResponse converts an OpenAI API response to a provider CompletionResponse.
func fromResponse(resp *chatResponse) *provider.CompletionResponse {
	cr := &provider.CompletionResponse{Model: resp.Model}
	if len(resp.Choices) > 0 {
		cr.Content = resp.Choices[0].Message.Content
	}
	cr.Usage = provider.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	return cr
}
