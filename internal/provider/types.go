package provider

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest asks for a chat completion. When JSONMode is set,
// the provider constrains the output to a single JSON object.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
	JSONMode    bool
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the provider's answer to a CompletionRequest.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Transcription is the result of a speech-to-text call.
type Transcription struct {
	Text     string
	Duration float64 // seconds, as reported by the provider
}
