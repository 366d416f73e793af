// Package provider defines the model-provider contracts used by the
// idea pipeline: chat completion, audio transcription, and file
// download. Concrete implementations live in separate packages
// (e.g., provider.openai) and typically also implement core.Module
// for lifecycle management.
package provider

import (
	"context"
	"io"
)

// Completer produces chat completions.
type Completer interface {
	// Complete sends a completion request and returns the full
	// response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// Transcriber converts audio to text. The reader is consumed fully;
// callers bound its size before handing it over.
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*Transcription, error)
}

// Downloader fetches attachment bytes by URL, enforcing a byte
// limit. ErrFileTooLarge is returned when the file exceeds the limit.
type Downloader interface {
	DownloadFile(ctx context.Context, url string, limit int64) ([]byte, error)
}
