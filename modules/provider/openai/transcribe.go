package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ideavault/ideavault/internal/provider"
)

// Transcribe implements provider.Transcriber by uploading audio to the
// Whisper transcription endpoint.
func (p *Provider) Transcribe(ctx context.Context, filename string, audio io.Reader) (*provider.Transcription, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}
	if err := w.WriteField("model", p.config.TranscribeModel); err != nil {
		return nil, fmt.Errorf("write model field: %w", err)
	}
	// verbose_json includes the audio duration in the response.
	if err := w.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("write format field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/audio/transcriptions", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, mapConnectionError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, mapHTTPError(resp.StatusCode, body)
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &provider.Transcription{Text: tr.Text, Duration: tr.Duration}, nil
}
