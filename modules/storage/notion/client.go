package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	// maxResponseSize caps API response bodies at 10 MiB.
	maxResponseSize = 10 * 1024 * 1024

	// maxReadRetries bounds retry attempts for idempotent reads.
	maxReadRetries = 3
)

// Store implements storage.Store against the Notion REST API.
type Store struct {
	config Config
	logger *slog.Logger
	client *http.Client
}

// APIError is an error response from the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	retryAfter time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: %s (status %d): %s", e.Code, e.Status, e.Message)
}

// do sends a JSON request and decodes the response into T. Reads
// (idempotent requests) are retried on 429 and 5xx with exponential
// backoff; writes are never retried, a duplicate page is worse than a
// surfaced error.
func do[T any](ctx context.Context, s *Store, method, path string, payload any, retryable bool) (*T, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("notion: marshal %s: %w", path, err)
		}
	}

	retries := 0
	if retryable {
		retries = maxReadRetries
	}

	for attempt := 0; ; attempt++ {
		data, retry, err := s.send(ctx, method, path, body)
		if err == nil {
			var out T
			if err := json.Unmarshal(data, &out); err != nil {
				return nil, fmt.Errorf("notion: decode %s: %w", path, err)
			}
			return &out, nil
		}
		if !retry || attempt >= retries {
			return nil, err
		}

		wait := backoff(attempt + 1)
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.retryAfter > 0 {
			wait = apiErr.retryAfter
		}
		s.logger.Warn("notion request retrying", "path", path, "attempt", attempt+1, "wait", wait, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

// retryAfter parses a Retry-After header, falling back to the given default.
func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// send performs one HTTP round trip. The bool result reports whether the
// failure is worth retrying.
func (s *Store) send(ctx context.Context, method, path string, body []byte) ([]byte, bool, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.config.BaseURL+path, reader)
	if err != nil {
		return nil, false, fmt.Errorf("notion: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.Token)
	req.Header.Set("Notion-Version", s.config.Version)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("notion: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, true, fmt.Errorf("notion: read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return data, false, nil
	}

	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(data)
	}
	apiErr.Status = resp.StatusCode
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.retryAfter = retryAfter(resp.Header, 0)
	}
	return nil, retry, apiErr
}
