package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/ideavault/ideavault/internal/provider"
)

// errAuth indicates an authentication or authorization failure.
var errAuth = errors.New("openai: authentication failed")

// mapHTTPError converts a non-200 API response into a provider error.
func mapHTTPError(status int, body []byte) error {
	var apiErr apiError
	msg := string(body)
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		msg = apiErr.Error.Message
	}

	switch {
	case status == 429:
		return fmt.Errorf("%w: %s", provider.ErrRateLimit, msg)
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %s", errAuth, msg)
	case status == 400 && strings.Contains(msg, "context_length"):
		return fmt.Errorf("%w: %s", provider.ErrContextLength, msg)
	case status >= 500:
		return fmt.Errorf("%w: status %d: %s", provider.ErrProviderDown, status, msg)
	default:
		return fmt.Errorf("openai: unexpected status %d: %s", status, msg)
	}
}

// mapConnectionError converts transport-level failures into provider errors.
// Context cancellation and deadline errors pass through unchanged.
func mapConnectionError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", provider.ErrProviderDown, err)
	}
	return fmt.Errorf("openai: request failed: %w", err)
}
