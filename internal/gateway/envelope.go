package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ideavault/ideavault/internal/idea"
)

// envelope is the uniform JSON wrapper for every API response.
type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:   false,
		Error:     msg,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// writeDomainError maps pipeline sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, idea.ErrValidation), errors.Is(err, idea.ErrAttachmentTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, idea.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, idea.ErrEnrichmentParse):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
