package idea

import "errors"

// Sentinel errors classifying failures across the idea pipeline.
// Callers match with errors.Is to decide retry and messaging behavior.
var (
	// ErrValidation marks input rejected before any upstream call.
	ErrValidation = errors.New("invalid input")

	// ErrTranscription marks a failed speech-to-text call. No idea
	// record is persisted when transcription fails.
	ErrTranscription = errors.New("transcription failed")

	// ErrEnrichment marks a failed enrichment completion call.
	ErrEnrichment = errors.New("enrichment failed")

	// ErrStorage marks a failed persistence call to the idea store.
	ErrStorage = errors.New("storage failed")

	// ErrAttachmentTooLarge marks an attachment over the size or
	// duration bound, detected before download.
	ErrAttachmentTooLarge = errors.New("attachment too large")

	// ErrEnrichmentParse marks an enrichment response that could not
	// be decoded into the expected structure.
	ErrEnrichmentParse = errors.New("unparseable enrichment response")

	// ErrNotFound marks a lookup for an idea that does not exist.
	ErrNotFound = errors.New("idea not found")
)
