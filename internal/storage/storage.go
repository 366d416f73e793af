// Package storage defines the persistence contract for ideas and the
// category taxonomy. Implementations live under modules/storage.
package storage

import (
	"context"

	"github.com/ideavault/ideavault/internal/idea"
)

// CreateIdeaInput carries the fields needed to persist a new idea.
type CreateIdeaInput struct {
	Title       string
	RawText     string
	Transcript  string
	Attachments []idea.Attachment
	Status      idea.Status
	Source      string
	ChatID      int64
	UserID      int64
}

// UpdateIdeaInput carries a partial update. Nil fields are left
// untouched.
type UpdateIdeaInput struct {
	Status     *idea.Status
	RawText    *string
	Category   *string
	Confidence *float64
	Enrichment *idea.Enrichment
}

// Store persists ideas and the category taxonomy.
type Store interface {
	// CreateIdea persists a new idea and returns it with its ID set.
	CreateIdea(ctx context.Context, in CreateIdeaInput) (*idea.Idea, error)

	// GetIdea returns the idea with the given ID, or
	// idea.ErrNotFound.
	GetIdea(ctx context.Context, id string) (*idea.Idea, error)

	// UpdateIdea applies a partial update to an existing idea.
	UpdateIdea(ctx context.Context, id string, in UpdateIdeaInput) (*idea.Idea, error)

	// ListCategories returns the known taxonomy.
	ListCategories(ctx context.Context) ([]idea.Category, error)

	// AddCategory adds a taxonomy entry. Adding a name that already
	// exists (case-insensitively) returns the existing entry.
	AddCategory(ctx context.Context, name, color string) (idea.Category, error)

	// Stats aggregates counts over stored ideas.
	Stats(ctx context.Context) (*idea.Stats, error)
}
