package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault/internal/idea"
	"github.com/ideavault/ideavault/internal/storage"
)

const ideaColumns = `id, title, raw_text, transcript, attachments, status, category,
	confidence, source, chat_id, user_id, enrichment, created_at, updated_at`

// CreateIdea persists a new idea with a generated UUID.
func (s *ideaStore) CreateIdea(ctx context.Context, in storage.CreateIdeaInput) (*idea.Idea, error) {
	attachJSON, err := json.Marshal(in.Attachments)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marshal attachments: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, title, raw_text, transcript, attachments, status,
			source, chat_id, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, in.Title, in.RawText, in.Transcript, string(attachJSON), string(in.Status),
		in.Source, in.ChatID, in.UserID, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: create idea: %w", err)
	}

	return s.GetIdea(ctx, id)
}

// GetIdea returns the idea with the given ID, or idea.ErrNotFound.
func (s *ideaStore) GetIdea(ctx context.Context, id string) (*idea.Idea, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+ideaColumns+" FROM ideas WHERE id = ?", id)
	out, err := scanIdea(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlite: idea %s: %w", id, idea.ErrNotFound)
	}
	return out, err
}

// UpdateIdea applies a partial update. Nil input fields are left untouched.
func (s *ideaStore) UpdateIdea(ctx context.Context, id string, in storage.UpdateIdeaInput) (*idea.Idea, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339Nano)}

	if in.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*in.Status))
	}
	if in.RawText != nil {
		sets = append(sets, "raw_text = ?")
		args = append(args, *in.RawText)
	}
	if in.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *in.Category)
	}
	if in.Confidence != nil {
		sets = append(sets, "confidence = ?")
		args = append(args, *in.Confidence)
	}
	if in.Enrichment != nil {
		enrichJSON, err := json.Marshal(in.Enrichment)
		if err != nil {
			return nil, fmt.Errorf("sqlite: marshal enrichment: %w", err)
		}
		sets = append(sets, "enrichment = ?")
		args = append(args, string(enrichJSON))
	}

	query := "UPDATE ideas SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update idea: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("sqlite: idea %s: %w", id, idea.ErrNotFound)
	}

	return s.GetIdea(ctx, id)
}

// ListCategories returns the taxonomy ordered by name.
func (s *ideaStore) ListCategories(ctx context.Context) ([]idea.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name, color FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("sqlite: list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cats []idea.Category
	for rows.Next() {
		var c idea.Category
		if err := rows.Scan(&c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("sqlite: scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: list categories rows: %w", err)
	}
	return cats, nil
}

// AddCategory inserts a taxonomy entry. The UNIQUE COLLATE NOCASE
// constraint makes duplicate names (in any casing) a no-op that returns
// the stored entry.
func (s *ideaStore) AddCategory(ctx context.Context, name, color string) (idea.Category, error) {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (name, color) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		name, color,
	)
	if err != nil {
		return idea.Category{}, fmt.Errorf("sqlite: add category: %w", err)
	}

	var c idea.Category
	err = s.db.QueryRowContext(ctx,
		"SELECT name, color FROM categories WHERE name = ? COLLATE NOCASE", name,
	).Scan(&c.Name, &c.Color)
	if err != nil {
		return idea.Category{}, fmt.Errorf("sqlite: read category: %w", err)
	}
	return c, nil
}

// Stats aggregates idea counts by status and category.
func (s *ideaStore) Stats(ctx context.Context) (*idea.Stats, error) {
	stats := &idea.Stats{
		ByStatus:   make(map[idea.Status]int),
		ByCategory: make(map[string]int),
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM ideas GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("sqlite: stats by status: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scan status count: %w", err)
		}
		stats.ByStatus[idea.Status(status)] = n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: stats rows: %w", err)
	}

	catRows, err := s.db.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM ideas WHERE category != '' GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("sqlite: stats by category: %w", err)
	}
	defer func() { _ = catRows.Close() }()
	for catRows.Next() {
		var cat string
		var n int
		if err := catRows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("sqlite: scan category count: %w", err)
		}
		stats.ByCategory[cat] = n
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: stats category rows: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (*idea.Idea, error) {
	var (
		out          idea.Idea
		status       string
		attachJSON   string
		enrichJSON   string
		createdAtStr string
		updatedAtStr string
	)

	err := row.Scan(&out.ID, &out.Title, &out.RawText, &out.Transcript, &attachJSON,
		&status, &out.Category, &out.Confidence, &out.Source, &out.ChatID, &out.UserID,
		&enrichJSON, &createdAtStr, &updatedAtStr)
	if err != nil {
		return nil, err
	}
	out.Status = idea.Status(status)

	if attachJSON != "" && attachJSON != "[]" && attachJSON != "null" {
		if err := json.Unmarshal([]byte(attachJSON), &out.Attachments); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal attachments: %w", err)
		}
	}
	if enrichJSON != "" {
		var e idea.Enrichment
		if err := json.Unmarshal([]byte(enrichJSON), &e); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal enrichment: %w", err)
		}
		out.Enrichment = &e
	}

	if out.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAtStr); err != nil {
		return nil, fmt.Errorf("sqlite: parse created_at %q: %w", createdAtStr, err)
	}
	if out.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAtStr); err != nil {
		return nil, fmt.Errorf("sqlite: parse updated_at %q: %w", updatedAtStr, err)
	}

	return &out, nil
}
