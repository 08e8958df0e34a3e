// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"autopublicador/internal/models"
)

const contentColumns = `id, title, body, keyword_id, keywords, meta_description,
       status, template_theme, published_at, created_at, updated_at`

// ContentStore handles all article database operations. Status changes are
// gated by the editorial transition table in models.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

func scanContent(row interface{ Scan(...any) error }) (*models.Content, error) {
	c := &models.Content{}
	err := row.Scan(
		&c.ID, &c.Title, &c.Body, &c.KeywordID, &c.Keywords, &c.MetaDescription,
		&c.Status, &c.TemplateTheme, &c.PublishedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Create inserts a new article and returns it with the generated ID.
func (s *ContentStore) Create(c *models.Content) (*models.Content, error) {
	if c.Status == "" {
		c.Status = models.ContentStatusDraft
	}
	if c.TemplateTheme == "" {
		c.TemplateTheme = "default"
	}
	// If publishing directly, set the published_at timestamp.
	if c.Status == models.ContentStatusPublished && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}

	created, err := scanContent(s.db.QueryRow(`
		INSERT INTO content (title, body, keyword_id, keywords, meta_description,
		                     status, template_theme, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+contentColumns,
		c.Title, c.Body, c.KeywordID, c.Keywords, c.MetaDescription,
		c.Status, c.TemplateTheme, c.PublishedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return created, nil
}

// FindByID retrieves an article by ID. Returns nil if not found.
func (s *ContentStore) FindByID(id int64) (*models.Content, error) {
	c, err := scanContent(s.db.QueryRow(
		`SELECT `+contentColumns+` FROM content WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find content by id: %w", err)
	}
	return c, nil
}

// ContentFilter narrows List results. Zero values mean "no filter".
type ContentFilter struct {
	Status    models.ContentStatus
	KeywordID int64
	Limit     int
	Offset    int
}

// List returns articles matching the filter, newest first.
func (s *ContentStore) List(f ContentFilter) ([]models.Content, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.KeywordID > 0 {
		args = append(args, f.KeywordID)
		conds = append(conds, fmt.Sprintf("keyword_id = $%d", len(args)))
	}

	query := `SELECT ` + contentColumns + ` FROM content`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var items []models.Content
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// ContentPatch carries the optional fields of an update. Nil pointers leave
// the column untouched.
type ContentPatch struct {
	Title           *string
	Body            *string
	Keywords        *string
	MetaDescription *string
	Status          *models.ContentStatus
	TemplateTheme   *string
}

// Update applies a partial update under a row lock. A requested status
// change must be legal per the editorial transition table or the whole
// update is rejected with ErrIllegalTransition. Entering published stamps
// published_at; leaving it clears the stamp.
func (s *ContentStore) Update(id int64, p ContentPatch) (*models.Content, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("update content: begin: %w", err)
	}
	defer tx.Rollback()

	c, err := scanContent(tx.QueryRow(
		`SELECT `+contentColumns+` FROM content WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update content: select: %w", err)
	}

	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Body != nil {
		c.Body = *p.Body
	}
	if p.Keywords != nil {
		c.Keywords = p.Keywords
	}
	if p.MetaDescription != nil {
		c.MetaDescription = *p.MetaDescription
	}
	if p.TemplateTheme != nil {
		c.TemplateTheme = *p.TemplateTheme
	}
	if p.Status != nil && *p.Status != c.Status {
		if !models.CanTransition(c.Status, *p.Status) {
			return nil, ErrIllegalTransition
		}
		c.Status = *p.Status
		if c.Status == models.ContentStatusPublished {
			now := time.Now()
			c.PublishedAt = &now
		} else {
			c.PublishedAt = nil
		}
	}

	updated, err := scanContent(tx.QueryRow(`
		UPDATE content
		SET title = $1, body = $2, keywords = $3, meta_description = $4,
		    status = $5, template_theme = $6, published_at = $7, updated_at = now()
		WHERE id = $8
		RETURNING `+contentColumns,
		c.Title, c.Body, c.Keywords, c.MetaDescription,
		c.Status, c.TemplateTheme, c.PublishedAt, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update content: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update content: commit: %w", err)
	}
	return updated, nil
}

// Delete removes an article permanently. History rows referencing it keep
// their post_id and simply dangle.
func (s *ContentStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete content: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
