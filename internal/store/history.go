// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"autopublicador/internal/models"
)

const historyColumns = `id, keyword_id, prompt, content_type, ai_model, status,
       result_data, error_message, generation_time_ms, tokens_used, post_id, created_at`

// HistoryStore records generation attempts. The table is append-only: rows
// open as pending and are finished exactly once into completed or failed.
type HistoryStore struct {
	db *sql.DB
}

// NewHistoryStore creates a new HistoryStore with the given database connection.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func scanHistory(row interface{ Scan(...any) error }) (*models.GenerationHistory, error) {
	h := &models.GenerationHistory{}
	var result []byte
	err := row.Scan(
		&h.ID, &h.KeywordID, &h.Prompt, &h.ContentType, &h.AIModel, &h.Status,
		&result, &h.ErrorMessage, &h.GenerationTimeMS, &h.TokensUsed,
		&h.PostID, &h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	h.ResultData = result
	return h, nil
}

// Begin opens a pending history row for one generation attempt and returns
// its ID.
func (s *HistoryStore) Begin(keywordID *int64, prompt string, contentType models.GenerationContentType, aiModel string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO generation_history (keyword_id, prompt, content_type, ai_model, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id
	`, keywordID, prompt, contentType, aiModel).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("begin history: %w", err)
	}
	return id, nil
}

// finish settles a pending row. The status guard in the WHERE clause is what
// makes history rows append-only.
func (s *HistoryStore) finish(id int64, set string, args ...any) error {
	res, err := s.db.Exec(`
		UPDATE generation_history SET `+set+`
		WHERE id = $1 AND status = 'pending'
	`, append([]any{id}, args...)...)
	if err != nil {
		return fmt.Errorf("finish history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish history: rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := s.db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM generation_history WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("finish history: exists check: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrAlreadyTerminal
	}
	return nil
}

// FinishCompleted settles an attempt as successful, recording the result
// payload, the article it produced, token usage and elapsed time.
func (s *HistoryStore) FinishCompleted(id int64, resultData json.RawMessage, postID *int64, tokensUsed *int, elapsedMS int64) error {
	if resultData == nil {
		resultData = json.RawMessage(`{}`)
	}
	return s.finish(id,
		`status = 'completed', result_data = $2, post_id = $3, tokens_used = $4, generation_time_ms = $5`,
		[]byte(resultData), postID, tokensUsed, elapsedMS)
}

// FinishFailed settles an attempt as failed with the error message and
// elapsed time.
func (s *HistoryStore) FinishFailed(id int64, errMsg string, elapsedMS int64) error {
	return s.finish(id,
		`status = 'failed', error_message = $2, generation_time_ms = $3`,
		errMsg, elapsedMS)
}

// FindByID retrieves a history row by ID. Returns nil if not found.
func (s *HistoryStore) FindByID(id int64) (*models.GenerationHistory, error) {
	h, err := scanHistory(s.db.QueryRow(
		`SELECT `+historyColumns+` FROM generation_history WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find history by id: %w", err)
	}
	return h, nil
}

// HistoryFilter narrows List results. Zero values mean "no filter".
type HistoryFilter struct {
	KeywordID int64
	PostID    int64
	Limit     int
	Offset    int
}

// List returns generation attempts matching the filter, newest first.
func (s *HistoryStore) List(f HistoryFilter) ([]models.GenerationHistory, error) {
	var (
		conds []string
		args  []any
	)
	if f.KeywordID > 0 {
		args = append(args, f.KeywordID)
		conds = append(conds, fmt.Sprintf("keyword_id = $%d", len(args)))
	}
	if f.PostID > 0 {
		args = append(args, f.PostID)
		conds = append(conds, fmt.Sprintf("post_id = $%d", len(args)))
	}

	query := `SELECT ` + historyColumns + ` FROM generation_history`
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
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var items []models.GenerationHistory
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		items = append(items, *h)
	}
	return items, rows.Err()
}
