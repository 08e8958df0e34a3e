// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"autopublicador/internal/models"
)

const keywordColumns = `id, keyword, status, priority, search_volume, difficulty,
       category, notes, created_at, updated_at, used_at`

// KeywordStore handles all keyword-pool database operations, including the
// atomic reservation used by the generation coordinator.
type KeywordStore struct {
	db *sql.DB
}

// NewKeywordStore creates a new KeywordStore with the given database connection.
func NewKeywordStore(db *sql.DB) *KeywordStore {
	return &KeywordStore{db: db}
}

func scanKeyword(row interface{ Scan(...any) error }) (*models.Keyword, error) {
	k := &models.Keyword{}
	err := row.Scan(
		&k.ID, &k.Keyword, &k.Status, &k.Priority, &k.SearchVolume,
		&k.Difficulty, &k.Category, &k.Notes,
		&k.CreatedAt, &k.UpdatedAt, &k.UsedAt,
	)
	if err != nil {
		return nil, err
	}
	return k, nil
}

// Insert adds a new keyword to the pool in pending status and returns it
// with the generated ID. A collision with an existing keyword returns
// ErrDuplicateKeyword.
func (s *KeywordStore) Insert(k *models.Keyword) (*models.Keyword, error) {
	if k.Status == "" {
		k.Status = models.KeywordStatusPending
	}
	if k.Priority == "" {
		k.Priority = models.KeywordPriorityMedium
	}

	row := s.db.QueryRow(`
		INSERT INTO keywords (keyword, status, priority, search_volume, difficulty, category, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+keywordColumns,
		k.Keyword, k.Status, k.Priority, k.SearchVolume, k.Difficulty, k.Category, k.Notes,
	)
	created, err := scanKeyword(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateKeyword
		}
		return nil, fmt.Errorf("insert keyword: %w", err)
	}
	return created, nil
}

// FindByID retrieves a keyword by ID. Returns nil if not found.
func (s *KeywordStore) FindByID(id int64) (*models.Keyword, error) {
	k, err := scanKeyword(s.db.QueryRow(
		`SELECT `+keywordColumns+` FROM keywords WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find keyword by id: %w", err)
	}
	return k, nil
}

// FindByText retrieves a keyword by its exact text. Returns nil if not found.
func (s *KeywordStore) FindByText(keyword string) (*models.Keyword, error) {
	k, err := scanKeyword(s.db.QueryRow(
		`SELECT `+keywordColumns+` FROM keywords WHERE keyword = $1`, keyword))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find keyword by text: %w", err)
	}
	return k, nil
}

// KeywordFilter narrows List results. Zero values mean "no filter".
type KeywordFilter struct {
	Status   models.KeywordStatus
	Priority models.KeywordPriority
	Search   string
	Limit    int
	Offset   int
}

// List returns keywords matching the filter, newest first.
func (s *KeywordStore) List(f KeywordFilter) ([]models.Keyword, error) {
	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("keyword ILIKE $%d", len(args)))
	}

	query := `SELECT ` + keywordColumns + ` FROM keywords`
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
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	var items []models.Keyword
	for rows.Next() {
		k, err := scanKeyword(rows)
		if err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		items = append(items, *k)
	}
	return items, rows.Err()
}

// ReserveNext atomically claims the best pending keyword at or above the
// given priority floor and flips it to processing. Selection order is
// priority high > medium > low, then oldest created_at, then smallest id.
// SKIP LOCKED guarantees two concurrent calls never claim the same row.
// Returns nil when no eligible keyword exists.
func (s *KeywordStore) ReserveNext(floor models.KeywordPriority) (*models.Keyword, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("reserve next: begin: %w", err)
	}
	defer tx.Rollback()

	k, err := scanKeyword(tx.QueryRow(`
		SELECT `+keywordColumns+`
		FROM keywords
		WHERE status = 'pending'
		  AND CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END >= $1
		ORDER BY CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC,
		         created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, floor.Rank()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reserve next: select: %w", err)
	}

	if err := scanKeywordUpdate(tx, k, `
		UPDATE keywords SET status = 'processing', updated_at = now()
		WHERE id = $1
		RETURNING `+keywordColumns, k.ID); err != nil {
		return nil, fmt.Errorf("reserve next: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reserve next: commit: %w", err)
	}
	return k, nil
}

func scanKeywordUpdate(tx *sql.Tx, k *models.Keyword, query string, args ...any) error {
	updated, err := scanKeyword(tx.QueryRow(query, args...))
	if err != nil {
		return err
	}
	*k = *updated
	return nil
}

// Reserve claims a specific keyword by ID, flipping pending to processing.
// Returns ErrNotFound if the keyword does not exist and ErrContended if it
// exists but is no longer pending.
func (s *KeywordStore) Reserve(id int64) (*models.Keyword, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("reserve: begin: %w", err)
	}
	defer tx.Rollback()

	k, err := scanKeyword(tx.QueryRow(
		`SELECT `+keywordColumns+` FROM keywords WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reserve: select: %w", err)
	}
	if k.Status != models.KeywordStatusPending {
		return nil, ErrContended
	}

	if err := scanKeywordUpdate(tx, k, `
		UPDATE keywords SET status = 'processing', updated_at = now()
		WHERE id = $1
		RETURNING `+keywordColumns, k.ID); err != nil {
		return nil, fmt.Errorf("reserve: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("reserve: commit: %w", err)
	}
	return k, nil
}

// transition moves a keyword from one status to another inside a row lock.
func (s *KeywordStore) transition(id int64, from, to models.KeywordStatus, extra string, extraArgs ...any) (*models.Keyword, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("keyword transition: begin: %w", err)
	}
	defer tx.Rollback()

	k, err := scanKeyword(tx.QueryRow(
		`SELECT `+keywordColumns+` FROM keywords WHERE id = $1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("keyword transition: select: %w", err)
	}
	if k.Status != from {
		return nil, ErrIllegalTransition
	}

	args := append([]any{to, id}, extraArgs...)
	if err := scanKeywordUpdate(tx, k, `
		UPDATE keywords SET status = $1, updated_at = now()`+extra+`
		WHERE id = $2
		RETURNING `+keywordColumns, args...); err != nil {
		return nil, fmt.Errorf("keyword transition: update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("keyword transition: commit: %w", err)
	}
	return k, nil
}

// Complete retires a processing keyword as completed and stamps used_at.
func (s *KeywordStore) Complete(id int64) (*models.Keyword, error) {
	return s.transition(id, models.KeywordStatusProcessing, models.KeywordStatusCompleted,
		", used_at = now()")
}

// Fail retires a processing keyword as failed, appending the reason to its
// notes so the operator can see why it was parked.
func (s *KeywordStore) Fail(id int64, reason string) (*models.Keyword, error) {
	return s.transition(id, models.KeywordStatusProcessing, models.KeywordStatusFailed,
		", notes = concat_ws(E'\n', notes, $3::text)", reason)
}

// Release returns a processing keyword to the pending pool, typically
// before a retry.
func (s *KeywordStore) Release(id int64) (*models.Keyword, error) {
	return s.transition(id, models.KeywordStatusProcessing, models.KeywordStatusPending, "")
}
