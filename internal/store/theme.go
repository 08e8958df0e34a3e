package store

import (
	"database/sql"
	"fmt"

	"autopublicador/internal/models"
)

const themeColumns = `id, name, display_name, description, css, variables,
       is_active, is_default, created_at, updated_at`

// ThemeStore serves the read-only theme catalogue.
type ThemeStore struct {
	db *sql.DB
}

// NewThemeStore creates a new ThemeStore with the given database connection.
func NewThemeStore(db *sql.DB) *ThemeStore {
	return &ThemeStore{db: db}
}

func scanTheme(row interface{ Scan(...any) error }) (*models.Theme, error) {
	t := &models.Theme{}
	var vars []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.DisplayName, &t.Description, &t.CSS, &vars,
		&t.IsActive, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Variables = vars
	return t, nil
}

// List returns all active themes, default theme first.
func (s *ThemeStore) List() ([]models.Theme, error) {
	rows, err := s.db.Query(`
		SELECT ` + themeColumns + `
		FROM themes
		WHERE is_active = true
		ORDER BY is_default DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var items []models.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindByName retrieves a theme by its unique name. Returns nil if not found.
func (s *ThemeStore) FindByName(name string) (*models.Theme, error) {
	t, err := scanTheme(s.db.QueryRow(
		`SELECT `+themeColumns+` FROM themes WHERE name = $1`, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find theme by name: %w", err)
	}
	return t, nil
}
