package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial data. It creates the default
// theme if the catalogue is empty; articles reference it by name when no
// template_theme is given.
func Seed(db *sql.DB) error {
	// Check if any themes exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM themes").Scan(&count); err != nil {
		return fmt.Errorf("seed check themes: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	_, err := db.Exec(`
		INSERT INTO themes (name, display_name, description, css, variables, is_active, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, "default", "Default", "Tema por defecto para artículos generados",
		"body { font-family: system-ui, sans-serif; line-height: 1.6; }",
		`{"primary_color": "#1a73e8", "max_width": "720px"}`,
		true, true)
	if err != nil {
		return fmt.Errorf("seed insert default theme: %w", err)
	}

	slog.Info("database seeded with default theme")
	return nil
}
