package models

import (
	"encoding/json"
	"time"
)

// Theme is a presentation template articles can reference by name via
// Content.TemplateTheme. The catalogue is read-only at runtime; a default
// theme is seeded on startup.
type Theme struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"display_name"`
	Description *string         `json:"description,omitempty"`
	CSS         string          `json:"css"`
	Variables   json.RawMessage `json:"variables,omitempty"`
	IsActive    bool            `json:"is_active"`
	IsDefault   bool            `json:"is_default"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
