// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the domain types shared by the stores, the
// coordinator and the HTTP boundary, plus the content status state machine.
package models

import "time"

// KeywordStatus tracks a keyword through its lifecycle: admitted as pending,
// claimed by a generation job as processing, then retired as completed or
// failed.
type KeywordStatus string

const (
	KeywordStatusPending    KeywordStatus = "pending"
	KeywordStatusProcessing KeywordStatus = "processing"
	KeywordStatusCompleted  KeywordStatus = "completed"
	KeywordStatusFailed     KeywordStatus = "failed"
)

// KeywordPriority orders keywords in the generation queue. High-priority
// keywords are always reserved before medium, medium before low.
type KeywordPriority string

const (
	KeywordPriorityLow    KeywordPriority = "low"
	KeywordPriorityMedium KeywordPriority = "medium"
	KeywordPriorityHigh   KeywordPriority = "high"
)

// Rank returns the numeric queue rank of a priority. Higher ranks are
// reserved first.
func (p KeywordPriority) Rank() int {
	switch p {
	case KeywordPriorityHigh:
		return 3
	case KeywordPriorityMedium:
		return 2
	default:
		return 1
	}
}

// ValidKeywordStatus reports whether s is a known keyword status.
func ValidKeywordStatus(s KeywordStatus) bool {
	switch s {
	case KeywordStatusPending, KeywordStatusProcessing, KeywordStatusCompleted, KeywordStatusFailed:
		return true
	}
	return false
}

// ValidKeywordPriority reports whether p is a known keyword priority.
func ValidKeywordPriority(p KeywordPriority) bool {
	switch p {
	case KeywordPriorityLow, KeywordPriorityMedium, KeywordPriorityHigh:
		return true
	}
	return false
}

// Keyword is a row in the keyword pool. SearchVolume and Difficulty are
// optional SEO metrics; UsedAt is set exactly when the keyword reaches
// completed status.
type Keyword struct {
	ID           int64           `json:"id"`
	Keyword      string          `json:"keyword"`
	Status       KeywordStatus   `json:"status"`
	Priority     KeywordPriority `json:"priority"`
	SearchVolume *int            `json:"search_volume,omitempty"`
	Difficulty   *float64        `json:"difficulty,omitempty"`
	Category     *string         `json:"category,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	UsedAt       *time.Time      `json:"used_at,omitempty"`
}
