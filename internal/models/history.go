// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// GenerationContentType distinguishes what a generation attempt produced.
type GenerationContentType string

const (
	GenerationText  GenerationContentType = "text"
	GenerationImage GenerationContentType = "image"
	GenerationBoth  GenerationContentType = "both"
)

// GenerationStatus is the outcome of one generation attempt. Rows start
// pending and settle into exactly one terminal state.
type GenerationStatus string

const (
	GenerationStatusPending   GenerationStatus = "pending"
	GenerationStatusCompleted GenerationStatus = "completed"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// GenerationHistory is the append-only audit record of provider calls. One
// row per attempt: retries produce additional rows rather than rewriting
// earlier ones. PostID may dangle after the referenced article is deleted.
type GenerationHistory struct {
	ID               int64                 `json:"id"`
	KeywordID        *int64                `json:"keyword_id,omitempty"`
	Prompt           string                `json:"prompt"`
	ContentType      GenerationContentType `json:"content_type"`
	AIModel          string                `json:"ai_model"`
	Status           GenerationStatus      `json:"status"`
	ResultData       json.RawMessage       `json:"result_data,omitempty"`
	ErrorMessage     *string               `json:"error_message,omitempty"`
	GenerationTimeMS int64                 `json:"generation_time_ms"`
	TokensUsed       *int                  `json:"tokens_used,omitempty"`
	PostID           *int64                `json:"post_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}
