// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// ContentStatus represents the editorial state of a generated article.
type ContentStatus string

const (
	ContentStatusDraft      ContentStatus = "draft"
	ContentStatusGenerating ContentStatus = "generating"
	ContentStatusReview     ContentStatus = "review"
	ContentStatusPublished  ContentStatus = "published"
	ContentStatusFailed     ContentStatus = "failed"
)

// contentTransitions is the single source of truth for legal editorial
// status changes. Anything not listed here is rejected.
var contentTransitions = map[ContentStatus][]ContentStatus{
	ContentStatusDraft:      {ContentStatusGenerating, ContentStatusReview, ContentStatusPublished},
	ContentStatusGenerating: {ContentStatusReview, ContentStatusFailed},
	ContentStatusReview:     {ContentStatusPublished, ContentStatusDraft},
	ContentStatusPublished:  {ContentStatusDraft},
	ContentStatusFailed:     {ContentStatusDraft, ContentStatusGenerating},
}

// CanTransition reports whether an article may move from one editorial
// status to another.
func CanTransition(from, to ContentStatus) bool {
	for _, t := range contentTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidContentStatus reports whether s is a known editorial status.
func ValidContentStatus(s ContentStatus) bool {
	switch s {
	case ContentStatusDraft, ContentStatusGenerating, ContentStatusReview,
		ContentStatusPublished, ContentStatusFailed:
		return true
	}
	return false
}

// Content is a generated article. KeywordID links back to the keyword that
// produced it (nullable: the keyword may be deleted independently).
// TemplateTheme names an entry in the themes catalogue but is not validated
// at write time.
type Content struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Body            string        `json:"body"`
	KeywordID       *int64        `json:"keyword_id,omitempty"`
	Keywords        *string       `json:"keywords,omitempty"`
	MetaDescription string        `json:"meta_description"`
	Status          ContentStatus `json:"status"`
	TemplateTheme   string        `json:"template_theme"`
	PublishedAt     *time.Time    `json:"published_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is in published status.
func (c *Content) IsPublished() bool {
	return c.Status == ContentStatusPublished
}
