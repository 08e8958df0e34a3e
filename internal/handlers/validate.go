package handlers

import (
	"strings"
	"unicode/utf8"

	"autopublicador/internal/models"
)

// Validation limits for keyword and content fields.
const (
	maxKeywordLen   = 255
	maxCategoryLen  = 100
	maxTitleLen     = 500
	maxMetaDescLen  = 500
	maxThemeNameLen = 100
	minSearchLen    = 2
	maxSearchLen    = 200
)

// dangerousKeywordChars are rejected outright; keywords feed prompts and
// URLs and must stay free of markup and statement separators.
const dangerousKeywordChars = `<>"'&;`

// validateKeyword checks a keyword string and returns the first error found.
func validateKeyword(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return "Keyword is required."
	}
	if utf8.RuneCountInString(keyword) > maxKeywordLen {
		return "Keyword is too long (max 255 characters)."
	}
	if strings.ContainsAny(keyword, dangerousKeywordChars) {
		return `Keyword contains forbidden characters (< > " ' & ;).`
	}
	return ""
}

// validateKeywordMetrics checks the optional SEO metric fields.
func validateKeywordMetrics(searchVolume *int, difficulty *float64, category string) string {
	if searchVolume != nil && *searchVolume < 0 {
		return "Search volume must be zero or positive."
	}
	if difficulty != nil && (*difficulty < 0 || *difficulty > 1) {
		return "Difficulty must be between 0 and 1."
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return "Category is too long (max 100 characters)."
	}
	return ""
}

// validatePriority checks an optional priority value; empty is allowed and
// defaults later.
func validatePriority(priority string) string {
	if priority == "" {
		return ""
	}
	if !models.ValidKeywordPriority(models.KeywordPriority(priority)) {
		return "Priority must be one of low, medium, high."
	}
	return ""
}

// validateSearch checks a free-text search parameter.
func validateSearch(search string) string {
	if search == "" {
		return ""
	}
	n := utf8.RuneCountInString(search)
	if n < minSearchLen {
		return "Search term is too short (min 2 characters)."
	}
	if n > maxSearchLen {
		return "Search term is too long (max 200 characters)."
	}
	return ""
}

// validateContentPatch checks the updatable article fields. Nil pointers
// are skipped: absent means unchanged.
func validateContentPatch(title, metaDesc, theme *string, status *string) string {
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return "Title cannot be empty."
		}
		if utf8.RuneCountInString(t) > maxTitleLen {
			return "Title is too long (max 500 characters)."
		}
	}
	if metaDesc != nil && utf8.RuneCountInString(*metaDesc) > maxMetaDescLen {
		return "Meta description is too long (max 500 characters)."
	}
	if theme != nil && utf8.RuneCountInString(*theme) > maxThemeNameLen {
		return "Template theme is too long (max 100 characters)."
	}
	if status != nil && !models.ValidContentStatus(models.ContentStatus(*status)) {
		return "Status must be one of draft, generating, review, published, failed."
	}
	return ""
}
