// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"autopublicador/internal/coordinator"
	"autopublicador/internal/models"
)

// generateRequest selects what to generate. All fields are optional: an
// empty body claims the best pending keyword.
type generateRequest struct {
	KeywordID     *int64 `json:"keyword_id,omitempty"`
	Keyword       string `json:"keyword,omitempty"`
	PriorityFloor string `json:"priority_floor,omitempty"`
	ContentType   string `json:"content_type,omitempty"`
	TemplateTheme string `json:"template_theme,omitempty"`
	AutoReview    *bool  `json:"auto_review,omitempty"`
}

type generateResponse struct {
	Generated bool                `json:"generated"`
	Result    *coordinator.Result `json:"result,omitempty"`
}

// Generate runs one content-generation job synchronously and reports what
// it produced. An empty pool is not an error: the response carries
// generated=false.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.KeywordID != nil && req.Keyword != "" {
		writeError(w, http.StatusBadRequest, "keyword_id and keyword are mutually exclusive")
		return
	}
	if req.Keyword != "" {
		if msg := validateKeyword(req.Keyword); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if msg := validatePriority(req.PriorityFloor); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	switch req.ContentType {
	case "", string(models.GenerationText), string(models.GenerationImage), string(models.GenerationBoth):
	default:
		writeError(w, http.StatusBadRequest, "content_type must be one of text, image, both")
		return
	}

	autoReview := true
	if req.AutoReview != nil {
		autoReview = *req.AutoReview
	}

	result, err := a.coord.Run(r.Context(), coordinator.Request{
		KeywordID:     req.KeywordID,
		KeywordText:   req.Keyword,
		PriorityFloor: models.KeywordPriority(req.PriorityFloor),
		ContentType:   models.GenerationContentType(req.ContentType),
		TemplateTheme: req.TemplateTheme,
		AutoReview:    autoReview,
	})
	if errors.Is(err, coordinator.ErrNoWork) {
		writeJSON(w, http.StatusOK, generateResponse{Generated: false})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	a.contentCache.Invalidate(r.Context(), result.PostID)

	writeJSON(w, http.StatusOK, generateResponse{Generated: true, Result: result})
}
