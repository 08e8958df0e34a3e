// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"

	"autopublicador/internal/models"
	"autopublicador/internal/store"
)

// ListContent returns articles matching the query filters.
func (a *API) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !models.ValidContentStatus(models.ContentStatus(status)) {
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	items, err := a.content.List(store.ContentFilter{
		Status:    models.ContentStatus(status),
		KeywordID: int64(queryInt(q.Get("keyword_id"), 0)),
		Limit:     queryInt(q.Get("limit"), 50),
		Offset:    queryInt(q.Get("offset"), 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []models.Content{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetContent returns one article, served from the Valkey cache when
// possible.
func (a *API) GetContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if body, ok := a.contentCache.Get(r.Context(), id); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
		return
	}

	c, err := a.content.FindByID(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if c == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	body, err := json.Marshal(c)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	a.contentCache.Set(r.Context(), id, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// contentPatchRequest carries the updatable article fields. Absent fields
// are left unchanged.
type contentPatchRequest struct {
	Title           *string `json:"title,omitempty"`
	Body            *string `json:"body,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	MetaDescription *string `json:"meta_description,omitempty"`
	Status          *string `json:"status,omitempty"`
	TemplateTheme   *string `json:"template_theme,omitempty"`
}

// UpdateContent applies a partial update. Status changes go through the
// editorial transition table; illegal moves are rejected with 409.
func (a *API) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req contentPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := validateContentPatch(req.Title, req.MetaDescription, req.TemplateTheme, req.Status); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	patch := store.ContentPatch{
		Title:           req.Title,
		Body:            req.Body,
		Keywords:        req.Keywords,
		MetaDescription: req.MetaDescription,
		TemplateTheme:   req.TemplateTheme,
	}
	if req.Status != nil {
		s := models.ContentStatus(*req.Status)
		patch.Status = &s
	}

	updated, err := a.content.Update(id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	a.contentCache.Invalidate(r.Context(), id)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteContent removes an article permanently. History rows keep their
// post_id reference.
func (a *API) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := a.content.Delete(id); err != nil {
		writeDomainError(w, err)
		return
	}

	a.contentCache.Invalidate(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}
