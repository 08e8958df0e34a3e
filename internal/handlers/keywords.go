// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"autopublicador/internal/models"
	"autopublicador/internal/store"
)

// keywordRequest is the create payload for a single keyword.
type keywordRequest struct {
	Keyword      string   `json:"keyword"`
	Priority     string   `json:"priority,omitempty"`
	SearchVolume *int     `json:"search_volume,omitempty"`
	Difficulty   *float64 `json:"difficulty,omitempty"`
	Category     string   `json:"category,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func (req *keywordRequest) validate() string {
	if msg := validateKeyword(req.Keyword); msg != "" {
		return msg
	}
	if msg := validatePriority(req.Priority); msg != "" {
		return msg
	}
	return validateKeywordMetrics(req.SearchVolume, req.Difficulty, req.Category)
}

func (req *keywordRequest) toModel() *models.Keyword {
	k := &models.Keyword{
		Keyword:      strings.TrimSpace(req.Keyword),
		Priority:     models.KeywordPriority(req.Priority),
		SearchVolume: req.SearchVolume,
		Difficulty:   req.Difficulty,
	}
	if req.Category != "" {
		c := req.Category
		k.Category = &c
	}
	if req.Notes != "" {
		n := req.Notes
		k.Notes = &n
	}
	return k
}

// CreateKeyword admits one keyword into the pool.
func (a *API) CreateKeyword(w http.ResponseWriter, r *http.Request) {
	var req keywordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	created, err := a.keywords.Insert(req.toModel())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// bulkKeywordRequest admits many keywords in one call. Duplicates are
// skipped rather than failing the batch.
type bulkKeywordRequest struct {
	Keywords []keywordRequest `json:"keywords"`
}

type bulkKeywordResponse struct {
	Created []models.Keyword `json:"created"`
	Skipped []string         `json:"skipped"`
}

// BulkCreateKeywords admits a batch of keywords, tolerating duplicates
// per-row.
func (a *API) BulkCreateKeywords(w http.ResponseWriter, r *http.Request) {
	var req bulkKeywordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Keywords) == 0 {
		writeError(w, http.StatusBadRequest, "keywords list is empty")
		return
	}
	for i := range req.Keywords {
		if msg := req.Keywords[i].validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}

	resp := bulkKeywordResponse{Created: []models.Keyword{}, Skipped: []string{}}
	for i := range req.Keywords {
		created, err := a.keywords.Insert(req.Keywords[i].toModel())
		if errors.Is(err, store.ErrDuplicateKeyword) {
			resp.Skipped = append(resp.Skipped, req.Keywords[i].Keyword)
			continue
		}
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp.Created = append(resp.Created, *created)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ListKeywords returns keywords matching the query filters.
func (a *API) ListKeywords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status != "" && !models.ValidKeywordStatus(models.KeywordStatus(status)) {
		writeError(w, http.StatusBadRequest, "unknown status filter")
		return
	}
	if msg := validatePriority(q.Get("priority")); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateSearch(q.Get("search")); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	items, err := a.keywords.List(store.KeywordFilter{
		Status:   models.KeywordStatus(status),
		Priority: models.KeywordPriority(q.Get("priority")),
		Search:   q.Get("search"),
		Limit:    queryInt(q.Get("limit"), 50),
		Offset:   queryInt(q.Get("offset"), 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []models.Keyword{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetKeyword returns one keyword by ID.
func (a *API) GetKeyword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	k, err := a.keywords.FindByID(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if k == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, k)
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// queryInt parses an optional numeric query parameter, clamping negatives
// to the fallback.
func queryInt(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
