// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"autopublicador/internal/cache"
	"autopublicador/internal/coordinator"
	"autopublicador/internal/store"
)

// API bundles the dependencies shared by all endpoint handlers.
type API struct {
	keywords     *store.KeywordStore
	content      *store.ContentStore
	history      *store.HistoryStore
	themes       *store.ThemeStore
	coord        *coordinator.Coordinator
	contentCache *cache.ContentCache
}

// NewAPI creates the handler set. contentCache may be nil when Valkey is
// not configured.
func NewAPI(
	keywords *store.KeywordStore,
	content *store.ContentStore,
	history *store.HistoryStore,
	themes *store.ThemeStore,
	coord *coordinator.Coordinator,
	contentCache *cache.ContentCache,
) *API {
	return &API{
		keywords:     keywords,
		content:      content,
		history:      history,
		themes:       themes,
		coord:        coord,
		contentCache: contentCache,
	}
}

// Health reports liveness.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
