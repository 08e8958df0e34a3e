package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"autopublicador/internal/models"
)

// ListThemes returns the active theme catalogue.
func (a *API) ListThemes(w http.ResponseWriter, r *http.Request) {
	items, err := a.themes.List()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []models.Theme{}
	}
	writeJSON(w, http.StatusOK, items)
}

// GetTheme returns one theme by its unique name.
func (a *API) GetTheme(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := a.themes.FindByName(name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}
