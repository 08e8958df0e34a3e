package handlers

import (
	"net/http"

	"autopublicador/internal/models"
	"autopublicador/internal/store"
)

// ListHistory returns generation attempts, optionally filtered by keyword
// or article.
func (a *API) ListHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	items, err := a.history.List(store.HistoryFilter{
		KeywordID: int64(queryInt(q.Get("keyword_id"), 0)),
		PostID:    int64(queryInt(q.Get("post_id"), 0)),
		Limit:     queryInt(q.Get("limit"), 50),
		Offset:    queryInt(q.Get("offset"), 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if items == nil {
		items = []models.GenerationHistory{}
	}
	writeJSON(w, http.StatusOK, items)
}
