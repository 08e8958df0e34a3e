// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON boundary. Handlers decode and
// validate requests, call stores or the coordinator, and translate domain
// errors into HTTP status codes in one place.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"autopublicador/internal/ai"
	"autopublicador/internal/coordinator"
	"autopublicador/internal/store"
)

// errorResponse is the uniform JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the standard headers. Encoding failures are
// logged; the status line has already been sent at that point.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// writeError sends the JSON error envelope with the given status.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps a domain error to its HTTP status. The mapping is
// the single source of truth for the API's error contract.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateKeyword):
		writeError(w, http.StatusConflict, "keyword already exists")
	case errors.Is(err, store.ErrIllegalTransition):
		writeError(w, http.StatusConflict, "illegal status transition")
	case errors.Is(err, store.ErrContended):
		writeError(w, http.StatusConflict, "keyword already claimed by another job")
	case errors.Is(err, store.ErrAlreadyTerminal):
		writeError(w, http.StatusConflict, "generation attempt already settled")
	case errors.Is(err, coordinator.ErrVanished):
		slog.Error("keyword vanished during generation", "error", err)
		writeError(w, http.StatusInternalServerError, "keyword was deleted during generation")
	case errors.Is(err, ai.ErrProviderUnavailable):
		writeError(w, http.StatusBadGateway, "ai provider unavailable")
	case isProviderFailure(err):
		writeError(w, http.StatusBadGateway, "content generation failed: "+err.Error())
	default:
		slog.Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isProviderFailure(err error) bool {
	var ge *coordinator.GenerationError
	var pe *ai.ProviderError
	return errors.As(err, &ge) || errors.As(err, &pe) || errors.Is(err, ai.ErrEmptyBody)
}

// decodeJSON decodes a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
