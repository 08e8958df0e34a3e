// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the persistence layer on database/sql over the
// pgx stdlib driver. Reads return (nil, nil) when no row matches; mutations
// report outcome through the sentinel errors below so callers can map them
// without string matching.
package store

import "errors"

var (
	// ErrNotFound is returned by mutations targeting a row that does not exist.
	ErrNotFound = errors.New("store: not found")

	// ErrDuplicateKeyword is returned when an insert collides with the
	// unique index on keywords.keyword.
	ErrDuplicateKeyword = errors.New("store: duplicate keyword")

	// ErrIllegalTransition is returned when a status change is not permitted
	// from the row's current state.
	ErrIllegalTransition = errors.New("store: illegal status transition")

	// ErrContended is returned when a targeted reservation loses the race:
	// the keyword exists but is no longer pending.
	ErrContended = errors.New("store: keyword already claimed")

	// ErrAlreadyTerminal is returned when finishing a history row that has
	// already settled into completed or failed.
	ErrAlreadyTerminal = errors.New("store: history row already terminal")
)
