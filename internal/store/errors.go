// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrMessageNotFound is returned when no message row has the requested ID
	// or correlation tuple.
	ErrMessageNotFound = errors.New("message was not found")

	// ErrDuplicateMessage is returned when a message with the same ID is
	// already stored.
	ErrDuplicateMessage = errors.New("message already exists")

	// ErrStatusTransition is returned when a conditional status update found
	// the row in a state from which the requested status is not reachable.
	ErrStatusTransition = errors.New("illegal message status transition")

	// ErrKeyNotFound is returned when a chat has no session key, or a key ID
	// does not exist.
	ErrKeyNotFound = errors.New("session key was not found")

	// ErrKeyConflict is returned when a new session key collides with an
	// existing key ID.
	ErrKeyConflict = errors.New("session key already exists")

	// ErrScheduleNotFound is returned when a target has no scheduled deletion.
	ErrScheduleNotFound = errors.New("scheduled deletion was not found")

	// ErrPreferenceNotFound is returned when a preference key is not set.
	ErrPreferenceNotFound = errors.New("preference was not found")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrExecutingStatement   = errors.New("failed to executing statement")
	ErrScanningRow          = errors.New("failed to scan row")
	ErrScanningRows         = errors.New("failed to scan rows")
)
