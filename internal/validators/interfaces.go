// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks user commands before they reach the sync engine
// and the retention scheduler.
//
// A [Validator] accepts any supported command value and, optionally, the
// names of the fields to check. Without field names a default set is used.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
