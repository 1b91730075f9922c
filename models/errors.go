// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "errors"

var (
	// ErrUnknownMessageType is returned when a message type outside the known
	// set is supplied.
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrUnknownPolicy is returned when a deletion policy cannot be parsed.
	ErrUnknownPolicy = errors.New("unknown deletion policy")

	// ErrUnknownTarget is returned for a deletion target of unknown kind.
	ErrUnknownTarget = errors.New("unknown deletion target")
)
