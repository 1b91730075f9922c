// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	ErrBadRequest         = errors.New("bad request")
	ErrUnauthorized       = errors.New("client unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrServerUnavailable  = errors.New("remote store unavailable")
	ErrInvalidAddress     = errors.New("invalid address")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnexpectedResponse = errors.New("unexpected response")
)
