// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyChatID      = errors.New("chat ID is required")
	ErrEmptyMessageID   = errors.New("message ID is required")
	ErrInvalidType      = errors.New("invalid message type")
	ErrMediaTypeInline  = errors.New("media type must be sent as a file")
	ErrInlineTypeAsFile = errors.New("inline type cannot be sent as a file")
	ErrEmptyPayload     = errors.New("payload is required")
	ErrEmptySourcePath  = errors.New("source path is required")
	ErrInvalidScope     = errors.New("invalid delete scope")
	ErrInvalidTarget    = errors.New("invalid deletion target")
	ErrInvalidPolicy    = errors.New("invalid deletion policy")
)
