// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	ErrSendFailed  = errors.New("send failed")
	ErrFetchFailed = errors.New("fetch failed")

	ErrResendNotAllowed   = errors.New("only failed messages can be resent")
	ErrResendLimitReached = errors.New("resend limit reached")
	ErrResendTooSoon      = errors.New("resend attempted too soon")

	ErrMediaUnavailable = errors.New("media file unavailable")

	ErrWrongPIN = errors.New("wrong PIN")
)
