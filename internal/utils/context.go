// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package utils provides general-purpose helper utilities used across the
// messenger core: context keys, identifier generation, a clock abstraction,
// per-key locking, JWT helpers and the HTTP client wrapper.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// TriggerCtxKey stores what started a reconcile run.
var TriggerCtxKey = contextKey("trigger")

// Reconcile triggers.
const (
	TriggerPoll   = "poll"
	TriggerPush   = "push"
	TriggerManual = "manual"
)

// WithTrigger returns a copy of ctx carrying trigger.
func WithTrigger(ctx context.Context, trigger string) context.Context {
	return context.WithValue(ctx, TriggerCtxKey, trigger)
}

// TriggerFromContext returns the reconcile trigger stored in ctx, or
// [TriggerManual] when none is set.
func TriggerFromContext(ctx context.Context) string {
	trigger, ok := ctx.Value(TriggerCtxKey).(string)
	if !ok || trigger == "" {
		return TriggerManual
	}
	return trigger
}
