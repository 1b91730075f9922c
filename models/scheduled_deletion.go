// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"fmt"
	"time"
)

// TargetKind says whether a deletion targets a single message or a whole chat.
type TargetKind string

const (
	TargetMessage TargetKind = "message"
	TargetChat    TargetKind = "chat"
)

// Target identifies what a scheduled deletion destroys.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

func (t Target) String() string {
	return string(t.Kind) + ":" + t.ID
}

// MessageTarget is a shorthand for a message-level target.
func MessageTarget(id string) Target { return Target{Kind: TargetMessage, ID: id} }

// ChatTarget is a shorthand for a chat-level target.
func ChatTarget(id string) Target { return Target{Kind: TargetChat, ID: id} }

// PolicyKind is the persisted policy tag of a schedule row.
type PolicyKind string

const (
	// PolicyAfterDuration deletes once a fixed delay has elapsed.
	PolicyAfterDuration PolicyKind = "AFTER_DURATION"
	// PolicyAfterRead deletes as soon as the message becomes READ.
	PolicyAfterRead PolicyKind = "AFTER_READ"
	// PolicyOnExit deletes when the session ends.
	PolicyOnExit PolicyKind = "ON_EXIT"
	// PolicyNever removes any existing schedule. It is never persisted.
	PolicyNever PolicyKind = "NEVER"
)

// DeletionPolicy is the deleteAfter argument of the retention API: either a
// concrete duration or one of the sentinel policies.
type DeletionPolicy struct {
	Kind  PolicyKind
	After time.Duration
}

// After returns a duration-based policy.
func After(d time.Duration) DeletionPolicy {
	return DeletionPolicy{Kind: PolicyAfterDuration, After: d}
}

var (
	AfterRead = DeletionPolicy{Kind: PolicyAfterRead}
	OnExit    = DeletionPolicy{Kind: PolicyOnExit}
	Never     = DeletionPolicy{Kind: PolicyNever}
)

// Validate checks that p is well formed.
func (p DeletionPolicy) Validate() error {
	switch p.Kind {
	case PolicyAfterRead, PolicyOnExit, PolicyNever:
		return nil
	case PolicyAfterDuration:
		if p.After < 0 {
			return fmt.Errorf("%w: negative duration %s", ErrUnknownPolicy, p.After)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p.Kind))
}

// ScheduledDeletion is one pending destruction entry. A target has at most
// one entry; scheduling it again replaces the previous one.
type ScheduledDeletion struct {
	Target Target
	Policy PolicyKind

	// DueAt is nil while the entry waits for an event (read, exit).
	DueAt *time.Time

	CreatedAt time.Time
}

// IsDue reports whether the entry has a concrete deadline at or before now.
func (s ScheduledDeletion) IsDue(now time.Time) bool {
	return s.DueAt != nil && !s.DueAt.After(now)
}
