// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Status is the delivery state of a message.
//
// Transitions:
//
//	LOCAL_PENDING -> SENT -> DELIVERED -> READ
//	LOCAL_PENDING -> FAILED
//	any           -> PURGED
//
// DELIVERED and READ are only ever taken from remote-origin data.
type Status string

const (
	StatusLocalPending Status = "LOCAL_PENDING"
	StatusSent         Status = "SENT"
	StatusDelivered    Status = "DELIVERED"
	StatusRead         Status = "READ"
	StatusFailed       Status = "FAILED"
	StatusPurged       Status = "PURGED"
)

// rank orders the forward-only part of the machine.
func (s Status) rank() int {
	switch s {
	case StatusLocalPending:
		return 0
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return -1
}

// IsTerminal reports whether no further transition (other than PURGED) is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusPurged
}

// CanTransitionTo reports whether moving from s to next is a legal step.
func (s Status) CanTransitionTo(next Status) bool {
	if s == StatusPurged {
		return false
	}
	if next == StatusPurged {
		return true
	}
	if s == StatusFailed {
		return false
	}
	if next == StatusFailed {
		return s == StatusLocalPending
	}
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to > from
}

// SourcesFor returns every status from which next can be reached. The store
// uses it to make status updates conditional.
func SourcesFor(next Status) []Status {
	all := []Status{StatusLocalPending, StatusSent, StatusDelivered, StatusRead, StatusFailed, StatusPurged}
	sources := make([]Status, 0, len(all))
	for _, s := range all {
		if s.CanTransitionTo(next) {
			sources = append(sources, s)
		}
	}
	return sources
}

// ParseRemoteStatus maps a status reported by the remote store onto the local
// machine. Unknown values are treated as SENT: the remote store has the message.
func ParseRemoteStatus(raw string) Status {
	switch Status(raw) {
	case StatusDelivered:
		return StatusDelivered
	case StatusRead:
		return StatusRead
	}
	return StatusSent
}
