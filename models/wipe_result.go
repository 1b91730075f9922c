// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// WipeOutcome is the result of destroying a single target.
type WipeOutcome string

const (
	// WipeFull means the target was overwritten and removed.
	WipeFull WipeOutcome = "WIPED"
	// WipeDegraded means the target was removed but could not be overwritten
	// first, so remnants may survive on the medium.
	WipeDegraded WipeOutcome = "DEGRADED"
	// WipeFailed means the target still exists.
	WipeFailed WipeOutcome = "FAILED"
)

// WipeEntry is the outcome for one target of a destruction pass.
type WipeEntry struct {
	Target  string
	Outcome WipeOutcome
	Err     error
}

// Succeeded reports whether the target no longer exists.
func (e WipeEntry) Succeeded() bool {
	return e.Outcome != WipeFailed
}

// WipeResult is the ordered outcome of a destruction pass. A pass never stops
// at the first failure; the result carries every attempted target.
type WipeResult struct {
	Entries []WipeEntry
}

// Add appends one entry.
func (r *WipeResult) Add(e WipeEntry) {
	r.Entries = append(r.Entries, e)
}

// Merge appends every entry of other.
func (r *WipeResult) Merge(other WipeResult) {
	r.Entries = append(r.Entries, other.Entries...)
}

// Success is true only if every target succeeded.
func (r WipeResult) Success() bool {
	for _, e := range r.Entries {
		if !e.Succeeded() {
			return false
		}
	}
	return true
}

// Full is true only if every target was fully overwritten.
func (r WipeResult) Full() bool {
	for _, e := range r.Entries {
		if e.Outcome != WipeFull {
			return false
		}
	}
	return true
}

// Counts returns the number of succeeded and failed entries.
func (r WipeResult) Counts() (succeeded, failed int) {
	for _, e := range r.Entries {
		if e.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

// Failures returns the failed entries in order.
func (r WipeResult) Failures() []WipeEntry {
	var out []WipeEntry
	for _, e := range r.Entries {
		if !e.Succeeded() {
			out = append(out, e)
		}
	}
	return out
}
