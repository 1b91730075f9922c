// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package keystore

import (
	"context"
	"fmt"
)

// AlwaysPresent is a gate that always confirms. Use it for headless
// deployments and tests only.
type AlwaysPresent struct{}

func (AlwaysPresent) Confirm(context.Context) error { return nil }

// DenyPresence is a gate that always refuses.
type DenyPresence struct{}

func (DenyPresence) Confirm(context.Context) error { return ErrAccessDenied }

// FuncGate adapts a function to [PresenceGate]. A non-nil error from the
// function is reported as [ErrAccessDenied].
type FuncGate func(ctx context.Context) error

func (f FuncGate) Confirm(ctx context.Context) error {
	if err := f(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	return nil
}
