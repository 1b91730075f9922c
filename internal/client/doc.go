// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the messenger's process runtime.
//
// It wires storage, the device key store, the remote collaborators and the
// services into a single process lifecycle: background jobs and per-chat
// pollers run while the process is up, and session-end retention is applied
// on the way out.
package client
