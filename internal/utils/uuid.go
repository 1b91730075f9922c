// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ZUA228132/mkr-messenger-sub000/models"
)

type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a time-ordered UUIDv7, falling back to a random v4.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// ProvisionalID returns a client-side message ID of the form
// "local_<unixMillis>_<hex>".
func (g *UUIDGenerator) ProvisionalID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return models.ProvisionalIDPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + random[:16]
}
