// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateJWTToken_Success(t *testing.T) {
	token, err := GenerateJWTToken("test-issuer", "user-123", time.Hour, "secret-key")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sub, err := ValidateJWTToken(token, "secret-key", "test-issuer")
	if err != nil {
		t.Fatalf("expected valid token, got: %v", err)
	}
	if sub != "user-123" {
		t.Errorf("expected subject 'user-123', got %q", sub)
	}
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name     string
		issuer   string
		subject  string
		duration time.Duration
		key      string
	}{
		{"empty issuer", "", "u", time.Hour, "k"},
		{"empty subject", "i", "", time.Hour, "k"},
		{"zero duration", "i", "u", 0, "k"},
		{"empty key", "i", "u", time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := GenerateJWTToken(tt.issuer, tt.subject, tt.duration, tt.key); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateJWTToken_WrongKeyOrIssuer(t *testing.T) {
	token, err := GenerateJWTToken("issuer", "user", time.Hour, "key")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateJWTToken(token, "other-key", "issuer"); err == nil {
		t.Error("expected signature error")
	}
	if _, err := ValidateJWTToken(token, "key", "other-issuer"); err == nil {
		t.Error("expected issuer error")
	}
}

func TestValidateJWTToken_Expired(t *testing.T) {
	claims := &jwt.RegisteredClaims{
		Issuer:    "issuer",
		Subject:   "user",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("key"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateJWTToken(token, "key", "issuer"); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseSubjectFromJWT(t *testing.T) {
	token, err := GenerateJWTToken("issuer", "alice", time.Hour, "server-only-key")
	if err != nil {
		t.Fatal(err)
	}

	sub, err := ParseSubjectFromJWT(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sub != "alice" {
		t.Errorf("expected 'alice', got %q", sub)
	}
}

func TestParseSubjectFromJWT_Errors(t *testing.T) {
	if _, err := ParseSubjectFromJWT("not-a-jwt"); err == nil {
		t.Error("expected parse error")
	}

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "x"}).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseSubjectFromJWT(noSub); !errors.Is(err, ErrEmptySubject) {
		t.Errorf("expected ErrEmptySubject, got %v", err)
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "  bearer xyz  ", want: "xyz"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseBearerToken(tt.header)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidAuthorizationHeader) {
				t.Errorf("%q: expected ErrInvalidAuthorizationHeader, got %v", tt.header, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: expected %q, got %q (%v)", tt.header, tt.want, got, err)
		}
	}
}
