// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNopAuthProvider_AcceptsAnything(t *testing.T) {
	provider := &NopAuthProvider{}

	for _, token := range []string{"", "garbage", "Bearer abc"} {
		info, err := provider.Validate(context.Background(), token)
		if err != nil {
			t.Fatalf("Validate(%q) returned error: %v", token, err)
		}
		if info.UserID != "local-user" {
			t.Errorf("Expected local-user, got %q", info.UserID)
		}
	}
}

func TestDefaultOptions_NonNilProviders(t *testing.T) {
	opts := DefaultOptions()
	if opts.AuthProvider == nil {
		t.Fatal("DefaultOptions returned nil AuthProvider")
	}
}

func TestNormalize_FillsNilFields(t *testing.T) {
	opts := ServiceOptions{}.Normalize()
	if opts.AuthProvider == nil {
		t.Fatal("Normalize left AuthProvider nil")
	}
}

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return signed
}

func TestJWTAuthProvider_ValidToken(t *testing.T) {
	provider, err := NewJWTAuthProvider("test-secret", "ember")
	if err != nil {
		t.Fatalf("NewJWTAuthProvider failed: %v", err)
	}

	signed := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub":   "user-42",
		"iss":   "ember",
		"email": "user@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	info, err := provider.Validate(context.Background(), signed)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if info.UserID != "user-42" {
		t.Errorf("Expected user-42, got %q", info.UserID)
	}
	if info.Email != "user@example.com" {
		t.Errorf("Expected email claim, got %q", info.Email)
	}
}

func TestJWTAuthProvider_RejectsBadSignature(t *testing.T) {
	provider, _ := NewJWTAuthProvider("right-secret", "")

	signed := signTestToken(t, "wrong-secret", jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := provider.Validate(context.Background(), signed)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestJWTAuthProvider_RejectsExpired(t *testing.T) {
	provider, _ := NewJWTAuthProvider("test-secret", "")

	signed := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err := provider.Validate(context.Background(), signed)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for expired token, got %v", err)
	}
}

func TestJWTAuthProvider_RejectsWrongIssuer(t *testing.T) {
	provider, _ := NewJWTAuthProvider("test-secret", "ember")

	signed := signTestToken(t, "test-secret", jwt.MapClaims{
		"sub": "user-42",
		"iss": "someone-else",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := provider.Validate(context.Background(), signed)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for wrong issuer, got %v", err)
	}
}

func TestJWTAuthProvider_RejectsMissingSubject(t *testing.T) {
	provider, _ := NewJWTAuthProvider("test-secret", "")

	signed := signTestToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := provider.Validate(context.Background(), signed)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for missing sub, got %v", err)
	}
}

func TestJWTAuthProvider_EmptySecretRejected(t *testing.T) {
	if _, err := NewJWTAuthProvider("", ""); err == nil {
		t.Error("Expected error for empty secret")
	}
}
