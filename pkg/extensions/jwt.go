// Copyright (C) 2025 Ember Journal (dev@emberjournal.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// JWTAuthProvider validates HMAC-signed JWTs issued by the identity
// service. The subject claim carries the user ID.
//
// Thread-safe: the secret and issuer are read-only after construction.
type JWTAuthProvider struct {
	secret []byte
	issuer string
}

// NewJWTAuthProvider creates a provider that verifies HS256 tokens signed
// with secret. If issuer is non-empty, the iss claim must match.
func NewJWTAuthProvider(secret string, issuer string) (*JWTAuthProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret must not be empty")
	}
	return &JWTAuthProvider{secret: []byte(secret), issuer: issuer}, nil
}

// Validate implements AuthProvider.
//
// Signature, expiry, and (when configured) issuer are all enforced by the
// jwt library's parser options. Any parse failure maps to ErrUnauthorized
// so the middleware can return 401 without leaking parser detail.
func (p *JWTAuthProvider) Validate(_ context.Context, tokenString string) (*AuthInfo, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing bearer token: %w", ErrUnauthorized)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("token validation failed: %w", ErrUnauthorized)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject: %w", ErrUnauthorized)
	}

	info := &AuthInfo{
		UserID: sub,
		Claims: map[string]any(claims),
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	return info, nil
}

var _ AuthProvider = (*JWTAuthProvider)(nil)
