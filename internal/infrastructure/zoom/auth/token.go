// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package auth issues the signed tokens used to call the Zoom API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// DefaultTokenLifetime is the lifetime of a token when none is requested.
const DefaultTokenLifetime = 30 * time.Second

// ErrSigningKeyMissing is returned when the API key or secret is not configured.
// It is a configuration error and must not be retried.
var ErrSigningKeyMissing = errors.New("zoom api key or secret not configured")

// Config holds the JWT app credentials.
type Config struct {
	APIKey    string
	APISecret string
	// Optional: lifetime used by the oauth2.TokenSource implementation
	Lifetime time.Duration
}

// Token is a signed, short-lived credential. It is never persisted.
type Token struct {
	Value     string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer signs HS256 tokens carrying iss, iat and exp claims.
type Issuer struct {
	apiKey   string
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// Ensure that Issuer can back an oauth2 transport
var _ oauth2.TokenSource = (*Issuer)(nil)

// NewIssuer creates a token issuer. Missing credentials are reported by Issue.
func NewIssuer(config Config) *Issuer {
	if config.Lifetime <= 0 {
		config.Lifetime = DefaultTokenLifetime
	}
	return &Issuer{
		apiKey:   config.APIKey,
		secret:   []byte(config.APISecret),
		lifetime: config.Lifetime,
		now:      time.Now,
	}
}

// WithClock replaces the clock, for deterministic tokens in tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue signs a token valid for lifetime, or DefaultTokenLifetime when lifetime is not positive.
func (i *Issuer) Issue(lifetime time.Duration) (*Token, error) {
	if i.apiKey == "" || len(i.secret) == 0 {
		return nil, ErrSigningKeyMissing
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}

	issuedAt := i.now().UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(lifetime)

	claims := jwt.MapClaims{
		"iss": i.apiKey,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Token{
		Value:     signed,
		Issuer:    i.apiKey,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Token implements oauth2.TokenSource with the configured lifetime.
func (i *Issuer) Token() (*oauth2.Token, error) {
	token, err := i.Issue(i.lifetime)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		Expiry:      token.ExpiresAt,
	}, nil
}
