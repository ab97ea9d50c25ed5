// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package webhook

import (
	"log/slog"
)

// MockWebhookValidator accepts every request. It is only meant for local development.
type MockWebhookValidator struct {
	secretToken string
}

// NewMockWebhookValidator creates a new mock webhook validator. The secret is
// still used to answer URL validation challenges.
func NewMockWebhookValidator(secretToken string) *MockWebhookValidator {
	return &MockWebhookValidator{secretToken: secretToken}
}

// ValidateSignature always returns nil for mock mode
func (m *MockWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	slog.Debug("mock webhook validator - bypassing signature validation")
	return nil
}

// ValidateVerificationToken always returns nil for mock mode
func (m *MockWebhookValidator) ValidateVerificationToken(authorization string) error {
	slog.Debug("mock webhook validator - bypassing verification token")
	return nil
}

// GetSecretToken returns the configured secret, which may be empty.
func (m *MockWebhookValidator) GetSecretToken() string {
	return m.secretToken
}
