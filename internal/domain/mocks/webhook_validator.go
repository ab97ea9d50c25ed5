// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockWebhookValidator implements WebhookValidator for testing
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	args := m.Called(body, signature, timestamp)
	return args.Error(0)
}

func (m *MockWebhookValidator) ValidateVerificationToken(authorization string) error {
	args := m.Called(authorization)
	return args.Error(0)
}

func (m *MockWebhookValidator) GetSecretToken() string {
	args := m.Called()
	return args.String(0)
}
