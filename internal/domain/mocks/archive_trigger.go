// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// MockArchiveTrigger implements ArchiveTrigger for testing
type MockArchiveTrigger struct {
	mock.Mock
}

func (m *MockArchiveTrigger) TriggerArchive(ctx context.Context, event *models.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
