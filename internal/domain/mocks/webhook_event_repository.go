// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// MockWebhookEventRepository implements WebhookEventRepository for testing
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) IsReady(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockWebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockWebhookEventRepository) Get(ctx context.Context, eventUID string) (*models.WebhookEvent, error) {
	args := m.Called(ctx, eventUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) ListByMeeting(ctx context.Context, meetingID int64) ([]*models.WebhookEvent, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WebhookEvent), args.Error(1)
}

func (m *MockWebhookEventRepository) Delete(ctx context.Context, eventUID string) error {
	args := m.Called(ctx, eventUID)
	return args.Error(0)
}
