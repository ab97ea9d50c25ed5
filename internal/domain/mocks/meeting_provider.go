// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// MockMeetingProvider implements MeetingProvider for testing
type MockMeetingProvider struct {
	mock.Mock
}

func (m *MockMeetingProvider) GetMeeting(ctx context.Context, meetingID int64) (*models.MeetingDescriptor, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MeetingDescriptor), args.Error(1)
}

func (m *MockMeetingProvider) GetRegistrants(ctx context.Context, meetingID int64) ([]models.ZoomRegistrant, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ZoomRegistrant), args.Error(1)
}

func (m *MockMeetingProvider) GetParticipants(ctx context.Context, meetingID int64) ([]models.ZoomParticipant, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ZoomParticipant), args.Error(1)
}
