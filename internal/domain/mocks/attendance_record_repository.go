// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// MockAttendanceRecordRepository implements AttendanceRecordRepository for testing
type MockAttendanceRecordRepository struct {
	mock.Mock
}

func (m *MockAttendanceRecordRepository) IsReady(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *MockAttendanceRecordRepository) Create(ctx context.Context, record *models.MeetingAttendanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAttendanceRecordRepository) ListByMeeting(ctx context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingAttendanceRecord), args.Error(1)
}

func (m *MockAttendanceRecordRepository) ListAll(ctx context.Context) ([]*models.MeetingAttendanceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MeetingAttendanceRecord), args.Error(1)
}
