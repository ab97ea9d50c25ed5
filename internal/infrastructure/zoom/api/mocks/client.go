// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mocks

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/zoom/api"
)

// MockClient is a function-field mock of the Zoom API client.
// Unset functions return zero values.
type MockClient struct {
	ListUpcomingMeetingsFunc func(ctx context.Context, userRef, meetingType string) ([]models.MeetingDescriptor, error)
	GetMeetingFunc           func(ctx context.Context, meetingID int64) (*models.MeetingDescriptor, error)
	UpdateMeetingFunc        func(ctx context.Context, meetingID int64, fields map[string]any) error
	CreateMeetingFunc        func(ctx context.Context, userRef string, fields map[string]any) (api.Document, error)
	GetRegistrantsFunc       func(ctx context.Context, meetingID int64) ([]models.ZoomRegistrant, error)
	GetParticipantsFunc      func(ctx context.Context, meetingID int64) ([]models.ZoomParticipant, error)
}

// NewMockClient creates a new mock client with default implementations
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Ensure MockClient implements ClientAPI interface
var _ api.ClientAPI = (*MockClient)(nil)

// ListUpcomingMeetings mocks the ListUpcomingMeetings method
func (m *MockClient) ListUpcomingMeetings(ctx context.Context, userRef, meetingType string) ([]models.MeetingDescriptor, error) {
	if m.ListUpcomingMeetingsFunc != nil {
		return m.ListUpcomingMeetingsFunc(ctx, userRef, meetingType)
	}
	return nil, nil
}

// GetMeeting mocks the GetMeeting method
func (m *MockClient) GetMeeting(ctx context.Context, meetingID int64) (*models.MeetingDescriptor, error) {
	if m.GetMeetingFunc != nil {
		return m.GetMeetingFunc(ctx, meetingID)
	}
	approval := models.ApprovalTypeAutomatic
	return &models.MeetingDescriptor{
		ID:       meetingID,
		Type:     models.MeetingTypeScheduled,
		Topic:    "Mock Meeting",
		Settings: models.MeetingSettings{ApprovalType: &approval},
	}, nil
}

// UpdateMeeting mocks the UpdateMeeting method
func (m *MockClient) UpdateMeeting(ctx context.Context, meetingID int64, fields map[string]any) error {
	if m.UpdateMeetingFunc != nil {
		return m.UpdateMeetingFunc(ctx, meetingID, fields)
	}
	return nil
}

// CreateMeeting mocks the CreateMeeting method
func (m *MockClient) CreateMeeting(ctx context.Context, userRef string, fields map[string]any) (api.Document, error) {
	if m.CreateMeetingFunc != nil {
		return m.CreateMeetingFunc(ctx, userRef, fields)
	}
	return api.Document{"id": int64(123456789)}, nil
}

// GetRegistrants mocks the GetRegistrants method
func (m *MockClient) GetRegistrants(ctx context.Context, meetingID int64) ([]models.ZoomRegistrant, error) {
	if m.GetRegistrantsFunc != nil {
		return m.GetRegistrantsFunc(ctx, meetingID)
	}
	return nil, nil
}

// GetParticipants mocks the GetParticipants method
func (m *MockClient) GetParticipants(ctx context.Context, meetingID int64) ([]models.ZoomParticipant, error) {
	if m.GetParticipantsFunc != nil {
		return m.GetParticipantsFunc(ctx, meetingID)
	}
	return nil, nil
}
