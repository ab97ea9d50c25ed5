// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/mocks"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/service"
)

// fakeArchival records archive and reprocess calls.
type fakeArchival struct {
	archived     []*models.WebhookEvent
	archiveErr   error
	reprocessed  []int64
	reprocessErr error
}

func (f *fakeArchival) Archive(_ context.Context, trigger *models.WebhookEvent) (*service.ArchivalResult, error) {
	f.archived = append(f.archived, trigger)
	if f.archiveErr != nil {
		return &service.ArchivalResult{State: service.ArchivalStateErrored}, f.archiveErr
	}
	return &service.ArchivalResult{State: service.ArchivalStatePurged}, nil
}

func (f *fakeArchival) Reprocess(_ context.Context, meetingID int64) (*models.ReprocessResponse, error) {
	f.reprocessed = append(f.reprocessed, meetingID)
	if f.reprocessErr != nil {
		return nil, f.reprocessErr
	}
	return &models.ReprocessResponse{MeetingID: meetingID, Attempts: 1, Records: 2}, nil
}

func archiveMessage(t *testing.T, event models.WebhookEvent) []byte {
	t.Helper()
	data, err := msgpack.Marshal(models.ArchiveTriggerMessage{Event: event, PublishedAt: time.Now().UTC()})
	require.NoError(t, err)
	return data
}

func TestArchiveHandler_HandleMessage(t *testing.T) {
	event := models.WebhookEvent{
		UID:       "trigger-uid",
		Timestamp: time.Date(2024, 6, 17, 16, 30, 0, 0, time.UTC),
		Kind:      models.WebhookEventMeetingEnded,
		MeetingID: 42,
		Payload:   json.RawMessage(`{"id":42,"topic":"Weekly sync"}`),
	}

	tests := []struct {
		name              string
		subject           string
		data              []byte
		hasReply          bool
		archival          *fakeArchival
		expectedArchived  int
		expectedReprocess []int64
		expectedResponse  []byte
		checkResponse     bool
	}{
		{
			name:             "archive trigger",
			subject:          models.ArchiveMeetingSubject,
			data:             archiveMessage(t, event),
			archival:         &fakeArchival{},
			expectedArchived: 1,
		},
		{
			name:             "archive failure is not redelivered",
			subject:          models.ArchiveMeetingSubject,
			data:             archiveMessage(t, event),
			archival:         &fakeArchival{archiveErr: errors.New("provider down")},
			expectedArchived: 1,
		},
		{
			name:     "invalid archive message",
			subject:  models.ArchiveMeetingSubject,
			data:     []byte("not msgpack"),
			archival: &fakeArchival{},
		},
		{
			name:              "reprocess replies with the summary",
			subject:           models.ReprocessMeetingSubject,
			data:              []byte(`{"meeting_id": 42}`),
			hasReply:          true,
			archival:          &fakeArchival{},
			expectedReprocess: []int64{42},
			expectedResponse:  []byte(`{"meeting_id":42,"attempts":1,"records":2}`),
			checkResponse:     true,
		},
		{
			name:             "reprocess without meeting id replies empty",
			subject:          models.ReprocessMeetingSubject,
			data:             []byte(`{}`),
			hasReply:         true,
			archival:         &fakeArchival{},
			expectedResponse: nil,
			checkResponse:    true,
		},
		{
			name:              "reprocess error replies empty",
			subject:           models.ReprocessMeetingSubject,
			data:              []byte(`{"meeting_id": 42}`),
			hasReply:          true,
			archival:          &fakeArchival{reprocessErr: errors.New("kv unavailable")},
			expectedReprocess: []int64{42},
			expectedResponse:  nil,
			checkResponse:     true,
		},
		{
			name:             "unknown subject replies empty",
			subject:          "lfx.attendance-api.unknown",
			hasReply:         true,
			archival:         &fakeArchival{},
			expectedResponse: nil,
			checkResponse:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewArchiveHandler(tt.archival, tt.archival, nil)
			msg := mocks.NewMockMessage(tt.subject, tt.data, tt.hasReply)

			handler.HandleMessage(context.Background(), msg)

			require.Len(t, tt.archival.archived, tt.expectedArchived)
			if tt.expectedArchived > 0 {
				assert.Equal(t, event.UID, tt.archival.archived[0].UID)
				assert.Equal(t, event.MeetingID, tt.archival.archived[0].MeetingID)
				assert.Equal(t, event.Timestamp, tt.archival.archived[0].Timestamp.UTC())
				assert.JSONEq(t, string(event.Payload), string(tt.archival.archived[0].Payload))
			}
			assert.Equal(t, tt.expectedReprocess, tt.archival.reprocessed)

			if tt.checkResponse {
				responses := msg.Responses()
				require.Len(t, responses, 1)
				if tt.expectedResponse == nil {
					assert.Empty(t, responses[0])
				} else {
					assert.JSONEq(t, string(tt.expectedResponse), string(responses[0]))
				}
			} else {
				assert.Empty(t, msg.Responses())
			}
		})
	}
}

func TestArchiveHandler_HandlerReady(t *testing.T) {
	archival := &fakeArchival{}

	assert.True(t, NewArchiveHandler(archival, archival, nil).HandlerReady())
	assert.True(t, NewArchiveHandler(archival, archival, func() bool { return true }).HandlerReady())
	assert.False(t, NewArchiveHandler(archival, archival, func() bool { return false }).HandlerReady())
	assert.False(t, NewArchiveHandler(nil, nil, nil).HandlerReady())
}
