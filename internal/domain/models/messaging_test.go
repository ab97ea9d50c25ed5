// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func TestMessagingSubjects(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{
			name:     "ArchiveMeetingSubject",
			subject:  ArchiveMeetingSubject,
			expected: "lfx.attendance-api.archive",
		},
		{
			name:     "ReprocessMeetingSubject",
			subject:  ReprocessMeetingSubject,
			expected: "lfx.attendance-api.reprocess",
		},
		{
			name:     "AttendanceAPIQueue",
			subject:  AttendanceAPIQueue,
			expected: "lfx.attendance-api.queue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.subject != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.subject)
			}
		})
	}
}

func TestArchiveTriggerMessage_PayloadSurvivesMsgpack(t *testing.T) {
	ended := time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC)
	message := ArchiveTriggerMessage{
		Event: WebhookEvent{
			UID:       "evt-1",
			Timestamp: ended,
			Kind:      WebhookEventMeetingEnded,
			MeetingID: 85012345678,
			Payload:   json.RawMessage(`{"id":"85012345678","topic":"TSC"}`),
		},
		PublishedAt: ended.Add(time.Second),
	}

	data, err := msgpack.Marshal(message)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded ArchiveTriggerMessage
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Event.MeetingID != message.Event.MeetingID {
		t.Errorf("expected meeting id %d, got %d", message.Event.MeetingID, decoded.Event.MeetingID)
	}
	if decoded.Event.Kind != WebhookEventMeetingEnded {
		t.Errorf("expected kind %q, got %q", WebhookEventMeetingEnded, decoded.Event.Kind)
	}
	if !decoded.Event.Timestamp.Equal(ended) {
		t.Errorf("expected timestamp %v, got %v", ended, decoded.Event.Timestamp)
	}

	object, err := decoded.Event.MeetingObject()
	if err != nil {
		t.Fatalf("meeting object: %v", err)
	}
	if object.Topic != "TSC" {
		t.Errorf("expected topic %q, got %q", "TSC", object.Topic)
	}
}

func TestReprocessResponse_OmitsEmptyErrors(t *testing.T) {
	data, err := json.Marshal(ReprocessResponse{MeetingID: 42, Attempts: 1, Records: 2})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "errors") {
		t.Errorf("expected no errors field, got %s", data)
	}

	var request ReprocessRequest
	if err := json.Unmarshal([]byte(`{"meeting_id":42}`), &request); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if request.MeetingID != 42 {
		t.Errorf("expected meeting id 42, got %d", request.MeetingID)
	}
}
