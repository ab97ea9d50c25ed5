// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoomWebhookEventMessage_EventKind(t *testing.T) {
	tests := []struct {
		event    string
		expected WebhookEventKind
		ok       bool
	}{
		{"meeting.started", WebhookEventMeetingStarted, true},
		{"meeting.ended", WebhookEventMeetingEnded, true},
		{"meeting.participant_joined_waiting_room", WebhookEventJoinedWaitingRoom, true},
		{"meeting.registration_created", WebhookEventRegistrationCreated, true},
		{"recording.completed", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			msg := ZoomWebhookEventMessage{EventType: tt.event}
			kind, ok := msg.EventKind()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestZoomWebhookEventMessage_MeetingID(t *testing.T) {
	tests := []struct {
		name    string
		id      any
		want    int64
		wantErr bool
	}{
		{"number", float64(85746065432), 85746065432, false},
		{"string", "85746065432", 85746065432, false},
		{"json number", json.Number("42"), 42, false},
		{"missing", nil, 0, true},
		{"bad string", "abc", 0, true},
		{"bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ZoomWebhookEventMessage{Payload: map[string]any{"object": map[string]any{"id": tt.id}}}
			got, err := msg.MeetingID()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := (&ZoomWebhookEventMessage{Payload: map[string]any{}}).MeetingID()
	assert.Error(t, err)
}

func TestZoomWebhookEventMessage_StoredPayload(t *testing.T) {
	msg := ZoomWebhookEventMessage{
		EventType: ZoomEventJoinedWaitingRoom,
		Payload: map[string]any{
			"object": map[string]any{
				"id":          "123",
				"participant": map[string]any{"user_name": "Ada"},
			},
		},
	}

	stored, err := msg.StoredPayload(WebhookEventJoinedWaitingRoom)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_name":"Ada"}`, string(stored))

	stored, err = msg.StoredPayload(WebhookEventMeetingEnded)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"123","participant":{"user_name":"Ada"}}`, string(stored))

	_, err = msg.StoredPayload(WebhookEventRegistrationCreated)
	assert.Error(t, err)
}

func TestZoomWebhookEventMessage_PlainToken(t *testing.T) {
	msg := ZoomWebhookEventMessage{Payload: map[string]any{"plainToken": "qgg8vlvZRS6UYooatFL8Aw"}}
	assert.Equal(t, "qgg8vlvZRS6UYooatFL8Aw", msg.PlainToken())
	assert.Equal(t, "", (&ZoomWebhookEventMessage{}).PlainToken())
}

func TestZoomMeetingObject_OccurrenceID(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected string
	}{
		{"string", `{"id":"1","occurrence_id":"1718636400000"}`, "1718636400000"},
		{"number", `{"id":"1","occurrence_id":1718636400000}`, "1718636400000"},
		{"absent", `{"id":"1"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var object ZoomMeetingObject
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &object))
			assert.Equal(t, tt.expected, object.OccurrenceID.String())
		})
	}
}
