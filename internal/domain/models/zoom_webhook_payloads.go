// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Zoom webhook event names handled by the service.
const (
	ZoomEventEndpointURLValidation  = "endpoint.url_validation"
	ZoomEventMeetingStarted         = "meeting.started"
	ZoomEventMeetingEnded           = "meeting.ended"
	ZoomEventJoinedWaitingRoom      = "meeting.participant_joined_waiting_room"
	ZoomEventRegistrationCreated    = "meeting.registration_created"
	zoomPayloadObjectKey            = "object"
	zoomPayloadParticipantKey       = "participant"
	zoomPayloadRegistrantKey        = "registrant"
	zoomPayloadMeetingIDKey         = "id"
	zoomPayloadValidationPlainToken = "plainToken"
)

// ZoomWebhookEventMessage is the body of an inbound Zoom webhook request.
type ZoomWebhookEventMessage struct {
	EventType string         `json:"event"`
	EventTS   int64          `json:"event_ts"`
	Payload   map[string]any `json:"payload"`
}

// ZoomMeetingObject is payload.object of meeting.started and meeting.ended.
type ZoomMeetingObject struct {
	UUID      string     `json:"uuid"`
	HostID    string     `json:"host_id"`
	Topic     string     `json:"topic"`
	Type      int        `json:"type"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  int        `json:"duration"`
	Timezone  string     `json:"timezone"`
	// OccurrenceID names the occurrence of a recurring meeting. Zoom sends it
	// either as a string or as a number.
	OccurrenceID json.Number `json:"occurrence_id,omitempty"`
}

// Window returns the [start_time, end_time] range when both are present.
func (o *ZoomMeetingObject) Window() (TimeWindow, bool) {
	if o.StartTime == nil || o.EndTime == nil || o.StartTime.IsZero() || o.EndTime.IsZero() {
		return TimeWindow{}, false
	}
	return TimeWindow{Start: o.StartTime.UTC(), End: o.EndTime.UTC()}, true
}

// ZoomParticipantPayload is payload.object.participant of waiting room events.
type ZoomParticipantPayload struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	UserName string     `json:"user_name"`
	Email    string     `json:"email"`
	JoinTime *time.Time `json:"join_time,omitempty"`
}

// ZoomRegistrantPayload is payload.object.registrant of registration events.
type ZoomRegistrantPayload struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

// EventKind maps the Zoom event name to the stored event kind.
func (z *ZoomWebhookEventMessage) EventKind() (WebhookEventKind, bool) {
	switch z.EventType {
	case ZoomEventMeetingStarted:
		return WebhookEventMeetingStarted, true
	case ZoomEventMeetingEnded:
		return WebhookEventMeetingEnded, true
	case ZoomEventJoinedWaitingRoom:
		return WebhookEventJoinedWaitingRoom, true
	case ZoomEventRegistrationCreated:
		return WebhookEventRegistrationCreated, true
	}
	return "", false
}

// PlainToken returns payload.plainToken of an endpoint.url_validation event.
func (z *ZoomWebhookEventMessage) PlainToken() string {
	token, _ := z.Payload[zoomPayloadValidationPlainToken].(string)
	return token
}

// object returns payload.object.
func (z *ZoomWebhookEventMessage) object() (map[string]any, error) {
	object, ok := z.Payload[zoomPayloadObjectKey].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("payload.object is missing or not an object")
	}
	return object, nil
}

// MeetingID returns payload.object.id, which Zoom sends as a number or a string.
func (z *ZoomWebhookEventMessage) MeetingID() (int64, error) {
	object, err := z.object()
	if err != nil {
		return 0, err
	}
	switch id := object[zoomPayloadMeetingIDKey].(type) {
	case float64:
		return int64(id), nil
	case json.Number:
		return id.Int64()
	case string:
		return strconv.ParseInt(id, 10, 64)
	case nil:
		return 0, fmt.Errorf("payload.object.id is missing")
	default:
		return 0, fmt.Errorf("payload.object.id has unexpected type %T", id)
	}
}

// StoredPayload returns the part of the payload kept on the WebhookEvent row:
// the participant or registrant sub-object for attendance events and the
// whole meeting object otherwise.
func (z *ZoomWebhookEventMessage) StoredPayload(kind WebhookEventKind) (json.RawMessage, error) {
	object, err := z.object()
	if err != nil {
		return nil, err
	}

	var stored any = object
	switch kind {
	case WebhookEventJoinedWaitingRoom:
		stored = object[zoomPayloadParticipantKey]
	case WebhookEventRegistrationCreated:
		stored = object[zoomPayloadRegistrantKey]
	}
	if stored == nil {
		return nil, fmt.Errorf("payload.object has no data for %s", kind)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return data, nil
}
