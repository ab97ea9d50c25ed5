// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WebhookEventKind is the kind of a buffered webhook event.
type WebhookEventKind string

const (
	WebhookEventMeetingStarted      WebhookEventKind = "meeting_started"
	WebhookEventMeetingEnded        WebhookEventKind = "meeting_ended"
	WebhookEventJoinedWaitingRoom   WebhookEventKind = "joined_waiting_room"
	WebhookEventRegistrationCreated WebhookEventKind = "registration_created"
)

// Valid reports whether the kind is one the service stores.
func (k WebhookEventKind) Valid() bool {
	switch k {
	case WebhookEventMeetingStarted, WebhookEventMeetingEnded,
		WebhookEventJoinedWaitingRoom, WebhookEventRegistrationCreated:
		return true
	}
	return false
}

// WebhookEvent is a webhook notification persisted until the archival of its
// meeting consumes it. Payload holds the event-specific object opaquely: the
// meeting object for meeting events, the participant or registrant object
// otherwise.
type WebhookEvent struct {
	UID       string           `json:"uid" msgpack:"uid"`
	Timestamp time.Time        `json:"timestamp" msgpack:"timestamp"`
	Kind      WebhookEventKind `json:"kind" msgpack:"kind"`
	MeetingID int64            `json:"meeting_id" msgpack:"meeting_id"`
	Payload   json.RawMessage  `json:"payload,omitempty" msgpack:"payload"`
}

// TimeWindow is an inclusive [Start, End] range.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, bounds included.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// DurationMinutes returns the window length in whole minutes.
func (w TimeWindow) DurationMinutes() int {
	if w.End.Before(w.Start) {
		return 0
	}
	return int(w.End.Sub(w.Start) / time.Minute)
}

// DisplayName joins the non-empty parts with a single space.
func DisplayName(parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, " ")
}

// MeetingObject decodes the payload of a meeting_started or meeting_ended event.
func (e *WebhookEvent) MeetingObject() (*ZoomMeetingObject, error) {
	if e.Kind != WebhookEventMeetingStarted && e.Kind != WebhookEventMeetingEnded {
		return nil, fmt.Errorf("invalid event kind: expected a meeting event, got %s", e.Kind)
	}
	var object ZoomMeetingObject
	if len(e.Payload) == 0 {
		return &object, nil
	}
	if err := json.Unmarshal(e.Payload, &object); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meeting object: %w", err)
	}
	return &object, nil
}

// ParticipantName returns the display name carried by a joined_waiting_room
// or registration_created event. Other kinds have no participant name.
func (e *WebhookEvent) ParticipantName() (string, error) {
	switch e.Kind {
	case WebhookEventJoinedWaitingRoom:
		var participant ZoomParticipantPayload
		if err := json.Unmarshal(e.Payload, &participant); err != nil {
			return "", fmt.Errorf("failed to unmarshal participant payload: %w", err)
		}
		return participant.UserName, nil
	case WebhookEventRegistrationCreated:
		var registrant ZoomRegistrantPayload
		if err := json.Unmarshal(e.Payload, &registrant); err != nil {
			return "", fmt.Errorf("failed to unmarshal registrant payload: %w", err)
		}
		return DisplayName(registrant.FirstName, registrant.LastName), nil
	default:
		return "", nil
	}
}
