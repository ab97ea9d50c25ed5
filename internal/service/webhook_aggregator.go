// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// WebhookAggregate is the webhook view of one meeting (or one occurrence).
type WebhookAggregate struct {
	// Events are the in-scope events, oldest first.
	Events []*models.WebhookEvent
	// RegistrantCount is the number of distinct names among registration_created events.
	RegistrantCount int
	// ParticipantCount is the number of distinct names among joined_waiting_room events.
	ParticipantCount int
}

// WebhookAggregator derives attendance counts from buffered webhook events.
type WebhookAggregator struct {
	events domain.WebhookEventRepository
}

// NewWebhookAggregator creates a new WebhookAggregator.
func NewWebhookAggregator(events domain.WebhookEventRepository) *WebhookAggregator {
	return &WebhookAggregator{events: events}
}

// Collect loads the events of a meeting and counts distinct display names.
// A nil window keeps every event of the meeting; otherwise only events whose
// timestamp falls inside the window, bounds included.
func (a *WebhookAggregator) Collect(ctx context.Context, meetingID int64, window *models.TimeWindow) (*WebhookAggregate, error) {
	events, err := a.events.ListByMeeting(ctx, meetingID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing webhook events", logging.ErrKey, err)
		return nil, err
	}

	aggregate := &WebhookAggregate{Events: make([]*models.WebhookEvent, 0, len(events))}
	registrants := make(map[string]struct{})
	participants := make(map[string]struct{})

	for _, event := range events {
		if window != nil && !window.Contains(event.Timestamp) {
			continue
		}
		aggregate.Events = append(aggregate.Events, event)

		var names map[string]struct{}
		switch event.Kind {
		case models.WebhookEventRegistrationCreated:
			names = registrants
		case models.WebhookEventJoinedWaitingRoom:
			names = participants
		default:
			continue
		}

		name, err := event.ParticipantName()
		if err != nil {
			slog.WarnContext(ctx, "skipping webhook event with unreadable payload",
				"event_uid", event.UID,
				logging.ErrKey, err,
			)
			continue
		}
		// Events without a display name cannot be told apart and are not counted.
		if name == "" {
			continue
		}
		names[name] = struct{}{}
	}

	aggregate.RegistrantCount = len(registrants)
	aggregate.ParticipantCount = len(participants)

	slog.DebugContext(ctx, "collected webhook events",
		"events", len(aggregate.Events),
		"registrants", aggregate.RegistrantCount,
		"participants", aggregate.ParticipantCount,
	)

	return aggregate, nil
}
