// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"log/slog"
	"sort"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// NatsWebhookEventRepository is the NATS KV implementation of domain.WebhookEventRepository.
// Events are stored under webhook-event/<uid> with an index entry
// index/meeting/<meeting id>/<uid> for per-meeting listing.
type NatsWebhookEventRepository struct {
	base       *NatsBaseRepository[models.WebhookEvent]
	keyBuilder *KeyBuilder
}

var _ domain.WebhookEventRepository = (*NatsWebhookEventRepository)(nil)

// NewNatsWebhookEventRepository creates a new NATS KV store repository for webhook events
func NewNatsWebhookEventRepository(kvStore INatsKeyValue) *NatsWebhookEventRepository {
	return &NatsWebhookEventRepository{
		base:       NewNatsBaseRepository[models.WebhookEvent](kvStore, "webhook event"),
		keyBuilder: NewKeyBuilder(""),
	}
}

// IsReady checks if the repository is ready
func (r *NatsWebhookEventRepository) IsReady(ctx context.Context) bool {
	return r.base.IsReady()
}

// Create stores an event, assigning a UID when it has none
func (r *NatsWebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	if event.UID == "" {
		event.UID = uuid.New().String()
	}

	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixWebhookEvent, event.UID)
	if err := r.base.Create(ctx, key, event); err != nil {
		return err
	}

	if err := r.base.PutIndex(ctx, r.keyBuilder.MeetingIndexKeyEncoded(event.MeetingID, event.UID)); err != nil {
		// Roll back so that the event is not left unreachable from its meeting.
		_ = r.base.DeleteWithoutRevision(ctx, key)
		return err
	}

	slog.DebugContext(ctx, "stored webhook event",
		"event_uid", event.UID,
		"kind", event.Kind,
		"meeting_id", event.MeetingID,
	)
	return nil
}

// Get retrieves an event by UID
func (r *NatsWebhookEventRepository) Get(ctx context.Context, eventUID string) (*models.WebhookEvent, error) {
	event, err := r.base.Get(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixWebhookEvent, eventUID))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError("webhook event not found", domain.ErrWebhookEventNotFound)
		}
		return nil, err
	}
	return event, nil
}

// ListByMeeting returns the stored events of a meeting ordered by timestamp
func (r *NatsWebhookEventRepository) ListByMeeting(ctx context.Context, meetingID int64) ([]*models.WebhookEvent, error) {
	indexKeys, err := r.base.ListDecodedKeys(ctx, r.keyBuilder.MeetingIndexPrefix(meetingID), r.keyBuilder)
	if err != nil {
		return nil, err
	}

	events := make([]*models.WebhookEvent, 0, len(indexKeys))
	for _, indexKey := range indexKeys {
		event, err := r.Get(ctx, lastSegment(indexKey))
		if err != nil {
			// A concurrent purge may have removed the event after the listing.
			slog.DebugContext(ctx, "skipping indexed webhook event",
				"index_key", indexKey, logging.ErrKey, err)
			continue
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

// Delete removes an event and its index entry. Deleting a missing event is a no-op.
func (r *NatsWebhookEventRepository) Delete(ctx context.Context, eventUID string) error {
	key := r.keyBuilder.EntityKeyEncoded(KeyPrefixWebhookEvent, eventUID)

	event, err := r.base.Get(ctx, key)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	if err := r.base.DeleteWithoutRevision(ctx, key); err != nil && !domain.IsNotFound(err) {
		return err
	}

	return r.base.DeleteIndex(ctx, r.keyBuilder.MeetingIndexKeyEncoded(event.MeetingID, eventUID))
}
