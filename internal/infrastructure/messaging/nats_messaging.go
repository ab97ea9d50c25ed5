// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// DefaultRequestTimeout bounds a reprocess request.
const DefaultRequestTimeout = 60 * time.Second

// INatsConn is the subset of *nats.Conn used by the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
	Request(subj string, data []byte, timeout time.Duration) (*nats.Msg, error)
}

// MessageBuilder encodes service messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
	now      func() time.Time
}

var _ domain.ArchiveTrigger = (*MessageBuilder)(nil)

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
		now:      time.Now,
	}
}

// publish sends the message to the NATS server.
func (m *MessageBuilder) publish(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// request sends the message to the NATS server and waits for the reply.
func (m *MessageBuilder) request(ctx context.Context, subject string, data []byte, timeout time.Duration) (*nats.Msg, error) {
	msg, err := m.NatsConn.Request(subject, data, timeout)
	if err != nil {
		slog.ErrorContext(ctx, "error sending request to NATS", logging.ErrKey, err, "subject", subject)
		return nil, err
	}
	slog.DebugContext(ctx, "received NATS reply", "subject", subject)
	return msg, nil
}

// TriggerArchive publishes the meeting-ended event on ArchiveMeetingSubject,
// where one replica of the service picks it up.
func (m *MessageBuilder) TriggerArchive(ctx context.Context, event *models.WebhookEvent) error {
	if event == nil {
		return domain.NewValidationError("archive trigger event is required", domain.ErrMissingField)
	}
	if !m.NatsConn.IsConnected() {
		return domain.NewUnavailableError("NATS connection is not available")
	}

	data, err := msgpack.Marshal(models.ArchiveTriggerMessage{
		Event:       *event,
		PublishedAt: m.now().UTC(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling archive trigger into msgpack", logging.ErrKey, err)
		return domain.NewInternalError("failed to encode archive trigger", err)
	}

	if err := m.publish(ctx, models.ArchiveMeetingSubject, data); err != nil {
		return domain.NewUnavailableError("failed to publish archive trigger", err)
	}
	return nil
}

// RequestReprocess asks a running replica to archive the stored triggers of
// a meeting again and returns its summary.
func (m *MessageBuilder) RequestReprocess(ctx context.Context, meetingID int64, timeout time.Duration) (*models.ReprocessResponse, error) {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	data, err := json.Marshal(models.ReprocessRequest{MeetingID: meetingID})
	if err != nil {
		return nil, domain.NewInternalError("failed to encode reprocess request", err)
	}

	msg, err := m.request(ctx, models.ReprocessMeetingSubject, data, timeout)
	if err != nil {
		return nil, domain.NewUnavailableError("reprocess request failed", err)
	}
	// Handlers reply with an empty body when the request failed.
	if len(msg.Data) == 0 {
		return nil, domain.NewInternalError("reprocess request was rejected")
	}

	var response models.ReprocessResponse
	if err := json.Unmarshal(msg.Data, &response); err != nil {
		return nil, domain.NewInternalError("failed to decode reprocess response", err)
	}
	return &response, nil
}
