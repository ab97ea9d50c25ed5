// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/service"
)

// Reprocessor runs archival again for the stored triggers of a meeting.
type Reprocessor interface {
	Reprocess(ctx context.Context, meetingID int64) (*models.ReprocessResponse, error)
}

// ArchiveHandler consumes archive triggers and reprocess requests from NATS.
type ArchiveHandler struct {
	archiver    service.Archiver
	reprocessor Reprocessor
	ready       func() bool
}

// NewArchiveHandler creates a new ArchiveHandler. The archival service
// usually plays both roles.
func NewArchiveHandler(archiver service.Archiver, reprocessor Reprocessor, ready func() bool) *ArchiveHandler {
	return &ArchiveHandler{
		archiver:    archiver,
		reprocessor: reprocessor,
		ready:       ready,
	}
}

// HandlerReady reports whether the handler can process messages.
func (h *ArchiveHandler) HandlerReady() bool {
	if h.archiver == nil || h.reprocessor == nil {
		return false
	}
	return h.ready == nil || h.ready()
}

// HandleMessage implements domain.MessageHandler.
func (h *ArchiveHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) ([]byte, error){
		models.ArchiveMeetingSubject:   h.HandleArchive,
		models.ReprocessMeetingSubject: h.HandleReprocess,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		h.respond(ctx, msg, nil)
		return
	}

	response, err := handler(ctx, msg)
	if err != nil {
		slog.ErrorContext(ctx, "error handling message", logging.ErrKey, err)
		h.respond(ctx, msg, nil)
		return
	}

	if msg.HasReply() {
		h.respond(ctx, msg, response)
		slog.DebugContext(ctx, "responded to NATS message")
	} else {
		slog.DebugContext(ctx, "handled NATS message (no reply expected)")
	}
}

func (h *ArchiveHandler) respond(ctx context.Context, msg domain.Message, data []byte) {
	if !msg.HasReply() {
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.ErrorContext(ctx, "error responding to NATS message", logging.ErrKey, err)
	}
}

// HandleArchive decodes an ArchiveTriggerMessage and archives its meeting.
// Archival failures are already recorded in the ledger, so they are logged
// and not redelivered.
func (h *ArchiveHandler) HandleArchive(ctx context.Context, msg domain.Message) ([]byte, error) {
	var trigger models.ArchiveTriggerMessage
	if err := msgpack.Unmarshal(msg.Data(), &trigger); err != nil {
		slog.ErrorContext(ctx, "failed to decode archive trigger", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid archive trigger message", err)
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_uid", trigger.Event.UID))
	slog.DebugContext(ctx, "received archive trigger", "published_at", trigger.PublishedAt)

	result, err := h.archiver.Archive(ctx, &trigger.Event)
	if err != nil {
		slog.WarnContext(ctx, "archival finished with an error record", logging.ErrKey, err)
		return nil, nil
	}

	slog.InfoContext(ctx, "archive trigger processed", "state", result.State, "records", len(result.Records))
	return nil, nil
}

// HandleReprocess decodes a JSON ReprocessRequest and replies with a JSON ReprocessResponse.
func (h *ArchiveHandler) HandleReprocess(ctx context.Context, msg domain.Message) ([]byte, error) {
	var request models.ReprocessRequest
	if err := json.Unmarshal(msg.Data(), &request); err != nil {
		slog.ErrorContext(ctx, "failed to decode reprocess request", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid reprocess request", err)
	}
	if request.MeetingID <= 0 {
		return nil, domain.NewValidationError("meeting_id is required", domain.ErrMissingField)
	}

	response, err := h.reprocessor.Reprocess(ctx, request.MeetingID)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(response)
	if err != nil {
		return nil, domain.NewInternalError("failed to encode reprocess response", err)
	}
	return data, nil
}
