// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/pkg/utils"
)

// WebhookIngestService authenticates Zoom webhook notifications, buffers the
// supported ones and hands meeting-ended events to archival.
type WebhookIngestService struct {
	events           domain.WebhookEventRepository
	webhookValidator domain.WebhookValidator
	archiveTrigger   domain.ArchiveTrigger
	config           ServiceConfig
}

// WebhookRequest represents the webhook processing request
type WebhookRequest struct {
	Event   string
	EventTS int64
	Payload map[string]any
	// Signature and Timestamp are the x-zm-signature and x-zm-request-timestamp headers.
	Signature string
	Timestamp string
	// Authorization is the legacy verification token header.
	Authorization string
	RawBody       []byte
}

// WebhookResponse represents the webhook processing response
type WebhookResponse struct {
	Status         *string `json:"status,omitempty"`
	Message        *string `json:"message,omitempty"`
	EventUID       *string `json:"event_uid,omitempty"`
	PlainToken     *string `json:"plainToken,omitempty"`
	EncryptedToken *string `json:"encryptedToken,omitempty"`
}

// NewWebhookIngestService creates a new WebhookIngestService
func NewWebhookIngestService(
	events domain.WebhookEventRepository,
	webhookValidator domain.WebhookValidator,
	archiveTrigger domain.ArchiveTrigger,
	config ServiceConfig,
) *WebhookIngestService {
	return &WebhookIngestService{
		events:           events,
		webhookValidator: webhookValidator,
		archiveTrigger:   archiveTrigger,
		config:           config,
	}
}

// ServiceReady checks if the service is ready to process requests
func (s *WebhookIngestService) ServiceReady() bool {
	return s.events != nil && s.webhookValidator != nil && s.archiveTrigger != nil &&
		s.events.IsReady(context.Background())
}

// ProcessWebhookEvent processes a Zoom webhook event
func (s *WebhookIngestService) ProcessWebhookEvent(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if err := s.authenticate(req); err != nil {
		slog.WarnContext(ctx, "rejected webhook request", "event_type", req.Event, logging.ErrKey, err)
		return nil, err
	}

	ctx = logging.AppendCtx(ctx, slog.String("event_type", req.Event))

	message := models.ZoomWebhookEventMessage{
		EventType: req.Event,
		EventTS:   req.EventTS,
		Payload:   req.Payload,
	}

	if req.Event == models.ZoomEventEndpointURLValidation {
		return s.handleEndpointValidation(ctx, message)
	}

	return s.processRegularEvent(ctx, message)
}

// validateRequest validates the webhook request structure
func (s *WebhookIngestService) validateRequest(req WebhookRequest) error {
	if req.Event == "" {
		return domain.NewValidationError("missing event field")
	}

	if req.Payload == nil {
		return domain.NewValidationError("missing payload field")
	}

	return nil
}

// authenticate accepts either a valid x-zm-signature or the legacy
// verification token in the Authorization header.
func (s *WebhookIngestService) authenticate(req WebhookRequest) error {
	switch {
	case req.Signature != "":
		if err := s.webhookValidator.ValidateSignature(req.RawBody, req.Signature, req.Timestamp); err != nil {
			return domain.NewUnauthorizedError("invalid webhook signature", err)
		}
	case req.Authorization != "":
		if err := s.webhookValidator.ValidateVerificationToken(req.Authorization); err != nil {
			return domain.NewUnauthorizedError("bad authorization", err)
		}
	default:
		return domain.NewUnauthorizedError("missing webhook credentials")
	}
	return nil
}

// handleEndpointValidation answers the endpoint.url_validation challenge
func (s *WebhookIngestService) handleEndpointValidation(ctx context.Context, message models.ZoomWebhookEventMessage) (*WebhookResponse, error) {
	plainToken := message.PlainToken()
	if plainToken == "" {
		slog.ErrorContext(ctx, "missing plainToken in validation payload")
		return nil, domain.NewValidationError("missing plainToken in validation payload")
	}

	secretToken := s.webhookValidator.GetSecretToken()
	if secretToken == "" {
		slog.ErrorContext(ctx, "zoom webhook secret token not configured")
		return nil, domain.NewInternalError("webhook validation not configured")
	}

	h := hmac.New(sha256.New, []byte(secretToken))
	h.Write([]byte(plainToken))
	encryptedToken := hex.EncodeToString(h.Sum(nil))

	slog.InfoContext(ctx, "zoom webhook endpoint validation completed")

	return &WebhookResponse{
		PlainToken:     utils.StringPtr(plainToken),
		EncryptedToken: utils.StringPtr(encryptedToken),
	}, nil
}

// processRegularEvent buffers a supported event and triggers archival for
// meeting.ended.
func (s *WebhookIngestService) processRegularEvent(ctx context.Context, message models.ZoomWebhookEventMessage) (*WebhookResponse, error) {
	kind, ok := message.EventKind()
	if !ok {
		slog.WarnContext(ctx, "unsupported zoom webhook event type")
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported event type: %s", message.EventType), domain.ErrUnsupportedEvent)
	}

	meetingID, err := message.MeetingID()
	if err != nil {
		slog.WarnContext(ctx, "webhook payload has no meeting id", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid meeting id in webhook payload", err)
	}
	ctx = logging.AppendCtx(ctx, slog.Int64("meeting_id", meetingID))

	payload, err := message.StoredPayload(kind)
	if err != nil {
		slog.WarnContext(ctx, "webhook payload is missing event data", logging.ErrKey, err)
		return nil, domain.NewValidationError("invalid webhook payload", err)
	}

	event := &models.WebhookEvent{
		Timestamp: s.eventTime(message.EventTS),
		Kind:      kind,
		MeetingID: meetingID,
		Payload:   payload,
	}
	if err := s.events.Create(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to store webhook event", logging.ErrKey, err)
		return nil, err
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_uid", event.UID))

	if kind == models.WebhookEventMeetingEnded {
		// The event is stored, so a failed trigger can be recovered by reprocessing.
		if err := s.archiveTrigger.TriggerArchive(ctx, event); err != nil {
			slog.ErrorContext(ctx, "failed to trigger meeting archival",
				logging.ErrKey, err,
				logging.PriorityCritical(),
			)
			return &WebhookResponse{
				Status:   utils.StringPtr("accepted"),
				Message:  utils.StringPtr(fmt.Sprintf("Event %s stored, archival pending reprocessing", message.EventType)),
				EventUID: utils.StringPtr(event.UID),
			}, nil
		}
	}

	slog.InfoContext(ctx, "zoom webhook event stored")

	return &WebhookResponse{
		Status:   utils.StringPtr("success"),
		Message:  utils.StringPtr(fmt.Sprintf("Event %s received", message.EventType)),
		EventUID: utils.StringPtr(event.UID),
	}, nil
}

// eventTime converts event_ts (epoch milliseconds) to UTC, falling back to
// the service clock.
func (s *WebhookIngestService) eventTime(eventTS int64) time.Time {
	if eventTS <= 0 {
		return s.config.now()
	}
	return time.UnixMilli(eventTS).UTC()
}
