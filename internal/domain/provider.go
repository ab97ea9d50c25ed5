// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// MeetingProvider is the read side of the video conferencing provider used by archival.
type MeetingProvider interface {
	GetMeeting(ctx context.Context, meetingID int64) (*models.MeetingDescriptor, error)
	GetRegistrants(ctx context.Context, meetingID int64) ([]models.ZoomRegistrant, error)
	GetParticipants(ctx context.Context, meetingID int64) ([]models.ZoomParticipant, error)
}

// WebhookValidator authenticates inbound webhook requests.
type WebhookValidator interface {
	// ValidateSignature checks the x-zm-signature header against the request body.
	ValidateSignature(body []byte, signature, timestamp string) error
	// ValidateVerificationToken checks the legacy authorization header token.
	ValidateVerificationToken(authorization string) error
	// GetSecretToken returns the secret used to answer URL validation challenges.
	GetSecretToken() string
}
