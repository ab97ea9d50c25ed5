// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// WebhookEventRepository stores buffered webhook events until archival purges them.
type WebhookEventRepository interface {
	IsReady(ctx context.Context) bool
	Create(ctx context.Context, event *models.WebhookEvent) error
	Get(ctx context.Context, eventUID string) (*models.WebhookEvent, error)
	ListByMeeting(ctx context.Context, meetingID int64) ([]*models.WebhookEvent, error)
	// Delete removes an event. Deleting an event that no longer exists is not an error.
	Delete(ctx context.Context, eventUID string) error
}

// AttendanceRecordRepository is the append-only attendance ledger.
type AttendanceRecordRepository interface {
	IsReady(ctx context.Context) bool
	Create(ctx context.Context, record *models.MeetingAttendanceRecord) error
	// ListByMeeting returns the records of one meeting, newest scheduled time first.
	ListByMeeting(ctx context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error)
	// ListAll returns every record, newest scheduled time first.
	ListAll(ctx context.Context) ([]*models.MeetingAttendanceRecord, error)
}
