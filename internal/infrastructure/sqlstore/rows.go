// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

type webhookEventRow struct {
	UID       string    `gorm:"primaryKey;size:36"`
	Timestamp time.Time `gorm:"index"`
	Kind      string    `gorm:"size:32"`
	MeetingID int64     `gorm:"index"`
	Payload   []byte
}

func (webhookEventRow) TableName() string { return "webhook_events" }

func newWebhookEventRow(e *models.WebhookEvent) *webhookEventRow {
	return &webhookEventRow{
		UID:       e.UID,
		Timestamp: e.Timestamp.UTC(),
		Kind:      string(e.Kind),
		MeetingID: e.MeetingID,
		Payload:   []byte(e.Payload),
	}
}

func (r *webhookEventRow) model() *models.WebhookEvent {
	return &models.WebhookEvent{
		UID:       r.UID,
		Timestamp: r.Timestamp.UTC(),
		Kind:      models.WebhookEventKind(r.Kind),
		MeetingID: r.MeetingID,
		Payload:   json.RawMessage(r.Payload),
	}
}

type attendanceRecordRow struct {
	UID              string    `gorm:"primaryKey;size:36"`
	MeetingID        int64     `gorm:"index"`
	Title            string
	Description      string
	ScheduledTime    time.Time `gorm:"index"`
	DurationMinutes  int
	RegistrantCount  int
	ParticipantCount int
	Source           string `gorm:"size:16"`
	CreatedAt        time.Time
}

func (attendanceRecordRow) TableName() string { return "meeting_attendance_records" }

func newAttendanceRecordRow(r *models.MeetingAttendanceRecord) *attendanceRecordRow {
	return &attendanceRecordRow{
		UID:              r.UID,
		MeetingID:        r.MeetingID,
		Title:            r.Title,
		Description:      r.Description,
		ScheduledTime:    r.ScheduledTime.UTC(),
		DurationMinutes:  r.DurationMinutes,
		RegistrantCount:  r.RegistrantCount,
		ParticipantCount: r.ParticipantCount,
		Source:           string(r.Source),
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

func (r *attendanceRecordRow) model() *models.MeetingAttendanceRecord {
	return &models.MeetingAttendanceRecord{
		UID:              r.UID,
		MeetingID:        r.MeetingID,
		Title:            r.Title,
		Description:      r.Description,
		ScheduledTime:    r.ScheduledTime.UTC(),
		DurationMinutes:  r.DurationMinutes,
		RegistrantCount:  r.RegistrantCount,
		ParticipantCount: r.ParticipantCount,
		Source:           models.AttendanceSource(r.Source),
		CreatedAt:        r.CreatedAt.UTC(),
	}
}
