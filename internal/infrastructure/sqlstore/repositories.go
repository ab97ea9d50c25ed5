// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// WebhookEventRepository implements domain.WebhookEventRepository.
type WebhookEventRepository struct {
	db *gorm.DB
}

var _ domain.WebhookEventRepository = (*WebhookEventRepository)(nil)

// IsReady reports whether the database answers.
func (r *WebhookEventRepository) IsReady(ctx context.Context) bool {
	return ping(ctx, r.db)
}

// Create inserts an event, assigning a UID when it has none.
func (r *WebhookEventRepository) Create(ctx context.Context, event *models.WebhookEvent) error {
	if event.UID == "" {
		event.UID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(newWebhookEventRow(event)).Error; err != nil {
		return domain.NewInternalError("failed to create webhook event in store", err)
	}
	return nil
}

// Get retrieves an event by UID.
func (r *WebhookEventRepository) Get(ctx context.Context, eventUID string) (*models.WebhookEvent, error) {
	var row webhookEventRow
	err := r.db.WithContext(ctx).First(&row, "uid = ?", eventUID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("webhook event not found", domain.ErrWebhookEventNotFound)
		}
		return nil, domain.NewInternalError("failed to retrieve webhook event from store", err)
	}
	return row.model(), nil
}

// ListByMeeting returns a meeting's events ordered by timestamp.
func (r *WebhookEventRepository) ListByMeeting(ctx context.Context, meetingID int64) ([]*models.WebhookEvent, error) {
	var rows []webhookEventRow
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("timestamp asc").
		Find(&rows).Error
	if err != nil {
		return nil, domain.NewInternalError("failed to list webhook events", err)
	}

	events := make([]*models.WebhookEvent, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].model())
	}
	return events, nil
}

// Delete removes an event. Zero affected rows is not an error.
func (r *WebhookEventRepository) Delete(ctx context.Context, eventUID string) error {
	if err := r.db.WithContext(ctx).Delete(&webhookEventRow{}, "uid = ?", eventUID).Error; err != nil {
		return domain.NewInternalError("failed to delete webhook event from store", err)
	}
	return nil
}

// AttendanceRecordRepository implements the append-only ledger.
type AttendanceRecordRepository struct {
	db *gorm.DB
}

var _ domain.AttendanceRecordRepository = (*AttendanceRecordRepository)(nil)

// IsReady reports whether the database answers.
func (r *AttendanceRecordRepository) IsReady(ctx context.Context) bool {
	return ping(ctx, r.db)
}

// Create inserts a record under a fresh UID.
func (r *AttendanceRecordRepository) Create(ctx context.Context, record *models.MeetingAttendanceRecord) error {
	record.UID = uuid.New().String()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(newAttendanceRecordRow(record)).Error; err != nil {
		return domain.NewInternalError("failed to create attendance record in store", err)
	}
	return nil
}

// ListByMeeting returns a meeting's records, newest scheduled time first.
func (r *AttendanceRecordRepository) ListByMeeting(ctx context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("meeting_id = ?", meetingID))
}

// ListAll returns every record, newest scheduled time first.
func (r *AttendanceRecordRepository) ListAll(ctx context.Context) ([]*models.MeetingAttendanceRecord, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *AttendanceRecordRepository) list(ctx context.Context, stmt *gorm.DB) ([]*models.MeetingAttendanceRecord, error) {
	var rows []attendanceRecordRow
	if err := stmt.Order("scheduled_time desc, created_at asc").Find(&rows).Error; err != nil {
		return nil, domain.NewInternalError("failed to list attendance records", err)
	}

	records := make([]*models.MeetingAttendanceRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].model())
	}
	return records, nil
}

func ping(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
