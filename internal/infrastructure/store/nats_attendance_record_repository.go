// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// NatsAttendanceRecordRepository is the NATS KV implementation of the
// append-only attendance ledger.
type NatsAttendanceRecordRepository struct {
	base       *NatsBaseRepository[models.MeetingAttendanceRecord]
	keyBuilder *KeyBuilder
	now        func() time.Time
}

var _ domain.AttendanceRecordRepository = (*NatsAttendanceRecordRepository)(nil)

// NewNatsAttendanceRecordRepository creates a new NATS KV store repository for attendance records
func NewNatsAttendanceRecordRepository(kvStore INatsKeyValue) *NatsAttendanceRecordRepository {
	return &NatsAttendanceRecordRepository{
		base:       NewNatsBaseRepository[models.MeetingAttendanceRecord](kvStore, "attendance record"),
		keyBuilder: NewKeyBuilder(""),
		now:        time.Now,
	}
}

// IsReady checks if the repository is ready
func (r *NatsAttendanceRecordRepository) IsReady(ctx context.Context) bool {
	return r.base.IsReady()
}

// Create appends a record. Every record gets a fresh UID, so repeated
// archival of the same meeting adds rows instead of overwriting them.
func (r *NatsAttendanceRecordRepository) Create(ctx context.Context, record *models.MeetingAttendanceRecord) error {
	record.UID = uuid.New().String()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now().UTC()
	}

	if err := r.base.Create(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendanceRecord, record.UID), record); err != nil {
		return err
	}
	return r.base.PutIndex(ctx, r.keyBuilder.MeetingIndexKeyEncoded(record.MeetingID, record.UID))
}

// ListByMeeting returns the records of a meeting, newest scheduled time first
func (r *NatsAttendanceRecordRepository) ListByMeeting(ctx context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error) {
	indexKeys, err := r.base.ListDecodedKeys(ctx, r.keyBuilder.MeetingIndexPrefix(meetingID), r.keyBuilder)
	if err != nil {
		return nil, err
	}

	records := make([]*models.MeetingAttendanceRecord, 0, len(indexKeys))
	for _, indexKey := range indexKeys {
		record, err := r.base.Get(ctx, r.keyBuilder.EntityKeyEncoded(KeyPrefixAttendanceRecord, lastSegment(indexKey)))
		if err != nil {
			if domain.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		records = append(records, record)
	}

	SortRecords(records)
	return records, nil
}

// ListAll returns every record, newest scheduled time first
func (r *NatsAttendanceRecordRepository) ListAll(ctx context.Context) ([]*models.MeetingAttendanceRecord, error) {
	records, err := r.base.ListEntitiesEncoded(ctx, r.keyBuilder.EntityPrefix(KeyPrefixAttendanceRecord), r.keyBuilder)
	if err != nil {
		return nil, err
	}

	SortRecords(records)
	return records, nil
}

// SortRecords orders records by scheduled time descending, then by creation time.
func SortRecords(records []*models.MeetingAttendanceRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].ScheduledTime.Equal(records[j].ScheduledTime) {
			return records[i].ScheduledTime.After(records[j].ScheduledTime)
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
}
