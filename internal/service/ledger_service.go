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

// LedgerService reads the attendance ledger.
type LedgerService struct {
	records domain.AttendanceRecordRepository
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(records domain.AttendanceRecordRepository) *LedgerService {
	return &LedgerService{records: records}
}

// ServiceReady checks if the service is ready for use.
func (s *LedgerService) ServiceReady() bool {
	return s.records != nil && s.records.IsReady(context.Background())
}

// ListRecords returns the records of a meeting, or of every meeting when
// meetingID is zero, newest scheduled time first.
func (s *LedgerService) ListRecords(ctx context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error) {
	var (
		records []*models.MeetingAttendanceRecord
		err     error
	)
	if meetingID == 0 {
		records, err = s.records.ListAll(ctx)
	} else {
		records, err = s.records.ListByMeeting(ctx, meetingID)
	}
	if err != nil {
		slog.ErrorContext(ctx, "error listing attendance records", logging.ErrKey, err, "meeting_id", meetingID)
		return nil, err
	}
	return records, nil
}
