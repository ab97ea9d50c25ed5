// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// AttendanceSource tags where the counts of an attendance record came from.
type AttendanceSource string

const (
	AttendanceSourceAPI     AttendanceSource = "api"
	AttendanceSourceWebhook AttendanceSource = "webhook"
	AttendanceSourceError   AttendanceSource = "error"
)

// MeetingAttendanceRecord is one immutable ledger row. A meeting normally has
// one row per source.
type MeetingAttendanceRecord struct {
	UID              string           `json:"uid"`
	MeetingID        int64            `json:"meeting_id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	ScheduledTime    time.Time        `json:"scheduled_time"`
	DurationMinutes  int              `json:"duration_minutes"`
	RegistrantCount  int              `json:"registrant_count"`
	ParticipantCount int              `json:"participant_count"`
	Source           AttendanceSource `json:"source"`
	CreatedAt        time.Time        `json:"created_at"`
}
