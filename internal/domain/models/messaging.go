// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects that the attendance service sends and receives messages on.
const (
	// ArchiveMeetingSubject carries a persisted meeting-ended event to the archival orchestrator.
	// The subject is of the form: lfx.attendance-api.archive
	ArchiveMeetingSubject = "lfx.attendance-api.archive"

	// ReprocessMeetingSubject requests a new archival pass for the stored
	// meeting-ended events of one meeting.
	// The subject is of the form: lfx.attendance-api.reprocess
	ReprocessMeetingSubject = "lfx.attendance-api.reprocess"

	// AttendanceAPIQueue is the subject name for the attendance API queue group.
	AttendanceAPIQueue = "lfx.attendance-api.queue"
)

// ArchiveTriggerMessage is the msgpack-encoded body of ArchiveMeetingSubject.
type ArchiveTriggerMessage struct {
	Event       WebhookEvent `msgpack:"event"`
	PublishedAt time.Time    `msgpack:"published_at"`
}

// ReprocessRequest is the JSON body of ReprocessMeetingSubject.
type ReprocessRequest struct {
	MeetingID int64 `json:"meeting_id"`
}

// ReprocessResponse is the JSON reply to a ReprocessRequest.
type ReprocessResponse struct {
	MeetingID int64    `json:"meeting_id"`
	Attempts  int      `json:"attempts"`
	Records   int      `json:"records"`
	Errors    []string `json:"errors,omitempty"`
}
