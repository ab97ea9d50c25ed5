// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// OccurrenceService resolves the occurrences of a recurring meeting.
type OccurrenceService interface {
	// OccurrencesBetween returns the occurrences starting within [from, to].
	// The descriptor's own occurrence list is preferred over the expansion
	// of its recurrence settings.
	OccurrencesBetween(meeting *models.MeetingDescriptor, from, to time.Time) []models.MeetingOccurrence

	// LatestOccurrence returns the last occurrence starting at or before at.
	LatestOccurrence(meeting *models.MeetingDescriptor, at time.Time) (*models.MeetingOccurrence, bool)
}
