// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

func TestOccurrenceService_OccurrencesBetween(t *testing.T) {
	service := NewOccurrenceService()
	start := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC) // Monday

	tests := []struct {
		name          string
		meeting       *models.MeetingDescriptor
		from, to      time.Time
		expectedDates []time.Time
	}{
		{
			name:    "nil meeting",
			meeting: nil,
			from:    start,
			to:      start.AddDate(0, 1, 0),
		},
		{
			name:          "meeting without recurrence",
			meeting:       &models.MeetingDescriptor{StartTime: start, Duration: 60, Timezone: "UTC"},
			from:          start.AddDate(0, 0, -1),
			to:            start.AddDate(0, 0, 1),
			expectedDates: []time.Time{start},
		},
		{
			name: "daily every second day",
			meeting: &models.MeetingDescriptor{
				StartTime:  start,
				Duration:   30,
				Timezone:   "UTC",
				Recurrence: &models.MeetingRecurrence{Type: 1, RepeatInterval: 2},
			},
			from: start,
			to:   start.AddDate(0, 0, 5),
			expectedDates: []time.Time{
				start,
				start.AddDate(0, 0, 2),
				start.AddDate(0, 0, 4),
			},
		},
		{
			name: "weekly on monday and wednesday",
			meeting: &models.MeetingDescriptor{
				StartTime:  start,
				Duration:   60,
				Timezone:   "UTC",
				Recurrence: &models.MeetingRecurrence{Type: 2, RepeatInterval: 1, WeeklyDays: "2,4"},
			},
			from: start,
			to:   start.AddDate(0, 0, 8),
			expectedDates: []time.Time{
				start,
				start.AddDate(0, 0, 2),
				start.AddDate(0, 0, 7),
			},
		},
		{
			name: "monthly by day with end count",
			meeting: &models.MeetingDescriptor{
				StartTime:  start,
				Duration:   60,
				Timezone:   "UTC",
				Recurrence: &models.MeetingRecurrence{Type: 3, RepeatInterval: 1, MonthlyDay: 3, EndTimes: 2},
			},
			from: start,
			to:   start.AddDate(1, 0, 0),
			expectedDates: []time.Time{
				start,
				start.AddDate(0, 1, 0),
			},
		},
		{
			name: "descriptor occurrences win over expansion",
			meeting: &models.MeetingDescriptor{
				StartTime:  start,
				Duration:   60,
				Recurrence: &models.MeetingRecurrence{Type: 1, RepeatInterval: 1},
				Occurrences: []models.MeetingOccurrence{
					{OccurrenceID: "b", StartTime: start.AddDate(0, 0, 7), Duration: 60},
					{OccurrenceID: "a", StartTime: start, Duration: 60},
				},
			},
			from:          start,
			to:            start.AddDate(0, 1, 0),
			expectedDates: []time.Time{start, start.AddDate(0, 0, 7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occurrences := service.OccurrencesBetween(tt.meeting, tt.from, tt.to)
			require.Len(t, occurrences, len(tt.expectedDates))
			for i, want := range tt.expectedDates {
				assert.True(t, want.Equal(occurrences[i].StartTime), "occurrence %d: want %v, got %v", i, want, occurrences[i].StartTime)
			}
		})
	}
}

func TestOccurrenceService_LatestOccurrence(t *testing.T) {
	service := NewOccurrenceService()
	start := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	weekly := &models.MeetingDescriptor{
		StartTime:  start,
		Duration:   45,
		Timezone:   "UTC",
		Recurrence: &models.MeetingRecurrence{Type: 2, RepeatInterval: 1, WeeklyDays: "2"},
	}

	t.Run("expanded recurrence", func(t *testing.T) {
		occurrence, ok := service.LatestOccurrence(weekly, start.AddDate(0, 0, 15))
		require.True(t, ok)
		assert.True(t, start.AddDate(0, 0, 14).Equal(occurrence.StartTime))
		assert.Equal(t, 45, occurrence.Duration)
		assert.Equal(t, "1718636400000", occurrence.OccurrenceID)
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		occurrence, ok := service.LatestOccurrence(weekly, start.AddDate(0, 0, 7))
		require.True(t, ok)
		assert.True(t, start.AddDate(0, 0, 7).Equal(occurrence.StartTime))
	})

	t.Run("before the series starts", func(t *testing.T) {
		_, ok := service.LatestOccurrence(weekly, start.Add(-time.Hour))
		assert.False(t, ok)
	})

	t.Run("descriptor occurrences", func(t *testing.T) {
		meeting := &models.MeetingDescriptor{
			Occurrences: []models.MeetingOccurrence{
				{OccurrenceID: "1", StartTime: start},
				{OccurrenceID: "3", StartTime: start.AddDate(0, 0, 14)},
				{OccurrenceID: "2", StartTime: start.AddDate(0, 0, 7)},
			},
		}
		occurrence, ok := service.LatestOccurrence(meeting, start.AddDate(0, 0, 10))
		require.True(t, ok)
		assert.Equal(t, "2", occurrence.OccurrenceID)
	})

	t.Run("no recurrence", func(t *testing.T) {
		_, ok := service.LatestOccurrence(&models.MeetingDescriptor{StartTime: start}, start)
		assert.False(t, ok)
	})
}

func TestOccurrenceService_KeepsWallClockAcrossDST(t *testing.T) {
	service := NewOccurrenceService()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	start := time.Date(2024, 3, 4, 10, 0, 0, 0, loc) // before DST begins
	meeting := &models.MeetingDescriptor{
		StartTime:  start.UTC(),
		Duration:   60,
		Timezone:   "America/New_York",
		Recurrence: &models.MeetingRecurrence{Type: 2, RepeatInterval: 1, WeeklyDays: "2"},
	}

	occurrences := service.OccurrencesBetween(meeting, start, start.AddDate(0, 0, 14))
	require.Len(t, occurrences, 3)
	assert.Equal(t, 10, occurrences[2].StartTime.In(loc).Hour())
}
