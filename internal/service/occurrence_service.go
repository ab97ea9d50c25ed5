// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// Zoom recurrence types
const (
	recurrenceDaily   = 1
	recurrenceWeekly  = 2
	recurrenceMonthly = 3
)

// zoomWeekdays maps Zoom day numbers (1 = Sunday) to rrule weekdays.
var zoomWeekdays = map[int]rrule.Weekday{
	1: rrule.SU,
	2: rrule.MO,
	3: rrule.TU,
	4: rrule.WE,
	5: rrule.TH,
	6: rrule.FR,
	7: rrule.SA,
}

// OccurrenceService implements the domain.OccurrenceService interface
type OccurrenceService struct{}

var _ domain.OccurrenceService = (*OccurrenceService)(nil)

// NewOccurrenceService creates a new OccurrenceService
func NewOccurrenceService() *OccurrenceService {
	return &OccurrenceService{}
}

// OccurrencesBetween returns the occurrences starting within [from, to]
func (s *OccurrenceService) OccurrencesBetween(meeting *models.MeetingDescriptor, from, to time.Time) []models.MeetingOccurrence {
	if meeting == nil || to.Before(from) {
		return nil
	}

	if len(meeting.Occurrences) > 0 {
		var occurrences []models.MeetingOccurrence
		for _, o := range sortedOccurrences(meeting.Occurrences) {
			if !o.StartTime.Before(from) && !o.StartTime.After(to) {
				occurrences = append(occurrences, o)
			}
		}
		return occurrences
	}

	rule, ok := s.rule(meeting)
	if !ok {
		if !meeting.StartTime.Before(from) && !meeting.StartTime.After(to) {
			return []models.MeetingOccurrence{s.createOccurrence(meeting, meeting.StartTime)}
		}
		return nil
	}

	starts := rule.Between(from, to, true)
	occurrences := make([]models.MeetingOccurrence, 0, len(starts))
	for _, start := range starts {
		occurrences = append(occurrences, s.createOccurrence(meeting, start))
	}
	return occurrences
}

// LatestOccurrence returns the last occurrence starting at or before at
func (s *OccurrenceService) LatestOccurrence(meeting *models.MeetingDescriptor, at time.Time) (*models.MeetingOccurrence, bool) {
	if meeting == nil {
		return nil, false
	}

	if len(meeting.Occurrences) > 0 {
		sorted := sortedOccurrences(meeting.Occurrences)
		for i := len(sorted) - 1; i >= 0; i-- {
			if !sorted[i].StartTime.After(at) {
				return &sorted[i], true
			}
		}
		return nil, false
	}

	rule, ok := s.rule(meeting)
	if !ok {
		return nil, false
	}

	start := rule.Before(at, true)
	if start.IsZero() {
		return nil, false
	}
	occurrence := s.createOccurrence(meeting, start)
	return &occurrence, true
}

// rule builds the recurrence rule of a meeting in its own timezone, so that
// wall-clock start times survive daylight saving changes.
func (s *OccurrenceService) rule(meeting *models.MeetingDescriptor) (*rrule.RRule, bool) {
	recurrence := meeting.Recurrence
	if recurrence == nil || meeting.StartTime.IsZero() {
		return nil, false
	}

	// Load the meeting timezone
	loc, err := time.LoadLocation(meeting.Timezone)
	if err != nil {
		loc = time.UTC
	}

	interval := recurrence.RepeatInterval
	if interval <= 0 {
		interval = 1
	}

	option := rrule.ROption{
		Dtstart:  meeting.StartTime.In(loc),
		Interval: interval,
		Count:    recurrence.EndTimes,
	}
	if recurrence.EndDateTime != nil {
		option.Until = *recurrence.EndDateTime
	}

	switch recurrence.Type {
	case recurrenceDaily:
		option.Freq = rrule.DAILY
	case recurrenceWeekly:
		option.Freq = rrule.WEEKLY
		option.Byweekday = parseWeeklyDays(recurrence.WeeklyDays)
	case recurrenceMonthly:
		option.Freq = rrule.MONTHLY
		if recurrence.MonthlyDay > 0 {
			option.Bymonthday = []int{recurrence.MonthlyDay}
		} else if day, ok := zoomWeekdays[recurrence.MonthlyWeekDay]; ok && recurrence.MonthlyWeek != 0 {
			option.Byweekday = []rrule.Weekday{day.Nth(recurrence.MonthlyWeek)}
		}
	default:
		return nil, false
	}

	rule, err := rrule.NewRRule(option)
	if err != nil {
		return nil, false
	}
	return rule, true
}

// createOccurrence creates an occurrence at start using the meeting duration.
// Zoom identifies occurrences by their start time in unix milliseconds.
func (s *OccurrenceService) createOccurrence(meeting *models.MeetingDescriptor, start time.Time) models.MeetingOccurrence {
	return models.MeetingOccurrence{
		OccurrenceID: strconv.FormatInt(start.UnixMilli(), 10),
		StartTime:    start.UTC(),
		Duration:     meeting.Duration,
		Status:       "available",
	}
}

// parseWeeklyDays parses a comma-separated Zoom weekday list such as "2,4".
func parseWeeklyDays(weeklyDays string) []rrule.Weekday {
	var days []rrule.Weekday
	for _, part := range strings.Split(weeklyDays, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if day, ok := zoomWeekdays[n]; ok {
			days = append(days, day)
		}
	}
	return days
}

func sortedOccurrences(occurrences []models.MeetingOccurrence) []models.MeetingOccurrence {
	sorted := append([]models.MeetingOccurrence(nil), occurrences...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})
	return sorted
}
