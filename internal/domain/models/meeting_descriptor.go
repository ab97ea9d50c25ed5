// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package models

import "time"

// Zoom meeting types
const (
	MeetingTypeInstant              = 1
	MeetingTypeScheduled            = 2
	MeetingTypeRecurringNoFixedTime = 3
	MeetingTypeRecurringFixedTime   = 8
)

// ApprovalTypeAutomatic means registrants are approved without host action.
const ApprovalTypeAutomatic = 0

// MeetingDescriptor is the meeting metadata returned by the Zoom API.
type MeetingDescriptor struct {
	ID          int64               `json:"id" mapstructure:"id"`
	UUID        string              `json:"uuid" mapstructure:"uuid"`
	HostID      string              `json:"host_id" mapstructure:"host_id"`
	Type        int                 `json:"type" mapstructure:"type"`
	Topic       string              `json:"topic" mapstructure:"topic"`
	Agenda      string              `json:"agenda" mapstructure:"agenda"`
	StartTime   time.Time           `json:"start_time" mapstructure:"start_time"`
	Duration    int                 `json:"duration" mapstructure:"duration"`
	Timezone    string              `json:"timezone" mapstructure:"timezone"`
	Settings    MeetingSettings     `json:"settings" mapstructure:"settings"`
	Occurrences []MeetingOccurrence `json:"occurrences,omitempty" mapstructure:"occurrences"`
	Recurrence  *MeetingRecurrence  `json:"recurrence,omitempty" mapstructure:"recurrence"`
}

// MeetingSettings holds the settings the service reads.
type MeetingSettings struct {
	ApprovalType *int `json:"approval_type,omitempty" mapstructure:"approval_type"`
}

// MeetingOccurrence is one scheduled instance of a recurring meeting.
type MeetingOccurrence struct {
	OccurrenceID string    `json:"occurrence_id" mapstructure:"occurrence_id"`
	StartTime    time.Time `json:"start_time" mapstructure:"start_time"`
	Duration     int       `json:"duration" mapstructure:"duration"`
	Status       string    `json:"status" mapstructure:"status"`
}

// MeetingRecurrence mirrors the Zoom recurrence object.
type MeetingRecurrence struct {
	Type           int        `json:"type" mapstructure:"type"` // 1 daily, 2 weekly, 3 monthly
	RepeatInterval int        `json:"repeat_interval" mapstructure:"repeat_interval"`
	WeeklyDays     string     `json:"weekly_days,omitempty" mapstructure:"weekly_days"` // "1,3" with 1 = Sunday
	MonthlyDay     int        `json:"monthly_day,omitempty" mapstructure:"monthly_day"`
	MonthlyWeek    int        `json:"monthly_week,omitempty" mapstructure:"monthly_week"`         // -1 last, 1-4
	MonthlyWeekDay int        `json:"monthly_week_day,omitempty" mapstructure:"monthly_week_day"` // 1 = Sunday
	EndTimes       int        `json:"end_times,omitempty" mapstructure:"end_times"`
	EndDateTime    *time.Time `json:"end_date_time,omitempty" mapstructure:"end_date_time"`
}

// IsRecurring reports whether the meeting is a recurring series.
func (m *MeetingDescriptor) IsRecurring() bool {
	return m.Type == MeetingTypeRecurringNoFixedTime || m.Type == MeetingTypeRecurringFixedTime
}

// AutoApprovedRegistration reports whether registration is required and
// registrants are approved automatically.
func (m *MeetingDescriptor) AutoApprovedRegistration() bool {
	return m.Settings.ApprovalType != nil && *m.Settings.ApprovalType == ApprovalTypeAutomatic
}

// Occurrence looks up an occurrence by id.
func (m *MeetingDescriptor) Occurrence(occurrenceID string) (*MeetingOccurrence, bool) {
	if occurrenceID == "" {
		return nil, false
	}
	for i := range m.Occurrences {
		if m.Occurrences[i].OccurrenceID == occurrenceID {
			return &m.Occurrences[i], true
		}
	}
	return nil, false
}

// Window returns the scheduled [start, start+duration] range of the occurrence.
func (o MeetingOccurrence) Window() TimeWindow {
	return TimeWindow{
		Start: o.StartTime,
		End:   o.StartTime.Add(time.Duration(o.Duration) * time.Minute),
	}
}
