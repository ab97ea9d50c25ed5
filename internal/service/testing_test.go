// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// memoryEvents is an in-memory WebhookEventRepository.
type memoryEvents struct {
	mu        sync.Mutex
	events    map[string]*models.WebhookEvent
	deleteErr error
	listErr   error
}

func newMemoryEvents(events ...*models.WebhookEvent) *memoryEvents {
	m := &memoryEvents{events: make(map[string]*models.WebhookEvent)}
	for _, e := range events {
		m.events[e.UID] = e
	}
	return m
}

func (m *memoryEvents) IsReady(context.Context) bool { return true }

func (m *memoryEvents) Create(_ context.Context, event *models.WebhookEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	event.UID = uuid.New().String()
	m.events[event.UID] = event
	return nil
}

func (m *memoryEvents) Get(_ context.Context, uid string) (*models.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	event, ok := m.events[uid]
	if !ok {
		return nil, domain.NewNotFoundError("webhook event not found", domain.ErrWebhookEventNotFound)
	}
	return event, nil
}

func (m *memoryEvents) ListByMeeting(_ context.Context, meetingID int64) ([]*models.WebhookEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var events []*models.WebhookEvent
	for _, e := range m.events {
		if e.MeetingID == meetingID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.Before(events[j].Timestamp) })
	return events, nil
}

func (m *memoryEvents) Delete(_ context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.events, uid)
	return nil
}

func (m *memoryEvents) has(uid string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.events[uid]
	return ok
}

func (m *memoryEvents) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

// memoryRecords is an in-memory AttendanceRecordRepository.
type memoryRecords struct {
	mu        sync.Mutex
	records   []*models.MeetingAttendanceRecord
	createErr func(*models.MeetingAttendanceRecord) error
}

func (m *memoryRecords) IsReady(context.Context) bool { return true }

func (m *memoryRecords) Create(_ context.Context, record *models.MeetingAttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		if err := m.createErr(record); err != nil {
			return err
		}
	}
	record.UID = uuid.New().String()
	record.CreatedAt = time.Now().UTC()
	m.records = append(m.records, record)
	return nil
}

func (m *memoryRecords) ListByMeeting(_ context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*models.MeetingAttendanceRecord
	for _, r := range m.records {
		if r.MeetingID == meetingID {
			records = append(records, r)
		}
	}
	return records, nil
}

func (m *memoryRecords) ListAll(context.Context) ([]*models.MeetingAttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.MeetingAttendanceRecord(nil), m.records...), nil
}

func (m *memoryRecords) bySource(source models.AttendanceSource) []*models.MeetingAttendanceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var records []*models.MeetingAttendanceRecord
	for _, r := range m.records {
		if r.Source == source {
			records = append(records, r)
		}
	}
	return records
}

func testEvent(t *testing.T, uid string, kind models.WebhookEventKind, meetingID int64, at time.Time, payload any) *models.WebhookEvent {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return &models.WebhookEvent{
		UID:       uid,
		Timestamp: at,
		Kind:      kind,
		MeetingID: meetingID,
		Payload:   data,
	}
}

func waitingRoomEvent(t *testing.T, uid string, meetingID int64, at time.Time, name string) *models.WebhookEvent {
	return testEvent(t, uid, models.WebhookEventJoinedWaitingRoom, meetingID, at, map[string]any{"user_name": name})
}

func registrationEvent(t *testing.T, uid string, meetingID int64, at time.Time, first, last string) *models.WebhookEvent {
	return testEvent(t, uid, models.WebhookEventRegistrationCreated, meetingID, at, map[string]any{
		"first_name": first,
		"last_name":  last,
	})
}

func meetingEndedEvent(t *testing.T, uid string, meetingID int64, at time.Time, start, end *time.Time) *models.WebhookEvent {
	object := map[string]any{
		"id":       fmt.Sprint(meetingID),
		"topic":    "Weekly sync",
		"duration": 60,
	}
	if start != nil {
		object["start_time"] = start.Format(time.RFC3339)
	}
	if end != nil {
		object["end_time"] = end.Format(time.RFC3339)
	}
	return testEvent(t, uid, models.WebhookEventMeetingEnded, meetingID, at, object)
}
