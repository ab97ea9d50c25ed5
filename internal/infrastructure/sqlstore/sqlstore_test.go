// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package sqlstore

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "attendance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestWebhookEventRepository(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).WebhookEvents()
	require.True(t, repo.IsReady(ctx))

	base := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	later := &models.WebhookEvent{Kind: models.WebhookEventJoinedWaitingRoom, MeetingID: 42, Timestamp: base.Add(time.Minute), Payload: json.RawMessage(`{"user_name":"Ada"}`)}
	earlier := &models.WebhookEvent{Kind: models.WebhookEventRegistrationCreated, MeetingID: 42, Timestamp: base}
	other := &models.WebhookEvent{Kind: models.WebhookEventMeetingEnded, MeetingID: 7, Timestamp: base}
	for _, e := range []*models.WebhookEvent{later, earlier, other} {
		require.NoError(t, repo.Create(ctx, e))
		require.NotEmpty(t, e.UID)
	}

	got, err := repo.Get(ctx, later.UID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_name":"Ada"}`, string(got.Payload))
	assert.True(t, later.Timestamp.Equal(got.Timestamp))

	events, err := repo.ListByMeeting(ctx, 42)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, earlier.UID, events[0].UID)

	require.NoError(t, repo.Delete(ctx, later.UID))
	require.NoError(t, repo.Delete(ctx, later.UID), "second delete is a no-op")

	_, err = repo.Get(ctx, later.UID)
	assert.True(t, errors.Is(err, domain.ErrWebhookEventNotFound))
}

func TestAttendanceRecordRepository(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).AttendanceRecords()
	base := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)

	for i, source := range []models.AttendanceSource{models.AttendanceSourceAPI, models.AttendanceSourceWebhook, models.AttendanceSourceAPI} {
		require.NoError(t, repo.Create(ctx, &models.MeetingAttendanceRecord{
			MeetingID:        42,
			Title:            "TSC",
			ScheduledTime:    base.AddDate(0, 0, 7*i),
			DurationMinutes:  60,
			ParticipantCount: i,
			Source:           source,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.MeetingAttendanceRecord{MeetingID: 7, ScheduledTime: base, Source: models.AttendanceSourceError}))

	records, err := repo.ListByMeeting(ctx, 42)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].ScheduledTime.Equal(base.AddDate(0, 0, 14)))
	assert.Equal(t, 2, records[0].ParticipantCount)
	assert.Equal(t, models.AttendanceSourceWebhook, records[1].Source)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
