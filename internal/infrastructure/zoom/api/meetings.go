// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// ListUpcomingMeetings lists a user's meetings of the given listing type
// ("scheduled", "upcoming" ...), sorted by scheduled start ascending.
func (c *Client) ListUpcomingMeetings(ctx context.Context, userRef, meetingType string) ([]models.MeetingDescriptor, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_user", userRef))

	query := pageQuery()
	if meetingType != "" {
		query.Set("type", meetingType)
	}

	doc, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/users/%s/meetings", url.PathEscape(userRef)), query, nil)
	if err != nil {
		return nil, err
	}

	raw, err := doc.Require("meetings")
	if err != nil {
		return nil, err
	}

	var meetings []models.MeetingDescriptor
	if err := decodeInto(raw, &meetings); err != nil {
		return nil, err
	}

	sort.SliceStable(meetings, func(i, j int) bool {
		return meetings[i].StartTime.Before(meetings[j].StartTime)
	})

	slog.DebugContext(ctx, "listed upcoming Zoom meetings", "count", len(meetings))
	return meetings, nil
}

// GetMeeting retrieves a meeting descriptor. Recurring meetings carry their
// occurrences.
func (c *Client) GetMeeting(ctx context.Context, meetingID int64) (*models.MeetingDescriptor, error) {
	ctx = logging.AppendCtx(ctx, slog.Int64("zoom_meeting_id", meetingID))

	doc, err := c.doRequest(ctx, http.MethodGet, meetingPath(meetingID), nil, nil)
	if err != nil {
		return nil, err
	}

	if _, err := doc.Require("id"); err != nil {
		return nil, err
	}

	var meeting models.MeetingDescriptor
	if err := decodeInto(map[string]any(doc), &meeting); err != nil {
		return nil, err
	}

	return &meeting, nil
}

// UpdateMeeting applies a partial update to a meeting.
func (c *Client) UpdateMeeting(ctx context.Context, meetingID int64, fields map[string]any) error {
	ctx = logging.AppendCtx(ctx, slog.Int64("zoom_meeting_id", meetingID))

	if _, err := c.doRequest(ctx, http.MethodPatch, meetingPath(meetingID), nil, fields); err != nil {
		return err
	}

	slog.InfoContext(ctx, "updated Zoom meeting")
	return nil
}

// CreateMeeting creates a meeting owned by userRef and returns the created
// meeting document.
func (c *Client) CreateMeeting(ctx context.Context, userRef string, fields map[string]any) (Document, error) {
	ctx = logging.AppendCtx(ctx, slog.String("zoom_user", userRef))

	doc, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/users/%s/meetings", url.PathEscape(userRef)), nil, fields)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "created Zoom meeting", "zoom_meeting_id", doc["id"])
	return doc, nil
}

func meetingPath(meetingID int64) string {
	return "/meetings/" + strconv.FormatInt(meetingID, 10)
}
