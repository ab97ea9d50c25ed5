// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// GetRegistrants returns the first page of a meeting's registrants.
func (c *Client) GetRegistrants(ctx context.Context, meetingID int64) ([]models.ZoomRegistrant, error) {
	ctx = logging.AppendCtx(ctx, slog.Int64("zoom_meeting_id", meetingID))

	doc, err := c.doRequest(ctx, http.MethodGet, meetingPath(meetingID)+"/registrants", pageQuery(), nil)
	if err != nil {
		return nil, err
	}

	raw, err := doc.Require("registrants")
	if err != nil {
		return nil, err
	}

	var registrants []models.ZoomRegistrant
	if err := decodeInto(raw, &registrants); err != nil {
		return nil, err
	}

	warnTruncated(ctx, doc, "registrants", len(registrants))
	return registrants, nil
}

// GetParticipants returns the first page of a completed meeting's participant
// report. Each row is one join/leave interval. Rows without an email are
// dropped and emails are lower-cased.
func (c *Client) GetParticipants(ctx context.Context, meetingID int64) ([]models.ZoomParticipant, error) {
	ctx = logging.AppendCtx(ctx, slog.Int64("zoom_meeting_id", meetingID))

	doc, err := c.doRequest(ctx, http.MethodGet, "/report/meetings/"+strconv.FormatInt(meetingID, 10)+"/participants", pageQuery(), nil)
	if err != nil {
		return nil, err
	}

	raw, err := doc.Require("participants")
	if err != nil {
		return nil, err
	}

	var participants []models.ZoomParticipant
	if err := decodeInto(raw, &participants); err != nil {
		return nil, err
	}

	warnTruncated(ctx, doc, "participants", len(participants))

	rows := participants[:0]
	for _, p := range participants {
		p.UserEmail = strings.ToLower(strings.TrimSpace(p.UserEmail))
		if p.UserEmail == "" {
			continue
		}
		rows = append(rows, p)
	}
	return rows, nil
}

// warnTruncated logs when a listing has more rows than the single page fetched.
func warnTruncated(ctx context.Context, doc Document, resource string, fetched int) {
	total, ok := doc["total_records"]
	if !ok {
		return
	}
	n, err := strconv.Atoi(toString(total))
	if err != nil || n <= fetched {
		return
	}
	slog.WarnContext(ctx, "zoom listing truncated to a single page",
		"resource", resource,
		"fetched", fetched,
		"total_records", n,
	)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case interface{ String() string }:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
