// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
)

func TestClient_ListUpcomingMeetings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/me/meetings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "upcoming" {
			t.Errorf("expected type=upcoming, got %s", r.URL.Query().Get("type"))
		}
		if r.URL.Query().Get("page_size") != "300" {
			t.Errorf("expected page_size=300, got %s", r.URL.Query().Get("page_size"))
		}
		_, _ = w.Write([]byte(`{"meetings": [
			{"id": 2, "topic": "later", "start_time": "2024-03-02T10:00:00Z"},
			{"id": 1, "topic": "sooner", "start_time": "2024-03-01T10:00:00Z"},
			{"id": 3, "topic": "same as later", "start_time": "2024-03-02T10:00:00Z"}
		]}`))
	}))
	defer server.Close()

	meetings, err := newTestClient(server.URL).ListUpcomingMeetings(context.Background(), "me", "upcoming")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ids []int64
	for _, m := range meetings {
		ids = append(ids, m.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("expected meetings sorted by start time [1 2 3], got %v", ids)
	}
}

func TestClient_ListUpcomingMeetings_MissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"page_size": 300}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListUpcomingMeetings(context.Background(), "me", "")
	if !errors.Is(err, domain.ErrMissingField) {
		t.Errorf("expected missing field error, got %v", err)
	}
}

func TestClient_GetMeeting(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse string
		mockStatus   int
		checkErr     func(t *testing.T, err error)
		recurring    bool
		occurrences  int
		autoApproved bool
	}{
		{
			name: "recurring meeting with occurrences",
			mockResponse: `{
				"id": 85746065,
				"type": 8,
				"topic": "Weekly TSC",
				"agenda": "Standing agenda",
				"start_time": "2024-03-01T15:00:00Z",
				"duration": 60,
				"settings": {"approval_type": 0},
				"occurrences": [
					{"occurrence_id": "1709305200000", "start_time": "2024-03-01T15:00:00Z", "duration": 60, "status": "available"},
					{"occurrence_id": "1709910000000", "start_time": "2024-03-08T15:00:00Z", "duration": 60, "status": "available"}
				]
			}`,
			mockStatus:   http.StatusOK,
			recurring:    true,
			occurrences:  2,
			autoApproved: true,
		},
		{
			name:         "missing approval type is not auto approved",
			mockResponse: `{"id": 85746065, "type": 2, "topic": "Board meeting"}`,
			mockStatus:   http.StatusOK,
		},
		{
			name:         "meeting not found",
			mockResponse: `{"code": 3001, "message": "Meeting does not exist: 85746065."}`,
			mockStatus:   http.StatusNotFound,
			checkErr: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("expected ErrNotFound, got %v", err)
				}
				var providerErr *ProviderError
				if !errors.As(err, &providerErr) || providerErr.Code() != 3001 {
					t.Errorf("expected provider error with code 3001, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/meetings/85746065" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				w.WriteHeader(tt.mockStatus)
				_, _ = w.Write([]byte(tt.mockResponse))
			}))
			defer server.Close()

			meeting, err := newTestClient(server.URL).GetMeeting(context.Background(), 85746065)
			if tt.checkErr != nil {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				tt.checkErr(t, err)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if meeting.IsRecurring() != tt.recurring {
				t.Errorf("expected recurring %v", tt.recurring)
			}
			if len(meeting.Occurrences) != tt.occurrences {
				t.Errorf("expected %d occurrences, got %d", tt.occurrences, len(meeting.Occurrences))
			}
			if meeting.AutoApprovedRegistration() != tt.autoApproved {
				t.Errorf("expected auto approved registration %v", tt.autoApproved)
			}
			if tt.occurrences > 1 {
				want := time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)
				if !meeting.Occurrences[1].StartTime.Equal(want) {
					t.Errorf("expected occurrence start %v, got %v", want, meeting.Occurrences[1].StartTime)
				}
			}
		})
	}
}

func TestClient_UpdateMeeting(t *testing.T) {
	var gotMethod string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateMeeting(context.Background(), 42, map[string]any{"agenda": "new agenda"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPatch {
		t.Errorf("expected PATCH, got %s", gotMethod)
	}
	if gotBody["agenda"] != "new agenda" {
		t.Errorf("expected agenda in body, got %v", gotBody)
	}
}

func TestClient_UpdateMeeting_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code": 300, "message": "Invalid field."}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpdateMeeting(context.Background(), 42, map[string]any{"type": 99})
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.Status != http.StatusBadRequest {
		t.Errorf("expected provider error with status 400, got %v", err)
	}
}

func TestClient_CreateMeeting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/host@example.com/meetings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123456789, "join_url": "https://zoom.us/j/123456789"}`))
	}))
	defer server.Close()

	doc, err := newTestClient(server.URL).CreateMeeting(context.Background(), "host@example.com", map[string]any{"topic": "Test Meeting"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["join_url"] != "https://zoom.us/j/123456789" {
		t.Errorf("expected join_url in document, got %v", doc)
	}
}
