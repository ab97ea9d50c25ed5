// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/service"
)

type emptyLedger struct{}

func (emptyLedger) ListRecords(context.Context, int64) ([]*models.MeetingAttendanceRecord, error) {
	return nil, nil
}

type noWebhooks struct{}

func (noWebhooks) ProcessWebhookEvent(context.Context, service.WebhookRequest) (*service.WebhookResponse, error) {
	return &service.WebhookResponse{}, nil
}

func TestNewRouter(t *testing.T) {
	router := newRouter(handlers.NewHTTPHandler(noWebhooks{}, emptyLedger{}, func() bool { return true }))

	tests := []struct {
		name     string
		method   string
		path     string
		expected int
	}{
		{name: "livez", method: http.MethodGet, path: "/livez", expected: http.StatusOK},
		{name: "readyz", method: http.MethodGet, path: "/readyz", expected: http.StatusOK},
		{name: "attendance", method: http.MethodGet, path: "/attendance", expected: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/meetings", expected: http.StatusNotFound},
		{name: "webhook requires POST", method: http.MethodGet, path: "/webhooks/zoom", expected: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expected, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		})
	}
}
