// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/middleware"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/pkg/constants"
)

var errServiceUnavailable = errors.New("service unavailable")

// WebhookProcessor processes an authenticated webhook request.
type WebhookProcessor interface {
	ProcessWebhookEvent(ctx context.Context, req service.WebhookRequest) (*service.WebhookResponse, error)
}

// LedgerReader lists attendance records.
type LedgerReader interface {
	ListRecords(ctx context.Context, meetingID int64) ([]*models.MeetingAttendanceRecord, error)
}

// HTTPHandler serves the health, webhook and ledger endpoints.
type HTTPHandler struct {
	webhooks WebhookProcessor
	ledger   LedgerReader
	ready    func() bool
}

// NewHTTPHandler creates a new HTTPHandler. ready backs /readyz.
func NewHTTPHandler(webhooks WebhookProcessor, ledger LedgerReader, ready func() bool) *HTTPHandler {
	return &HTTPHandler{
		webhooks: webhooks,
		ledger:   ledger,
		ready:    ready,
	}
}

// Mount registers the routes on r.
func (h *HTTPHandler) Mount(r chi.Router) {
	r.Get(constants.LivezPath, h.Livez)
	r.Get(constants.ReadyzPath, h.Readyz)
	r.Post(constants.ZoomWebhookPath, h.ZoomWebhook)
	r.Get(constants.AttendancePath, h.ListAttendance)
}

// Livez checks if the service is alive.
func (h *HTTPHandler) Livez(w http.ResponseWriter, _ *http.Request) {
	// This always returns as long as the process is running. Non-recoverable
	// errors must terminate the process instead.
	_, _ = w.Write([]byte("OK\n"))
}

// Readyz checks if the service is able to take inbound requests.
func (h *HTTPHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil && !h.ready() {
		writeError(r.Context(), w, domain.NewUnavailableError("service not ready", errServiceUnavailable))
		return
	}
	_, _ = w.Write([]byte("OK\n"))
}

// ZoomWebhook receives a Zoom webhook notification.
func (h *HTTPHandler) ZoomWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, ok := middleware.GetRawBodyFromContext(ctx)
	if !ok {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			writeError(ctx, w, domain.NewValidationError("failed to read request body", err))
			return
		}
	}

	var message models.ZoomWebhookEventMessage
	if err := json.Unmarshal(body, &message); err != nil {
		slog.WarnContext(ctx, "invalid webhook body", logging.ErrKey, err)
		writeError(ctx, w, domain.NewValidationError("invalid JSON body", err))
		return
	}

	response, err := h.webhooks.ProcessWebhookEvent(ctx, service.WebhookRequest{
		Event:         message.EventType,
		EventTS:       message.EventTS,
		Payload:       message.Payload,
		Signature:     r.Header.Get(constants.ZoomSignatureHeader),
		Timestamp:     r.Header.Get(constants.ZoomRequestTimestampHeader),
		Authorization: r.Header.Get(constants.AuthorizationHeader),
		RawBody:       body,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, response)
}

// ListAttendance returns the ledger, optionally filtered by ?meeting_id=.
func (h *HTTPHandler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var meetingID int64
	if raw := r.URL.Query().Get(constants.MeetingIDQuery); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(ctx, w, domain.NewValidationError("meeting_id must be a positive integer"))
			return
		}
		meetingID = id
	}

	records, err := h.ledger.ListRecords(ctx, meetingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if records == nil {
		records = []*models.MeetingAttendanceRecord{}
	}

	writeJSON(ctx, w, http.StatusOK, records)
}

// errorResponse is the JSON body of every error response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusCode maps a domain error type to an HTTP status code.
func statusCode(err error) int {
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeConflict:
		return http.StatusConflict
	case domain.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case domain.ErrorTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	code := statusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		slog.ErrorContext(ctx, "internal error handling request", logging.ErrKey, err)
		message = http.StatusText(code)
	}
	writeJSON(ctx, w, code, errorResponse{Code: strconv.Itoa(code), Message: message})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, data any) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "error encoding response", logging.ErrKey, err)
	}
}
