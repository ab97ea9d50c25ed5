// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Constants for the HTTP request headers
const (
	// AuthorizationHeader is the header name for the authorization. Zoom sends
	// the legacy webhook verification token in it.
	AuthorizationHeader string = "authorization"

	// RequestIDHeader is the header name for the request ID
	RequestIDHeader string = "X-REQUEST-ID"

	// ZoomSignatureHeader carries the v0 HMAC signature of a webhook request.
	ZoomSignatureHeader string = "x-zm-signature"

	// ZoomRequestTimestampHeader carries the timestamp signed with the webhook body.
	ZoomRequestTimestampHeader string = "x-zm-request-timestamp"

	// ContentTypeHeader is the header name for the content type
	ContentTypeHeader string = "Content-Type"

	// ContentTypeJSON is the content type of every JSON response
	ContentTypeJSON string = "application/json"
)

// HTTP routes served by the attendance API.
const (
	LivezPath        = "/livez"
	ReadyzPath       = "/readyz"
	ZoomWebhookPath  = "/webhooks/zoom"
	AttendancePath   = "/attendance"
	MeetingIDQuery   = "meeting_id"
	MaxWebhookBodyMB = 1
)

// contextRequestID is the type for the request ID context key
type contextRequestID string

// RequestIDContextID is the context ID for the request ID
const RequestIDContextID contextRequestID = "X-REQUEST-ID"
