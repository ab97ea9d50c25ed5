// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
)

// ErrNotFound matches, through errors.Is, a ProviderError with status 404.
var ErrNotFound = errors.New("zoom resource not found")

// ProviderError is a failed Zoom API call. Status is the HTTP status of a
// non-2xx response, or 0 when no response was received (transport failure or
// timeout). Body is the decoded response.
type ProviderError struct {
	Status int
	Body   Document
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("zoom API request failed: %v", e.Err)
	}
	if code := e.Code(); code != 0 {
		return fmt.Sprintf("zoom API error (status %d, code %d): %s", e.Status, code, e.message())
	}
	return fmt.Sprintf("zoom API error (status %d): %s", e.Status, e.message())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is matches domain.ErrProviderRequest for every provider error and
// ErrNotFound for 404 responses.
func (e *ProviderError) Is(target error) bool {
	switch target {
	case domain.ErrProviderRequest:
		return true
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// Code returns the Zoom error code from the body, or 0.
func (e *ProviderError) Code() int {
	switch code := e.Body["code"].(type) {
	case float64:
		return int(code)
	case string:
		n, _ := strconv.Atoi(code)
		return n
	case interface{ Int64() (int64, error) }:
		n, _ := code.Int64()
		return int(n)
	}
	return 0
}

func (e *ProviderError) message() string {
	if msg, ok := e.Body["message"].(string); ok && msg != "" {
		return msg
	}
	if text, ok := e.Body[TextKey].(string); ok && text != "" {
		return text
	}
	return http.StatusText(e.Status)
}

