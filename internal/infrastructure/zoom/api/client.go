// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// ClientAPI defines the interface for Zoom API operations
// This allows for easy mocking and testing of the Zoom client
type ClientAPI interface {
	ListUpcomingMeetings(ctx context.Context, userRef, meetingType string) ([]models.MeetingDescriptor, error)
	GetMeeting(ctx context.Context, meetingID int64) (*models.MeetingDescriptor, error)
	UpdateMeeting(ctx context.Context, meetingID int64, fields map[string]any) error
	CreateMeeting(ctx context.Context, userRef string, fields map[string]any) (Document, error)
	GetRegistrants(ctx context.Context, meetingID int64) ([]models.ZoomRegistrant, error)
	GetParticipants(ctx context.Context, meetingID int64) ([]models.ZoomParticipant, error)
}

const (
	// BaseURL is the base URL for Zoom API
	BaseURL = "https://api.zoom.us/v2"
	// AuthURL is the OAuth token endpoint
	AuthURL = "https://zoom.us/oauth/token"
	// DefaultClientTimeout bounds every Zoom API call
	DefaultClientTimeout = 30 * time.Second
	// MaxPageSize is the largest page the listing endpoints return. Only the
	// first page is fetched.
	MaxPageSize = 300
)

// Client represents a Zoom API client
type Client struct {
	httpClient *http.Client
	config     Config
	tokens     oauth2.TokenSource
}

// Config holds the configuration for the Zoom client
type Config struct {
	// TokenSource signs requests, typically an *auth.Issuer. When nil the
	// client uses Server-to-Server OAuth with the credentials below.
	TokenSource oauth2.TokenSource

	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override auth URL for testing
	AuthURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
	// Optional: base transport, wrapped with OpenTelemetry instrumentation
	Transport http.RoundTripper
}

// Ensure that Client implements ClientAPI and the archival provider contract
var (
	_ ClientAPI              = (*Client)(nil)
	_ domain.MeetingProvider = (*Client)(nil)
)

// NewClient creates a new Zoom API client
func NewClient(config Config) *Client {
	// Set defaults if not provided
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.AuthURL == "" {
		config.AuthURL = AuthURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultClientTimeout
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}

	tokens := config.TokenSource
	if tokens == nil {
		// Zoom Server-to-Server OAuth requires specific grant_type and account_id
		oauthConfig := &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.AuthURL,
			EndpointParams: url.Values{
				"grant_type": []string{"account_credentials"},
				"account_id": []string{config.AccountID},
			},
			AuthStyle: oauth2.AuthStyleInParams,
		}
		tokens = oauth2.ReuseTokenSource(nil, oauthConfig.TokenSource(context.Background()))
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(config.Transport),
		},
		config: config,
		tokens: tokens,
	}
}

// doRequest performs one authenticated request and decodes the response body.
// Non-2xx responses, transport failures and timeouts return a *ProviderError.
// There is no retry at this layer.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) (Document, error) {
	jsonBody, err := c.marshalRequestBody(body)
	if err != nil {
		return nil, err
	}

	token, err := c.tokens.Token()
	if err != nil {
		slog.ErrorContext(ctx, "failed to obtain Zoom API token", logging.ErrKey, err, logging.PriorityCritical())
		return nil, fmt.Errorf("failed to obtain zoom token: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := c.createRequest(ctx, method, c.buildURL(path, query), jsonBody)
	if err != nil {
		return nil, err
	}
	token.SetAuthHeader(req)

	slog.DebugContext(ctx, "making Zoom API request",
		"method", method,
		"path", path,
		"query", query.Encode(),
	)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		slog.ErrorContext(ctx, "Zoom API request failed",
			"method", method,
			"path", path,
			"duration", duration.String(),
			logging.ErrKey, err)
		return nil, &ProviderError{Body: Document{}, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Status: resp.StatusCode, Body: Document{}, Err: fmt.Errorf("failed to read response body: %w", err)}
	}
	doc := decodeDocument(ctx, raw)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		providerErr := &ProviderError{Status: resp.StatusCode, Body: doc}
		slog.ErrorContext(ctx, "Zoom API error response",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"duration", duration.String(),
			"body", string(raw),
			logging.ErrKey, providerErr)
		return nil, providerErr
	}

	slog.InfoContext(ctx, "Zoom API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", duration.String(),
	)
	return doc, nil
}

// buildURL joins the base URL, path and query string
func (c *Client) buildURL(path string, query url.Values) string {
	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// marshalRequestBody marshals the request body to JSON
func (c *Client) marshalRequestBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return jsonBody, nil
}

// createRequest creates a new HTTP request with the given parameters
func (c *Client) createRequest(ctx context.Context, method, url string, jsonBody []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if jsonBody != nil {
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// pageQuery returns the query of a single maximum-size page.
func pageQuery() url.Values {
	return url.Values{"page_size": []string{fmt.Sprint(MaxPageSize)}}
}
