// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/sqlstore"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/store"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/zoom/api"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/zoom/auth"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/zoom/webhook"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// gracefulShutdownSeconds should be higher than the NATS client request
// timeout, and lower than the pod's terminationGracePeriodSeconds.
const gracefulShutdownSeconds = 25

// repositories are the stores used by the services.
type repositories struct {
	WebhookEvents     domain.WebhookEventRepository
	AttendanceRecords domain.AttendanceRecordRepository
	// close releases the backend, if it owns a connection.
	close func() error
}

// setupNATS connects to NATS. The closed handler releases gracefulCloseWG
// during a graceful shutdown, and otherwise stops the process since the
// reconnect attempts are exhausted.
func setupNATS(ctx context.Context, env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	gracefulCloseWG.Add(1)
	natsConn, err := nats.Connect(
		env.NATSURL,
		nats.Name("lfx-v2-meeting-attendance-service"),
		nats.DrainTimeout(gracefulShutdownSeconds*time.Second),
		nats.ErrorHandler(func(_ *nats.Conn, s *nats.Subscription, err error) {
			if s != nil {
				slog.With(logging.ErrKey, err, "subject", s.Subject, "queue", s.Queue).Error("async NATS error")
			} else {
				slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
			}
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if ctx.Err() != nil {
				// Graceful shutdown: let the remaining steps complete.
				gracefulCloseWG.Done()
				return
			}
			slog.With(logging.PriorityCritical()).Error("NATS max-reconnects exhausted; connection closed")
			done <- os.Interrupt
			time.Sleep(5 * time.Second)
			os.Exit(1)
		}),
	)
	if err != nil {
		gracefulCloseWG.Done()
		return nil, fmt.Errorf("error creating NATS client: %w", err)
	}
	slog.With("url", natsConn.ConnectedUrl()).Info("connected to NATS")
	return natsConn, nil
}

// getKeyValueStores binds the repositories to the JetStream KV buckets. The
// buckets are provisioned outside the service.
func getKeyValueStores(ctx context.Context, natsConn *nats.Conn) (*repositories, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, fmt.Errorf("error creating JetStream context: %w", err)
	}

	eventsKV, err := js.KeyValue(ctx, store.KVStoreNameWebhookEvents)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s KV bucket: %w", store.KVStoreNameWebhookEvents, err)
	}
	recordsKV, err := js.KeyValue(ctx, store.KVStoreNameAttendanceRecords)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s KV bucket: %w", store.KVStoreNameAttendanceRecords, err)
	}

	return &repositories{
		WebhookEvents:     store.NewNatsWebhookEventRepository(eventsKV),
		AttendanceRecords: store.NewNatsAttendanceRecordRepository(recordsKV),
		close:             func() error { return nil },
	}, nil
}

// getSQLStores opens the SQLite database and migrates its tables.
func getSQLStores(ctx context.Context, path string) (*repositories, error) {
	db, err := sqlstore.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return &repositories{
		WebhookEvents:     db.WebhookEvents(),
		AttendanceRecords: db.AttendanceRecords(),
		close:             db.Close,
	}, nil
}

// setupZoomClient builds the API client. JWT app credentials take
// precedence over Server-to-Server OAuth.
func setupZoomClient(cfg zoomConfig) *api.Client {
	timeout, _ := cfg.timeout()
	clientConfig := api.Config{
		AccountID:    cfg.AccountID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.APIBaseURL,
		Timeout:      timeout,
	}

	switch {
	case cfg.usesJWT():
		clientConfig.TokenSource = auth.NewIssuer(auth.Config{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
		})
		slog.Info("zoom API client uses JWT app credentials")
	case cfg.hasOAuth():
		slog.Info("zoom API client uses server-to-server OAuth")
	default:
		slog.Warn("zoom API credentials not configured; archival will record errors")
	}

	return api.NewClient(clientConfig)
}

// setupWebhookValidator returns the request authenticator. Skipping
// validation is meant for local development only.
func setupWebhookValidator(cfg zoomConfig) domain.WebhookValidator {
	if cfg.SkipWebhookValidation {
		slog.Warn("zoom webhook validation disabled")
		return webhook.NewMockWebhookValidator(cfg.WebhookSecretToken)
	}
	return webhook.NewZoomWebhookValidator(cfg.WebhookSecretToken, cfg.WebhookVerificationToken)
}
