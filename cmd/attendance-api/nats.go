// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// createNatsSubcriptions joins the service queue group on the archive and
// reprocess subjects.
func createNatsSubcriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	_, err := messaging.Subscribe(ctx, natsConn, models.AttendanceAPIQueue, handler,
		models.ArchiveMeetingSubject,
		models.ReprocessMeetingSubject,
	)
	return err
}

// gracefulShutdown stops the HTTP server, drains NATS so in-flight archival
// attempts finish, then waits for the remaining shutdown steps.
func gracefulShutdown(httpServer *http.Server, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Debug("beginning graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownSeconds*time.Second)
	defer shutdownCancel()

	go func() {
		defer gracefulCloseWG.Done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.With(logging.ErrKey, err).Error("http shutdown error")
		}
	}()

	// Cancel the background context so the NATS closed handler treats the
	// close as graceful.
	cancel()

	if natsConn != nil && !natsConn.IsClosed() && !natsConn.IsDraining() {
		slog.Info("draining NATS connection")
		if err := natsConn.Drain(); err != nil {
			slog.With(logging.ErrKey, err).Error("error draining NATS connection")
			os.Exit(1)
		}
	}

	slog.Debug("waiting for graceful shutdown steps to complete")
	gracefulCloseWG.Wait()
	slog.Debug("graceful shutdown steps completed")
}
