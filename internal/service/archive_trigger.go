// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// DirectArchiveTrigger runs archival in-process, without a message broker.
// Each trigger runs in its own goroutine so webhook responses are not held
// up by provider calls.
type DirectArchiveTrigger struct {
	archiver Archiver
	wg       sync.WaitGroup
}

// NewDirectArchiveTrigger creates a new DirectArchiveTrigger.
func NewDirectArchiveTrigger(archiver Archiver) *DirectArchiveTrigger {
	return &DirectArchiveTrigger{archiver: archiver}
}

// TriggerArchive starts archival for the event. The caller's cancellation
// does not stop a started archival.
func (t *DirectArchiveTrigger) TriggerArchive(ctx context.Context, event *models.WebhookEvent) error {
	ctx = context.WithoutCancel(ctx)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if _, err := t.archiver.Archive(ctx, event); err != nil {
			slog.ErrorContext(ctx, "direct archival failed", logging.ErrKey, err)
		}
	}()
	return nil
}

// Wait blocks until every started archival has finished.
func (t *DirectArchiveTrigger) Wait() {
	t.wg.Wait()
}
