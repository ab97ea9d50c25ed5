// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package main is the meeting attendance service. It receives Zoom webhooks,
// archives attendance when a meeting ends and serves the attendance ledger.
package main

import (
	"context"
	_ "expvar"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/infrastructure/messaging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/pkg/utils"
)

func main() {
	flags := parseFlags()

	logging.InitStructureLogConfig()

	env, err := parseEnv(flags.ConfigFile)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("invalid configuration")
		os.Exit(1)
	}
	port := env.Port
	if flags.Port != "" {
		port = flags.Port
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	otelShutdown, err := utils.SetupOTelSDK(ctx)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up OpenTelemetry")
		return
	}
	defer func() {
		if err := otelShutdown(context.Background()); err != nil {
			slog.With(logging.ErrKey, err).Error("error shutting down OpenTelemetry")
		}
	}()

	// Setup NATS connection
	var natsConn *nats.Conn
	if env.needsNATS() {
		natsConn, err = setupNATS(ctx, env, &gracefulCloseWG, done)
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting up NATS")
			return
		}
	}

	var repos *repositories
	switch env.StoreDriver {
	case storeDriverSQLite:
		repos, err = getSQLStores(ctx, env.SQLitePath)
	default:
		repos, err = getKeyValueStores(ctx, natsConn)
	}
	if err != nil {
		slog.With(logging.ErrKey, err, "store_driver", env.StoreDriver).Error("error setting up stores")
		return
	}
	defer func() {
		if err := repos.close(); err != nil {
			slog.With(logging.ErrKey, err).Error("error closing store")
		}
	}()

	// Initialize services
	serviceConfig := service.ServiceConfig{
		RetainWebhookEvents: env.RetainWebhookEvents,
		Workers:             env.ArchiveWorkers,
	}
	archivalService := service.NewArchivalService(
		setupZoomClient(env.Zoom),
		repos.WebhookEvents,
		repos.AttendanceRecords,
		service.NewOccurrenceService(),
		serviceConfig,
	)

	var (
		archiveTrigger domain.ArchiveTrigger
		directTrigger  *service.DirectArchiveTrigger
	)
	if env.ArchiveTrigger == archiveTriggerDirect {
		directTrigger = service.NewDirectArchiveTrigger(archivalService)
		archiveTrigger = directTrigger
	} else {
		archiveTrigger = messaging.NewMessageBuilder(natsConn)
	}

	ingestService := service.NewWebhookIngestService(
		repos.WebhookEvents,
		setupWebhookValidator(env.Zoom),
		archiveTrigger,
		serviceConfig,
	)
	ledgerService := service.NewLedgerService(repos.AttendanceRecords)

	ready := func() bool {
		if natsConn != nil && (!natsConn.IsConnected() || natsConn.IsDraining()) {
			return false
		}
		return ingestService.ServiceReady() && ledgerService.ServiceReady() && archivalService.ServiceReady()
	}

	httpHandler := handlers.NewHTTPHandler(ingestService, ledgerService, ready)
	httpServer := setupHTTPServer(flags, port, newRouter(httpHandler), &gracefulCloseWG)

	// Create NATS subscriptions for the service. Draining lets in-flight
	// archival finish, so the handlers must not see the shutdown cancellation.
	if natsConn != nil {
		archiveHandler := handlers.NewArchiveHandler(archivalService, archivalService, archivalService.ServiceReady)
		if err := createNatsSubcriptions(context.WithoutCancel(ctx), archiveHandler, natsConn); err != nil {
			slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
			return
		}
	}

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)

	if directTrigger != nil {
		directTrigger.Wait()
	}
}
