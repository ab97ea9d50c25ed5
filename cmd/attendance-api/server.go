// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/handlers"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/middleware"
)

// newRouter mounts the HTTP handler behind the request middleware.
func newRouter(httpHandler *handlers.HTTPHandler) http.Handler {
	r := chi.NewRouter()

	// RequestID must run before the logger, which reads the id it sets.
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLoggerMiddleware())
	r.Use(chimw.Recoverer)
	r.Use(middleware.WebhookBodyCaptureMiddleware())

	httpHandler.Mount(r)

	return otelhttp.NewHandler(r, "attendance-api")
}

// setupHTTPServer configures and starts the HTTP server
func setupHTTPServer(flags flags, port string, handler http.Handler, gracefulCloseWG *sync.WaitGroup) *http.Server {
	var addr string
	if flags.Bind == "*" {
		addr = ":" + port
	} else {
		addr = flags.Bind + ":" + port
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 3 * time.Second,
	}

	gracefulCloseWG.Add(1)
	go func() {
		slog.With("addr", addr).Debug("starting http server, listening on port " + port)
		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http listener error")
			os.Exit(1)
		}
		// ErrServerClosed is returned as soon as Shutdown is called, so the
		// wait group is released by gracefulShutdown instead.
	}()

	return httpServer
}
