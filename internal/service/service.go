// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import "time"

type Service interface {
	ServiceReady() bool
}

// ServiceConfig is the configuration for the Services.
type ServiceConfig struct {
	// RetainWebhookEvents keeps consumed webhook events instead of purging them
	// after archival - only meant for debugging.
	RetainWebhookEvents bool
	// Workers bounds the concurrent provider fetches and purge deletes of one archival.
	Workers int
	// Now is the clock used when an event carries no timestamp. Defaults to time.Now.
	Now func() time.Time
}

func (c ServiceConfig) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c ServiceConfig) workers() int {
	if c.Workers <= 0 {
		return 2
	}
	return c.Workers
}
