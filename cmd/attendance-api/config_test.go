// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvVars = []string{
	"PORT",
	"NATS_URL",
	"STORE_DRIVER",
	"SQLITE_PATH",
	"ARCHIVE_TRIGGER",
	"ARCHIVE_WORKERS",
	"RETAIN_WEBHOOK_EVENTS",
	"ZOOM_API_KEY",
	"ZOOM_API_SECRET",
	"ZOOM_ACCOUNT_ID",
	"ZOOM_CLIENT_ID",
	"ZOOM_CLIENT_SECRET",
	"ZOOM_API_BASE_URL",
	"ZOOM_API_TIMEOUT",
	"ZOOM_WEBHOOK_SECRET_TOKEN",
	"ZOOM_WEBHOOK_VERIFICATION_TOKEN",
	"ZOOM_WEBHOOK_SKIP_VALIDATION",
}

// clearConfigEnv blanks every variable parseEnv reads; empty values are ignored.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendance.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseEnv_Defaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ZOOM_WEBHOOK_SECRET_TOKEN", "secret")

	env, err := parseEnv("")
	require.NoError(t, err)

	assert.Equal(t, "8080", env.Port)
	assert.Equal(t, "nats://localhost:4222", env.NATSURL)
	assert.Equal(t, storeDriverNATS, env.StoreDriver)
	assert.Equal(t, archiveTriggerNATS, env.ArchiveTrigger)
	assert.Equal(t, 2, env.ArchiveWorkers)
	assert.False(t, env.RetainWebhookEvents)
	assert.True(t, env.needsNATS())
	assert.Equal(t, "secret", env.Zoom.WebhookSecretToken)

	timeout, err := env.Zoom.timeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
}

func TestParseEnv_ConfigFileAndEnvPrecedence(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
port = "9090"
store_driver = "sqlite"
sqlite_path = "/var/lib/attendance/ledger.db"
archive_trigger = "direct"
retain_webhook_events = true

[zoom]
account_id = "account"
client_id = "client"
client_secret = "client-secret"
api_timeout = "10s"
webhook_secret_token = "file-secret"
`)
	t.Setenv("PORT", "7070")
	t.Setenv("ZOOM_WEBHOOK_SECRET_TOKEN", "env-secret")

	env, err := parseEnv(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", env.Port, "environment wins over the file")
	assert.Equal(t, storeDriverSQLite, env.StoreDriver)
	assert.Equal(t, "/var/lib/attendance/ledger.db", env.SQLitePath)
	assert.Equal(t, archiveTriggerDirect, env.ArchiveTrigger)
	assert.True(t, env.RetainWebhookEvents)
	assert.False(t, env.needsNATS())
	assert.Equal(t, "env-secret", env.Zoom.WebhookSecretToken)
	assert.True(t, env.Zoom.hasOAuth())
	assert.False(t, env.Zoom.usesJWT())

	timeout, err := env.Zoom.timeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, timeout)
}

func TestParseEnv_UnknownConfigKeys(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, `
port = "9090"
stor_driver = "sqlite"

[zoom]
webhook_secret = "typo"
`)

	_, err := parseEnv(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stor_driver")
	assert.Contains(t, err.Error(), "zoom.webhook_secret")
}

func TestParseEnv_MissingConfigFile(t *testing.T) {
	clearConfigEnv(t)

	_, err := parseEnv(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseEnv_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		contains string
	}{
		{
			name:     "unknown store driver",
			env:      map[string]string{"STORE_DRIVER": "postgres", "ZOOM_WEBHOOK_SECRET_TOKEN": "s"},
			contains: "STORE_DRIVER",
		},
		{
			name:     "unknown archive trigger",
			env:      map[string]string{"ARCHIVE_TRIGGER": "kafka", "ZOOM_WEBHOOK_SECRET_TOKEN": "s"},
			contains: "ARCHIVE_TRIGGER",
		},
		{
			name:     "api key without secret",
			env:      map[string]string{"ZOOM_API_KEY": "key", "ZOOM_WEBHOOK_SECRET_TOKEN": "s"},
			contains: "ZOOM_API_SECRET",
		},
		{
			name:     "bad timeout",
			env:      map[string]string{"ZOOM_API_TIMEOUT": "soon", "ZOOM_WEBHOOK_SECRET_TOKEN": "s"},
			contains: "ZOOM_API_TIMEOUT",
		},
		{
			name:     "bad boolean",
			env:      map[string]string{"RETAIN_WEBHOOK_EVENTS": "maybe", "ZOOM_WEBHOOK_SECRET_TOKEN": "s"},
			contains: "RETAIN_WEBHOOK_EVENTS",
		},
		{
			name:     "bad integer",
			env:      map[string]string{"ARCHIVE_WORKERS": "two", "ZOOM_WEBHOOK_SECRET_TOKEN": "s"},
			contains: "ARCHIVE_WORKERS",
		},
		{
			name:     "no webhook credentials",
			env:      map[string]string{},
			contains: "ZOOM_WEBHOOK_SECRET_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := parseEnv("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestParseEnv_SkipWebhookValidation(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("ZOOM_WEBHOOK_SKIP_VALIDATION", "true")
	t.Setenv("ZOOM_API_KEY", "key")
	t.Setenv("ZOOM_API_SECRET", "secret")

	env, err := parseEnv("")
	require.NoError(t, err)
	assert.True(t, env.Zoom.SkipWebhookValidation)
	assert.True(t, env.Zoom.usesJWT())
}
