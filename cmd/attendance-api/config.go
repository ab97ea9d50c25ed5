// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
)

// Storage backends.
const (
	storeDriverNATS   = "nats"
	storeDriverSQLite = "sqlite"
)

// Archive trigger transports.
const (
	archiveTriggerNATS   = "nats"
	archiveTriggerDirect = "direct"
)

// flags are the command line flags for the attendance service.
type flags struct {
	Debug      bool
	Port       string
	Bind       string
	ConfigFile string
}

// environment is the service configuration. Values come from the defaults,
// then the optional TOML file, then the environment.
type environment struct {
	Port                string `toml:"port"`
	NATSURL             string `toml:"nats_url"`
	StoreDriver         string `toml:"store_driver"`
	SQLitePath          string `toml:"sqlite_path"`
	ArchiveTrigger      string `toml:"archive_trigger"`
	ArchiveWorkers      int    `toml:"archive_workers"`
	RetainWebhookEvents bool   `toml:"retain_webhook_events"`

	Zoom zoomConfig `toml:"zoom"`
}

// zoomConfig holds the Zoom credentials. Either the JWT app key and secret
// or the Server-to-Server OAuth account, client id and client secret are
// needed to call the API.
type zoomConfig struct {
	APIKey                   string `toml:"api_key"`
	APISecret                string `toml:"api_secret"`
	AccountID                string `toml:"account_id"`
	ClientID                 string `toml:"client_id"`
	ClientSecret             string `toml:"client_secret"`
	APIBaseURL               string `toml:"api_base_url"`
	APITimeout               string `toml:"api_timeout"`
	WebhookSecretToken       string `toml:"webhook_secret_token"`
	WebhookVerificationToken string `toml:"webhook_verification_token"`
	SkipWebhookValidation    bool   `toml:"skip_webhook_validation"`
}

// parseFlags parses command line flags for the attendance service. An empty
// port keeps the configured one.
func parseFlags() flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", "", "listen port (default $PORT or 8080)")
	var bind = flag.String("bind", "*", "interface to bind on")
	var configFile = flag.String("config", os.Getenv("CONFIG_FILE"), "optional TOML configuration file")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by [logging.InitStructureLogConfig]
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug:      *debug,
		Port:       *port,
		Bind:       *bind,
		ConfigFile: *configFile,
	}
}

func defaultEnvironment() environment {
	return environment{
		Port:           "8080",
		NATSURL:        "nats://localhost:4222",
		StoreDriver:    storeDriverNATS,
		SQLitePath:     "attendance.db",
		ArchiveTrigger: archiveTriggerNATS,
		ArchiveWorkers: 2,
		Zoom: zoomConfig{
			APITimeout: "30s",
		},
	}
}

// loadConfigFile overlays the TOML file at path on env. Unknown keys are
// rejected so that a typo does not silently fall back to a default.
func loadConfigFile(path string, env *environment) error {
	md, err := toml.DecodeFile(path, env)
	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// parseEnv builds the configuration from the defaults, the optional TOML
// file and the environment variables, in increasing precedence.
func parseEnv(configFile string) (environment, error) {
	env := defaultEnvironment()

	if configFile != "" {
		if err := loadConfigFile(configFile, &env); err != nil {
			return environment{}, err
		}
	}

	var errs []error
	envString("PORT", &env.Port)
	envString("NATS_URL", &env.NATSURL)
	envString("STORE_DRIVER", &env.StoreDriver)
	envString("SQLITE_PATH", &env.SQLitePath)
	envString("ARCHIVE_TRIGGER", &env.ArchiveTrigger)
	errs = append(errs,
		envInt("ARCHIVE_WORKERS", &env.ArchiveWorkers),
		envBool("RETAIN_WEBHOOK_EVENTS", &env.RetainWebhookEvents),
	)

	envString("ZOOM_API_KEY", &env.Zoom.APIKey)
	envString("ZOOM_API_SECRET", &env.Zoom.APISecret)
	envString("ZOOM_ACCOUNT_ID", &env.Zoom.AccountID)
	envString("ZOOM_CLIENT_ID", &env.Zoom.ClientID)
	envString("ZOOM_CLIENT_SECRET", &env.Zoom.ClientSecret)
	envString("ZOOM_API_BASE_URL", &env.Zoom.APIBaseURL)
	envString("ZOOM_API_TIMEOUT", &env.Zoom.APITimeout)
	envString("ZOOM_WEBHOOK_SECRET_TOKEN", &env.Zoom.WebhookSecretToken)
	envString("ZOOM_WEBHOOK_VERIFICATION_TOKEN", &env.Zoom.WebhookVerificationToken)
	errs = append(errs, envBool("ZOOM_WEBHOOK_SKIP_VALIDATION", &env.Zoom.SkipWebhookValidation))

	if err := errors.Join(errs...); err != nil {
		return environment{}, err
	}
	if err := env.validate(); err != nil {
		return environment{}, err
	}
	return env, nil
}

func (e environment) validate() error {
	var errs []error

	switch e.StoreDriver {
	case storeDriverNATS, storeDriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", storeDriverNATS, storeDriverSQLite, e.StoreDriver))
	}
	if e.StoreDriver == storeDriverSQLite && e.SQLitePath == "" {
		errs = append(errs, errors.New("SQLITE_PATH is required with the sqlite store"))
	}

	switch e.ArchiveTrigger {
	case archiveTriggerNATS, archiveTriggerDirect:
	default:
		errs = append(errs, fmt.Errorf("ARCHIVE_TRIGGER must be %q or %q, got %q", archiveTriggerNATS, archiveTriggerDirect, e.ArchiveTrigger))
	}
	if e.needsNATS() && e.NATSURL == "" {
		errs = append(errs, errors.New("NATS_URL is required"))
	}

	if _, err := e.Zoom.timeout(); err != nil {
		errs = append(errs, err)
	}
	if (e.Zoom.APIKey == "") != (e.Zoom.APISecret == "") {
		errs = append(errs, errors.New("ZOOM_API_KEY and ZOOM_API_SECRET must be set together"))
	}
	if !e.Zoom.SkipWebhookValidation && e.Zoom.WebhookSecretToken == "" && e.Zoom.WebhookVerificationToken == "" {
		errs = append(errs, errors.New("ZOOM_WEBHOOK_SECRET_TOKEN or ZOOM_WEBHOOK_VERIFICATION_TOKEN is required"))
	}

	return errors.Join(errs...)
}

// needsNATS reports whether the configuration uses a NATS connection.
func (e environment) needsNATS() bool {
	return e.StoreDriver == storeDriverNATS || e.ArchiveTrigger == archiveTriggerNATS
}

// usesJWT reports whether API tokens are signed locally with the JWT app credentials.
func (z zoomConfig) usesJWT() bool {
	return z.APIKey != ""
}

// hasOAuth reports whether the Server-to-Server OAuth credentials are complete.
func (z zoomConfig) hasOAuth() bool {
	return z.AccountID != "" && z.ClientID != "" && z.ClientSecret != ""
}

func (z zoomConfig) timeout() (time.Duration, error) {
	if z.APITimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(z.APITimeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("ZOOM_API_TIMEOUT must be a positive duration, got %q", z.APITimeout)
	}
	return d, nil
}

func envString(key string, target *string) {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		*target = value
	}
}

func envBool(key string, target *bool) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("%s must be a boolean, got %q", key, value)
	}
	*target = parsed
	return nil
}

func envInt(key string, target *int) error {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	*target = parsed
	return nil
}
