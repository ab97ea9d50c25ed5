// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package sqlstore implements the webhook event and attendance ledger
// repositories on SQLite through GORM.
package sqlstore

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store owns the SQLite connection shared by the repositories.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the database at path and migrates the tables.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// AutoMigrate creates/updates tables based on the row structs
	if err := db.WithContext(ctx).AutoMigrate(&webhookEventRow{}, &attendanceRecordRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	slog.InfoContext(ctx, "sqlite store ready", "path", path)
	return &Store{db: db}, nil
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WebhookEvents returns the webhook event repository.
func (s *Store) WebhookEvents() *WebhookEventRepository {
	return &WebhookEventRepository{db: s.db}
}

// AttendanceRecords returns the attendance ledger repository.
func (s *Store) AttendanceRecords() *AttendanceRecordRepository {
	return &AttendanceRecordRepository{db: s.db}
}
