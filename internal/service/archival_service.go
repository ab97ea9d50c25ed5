// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/attendance"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/logging"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/pkg/concurrent"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/pkg/utils"
)

const instrumentationName = "github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/service"

var (
	// ErrAttendanceFetchUnavailable marks a provider failure while fetching
	// registrants or participants. Archival logs it and continues without an
	// api record.
	ErrAttendanceFetchUnavailable = errors.New("attendance fetch unavailable")
	// ErrArchivalFailure wraps every error returned by Archive.
	ErrArchivalFailure = errors.New("meeting archival failed")
)

// ArchivalState is a step of one archival attempt.
type ArchivalState string

const (
	ArchivalStateIdle            ArchivalState = "idle"
	ArchivalStateTriggered       ArchivalState = "triggered"
	ArchivalStateFetching        ArchivalState = "fetching"
	ArchivalStateAPIRecorded     ArchivalState = "api_recorded"
	ArchivalStateWebhookRecorded ArchivalState = "webhook_recorded"
	ArchivalStatePurged          ArchivalState = "purged"
	ArchivalStateErrored         ArchivalState = "errored"
)

// ArchivalResult describes one archival attempt.
type ArchivalResult struct {
	MeetingID int64
	// State is the terminal state: purged or errored.
	State ArchivalState
	// Transitions lists every state the attempt went through, in order.
	Transitions []ArchivalState
	// Records are the ledger rows written by the attempt.
	Records []*models.MeetingAttendanceRecord
	// Window is the scope used for webhook events, nil when every event of the meeting was in scope.
	Window *models.TimeWindow
	// Purged is the number of webhook events deleted.
	Purged int
}

func (r *ArchivalResult) transition(state ArchivalState) {
	r.State = state
	r.Transitions = append(r.Transitions, state)
}

// Archiver runs archival for a meeting-ended event.
type Archiver interface {
	Archive(ctx context.Context, trigger *models.WebhookEvent) (*ArchivalResult, error)
}

// ArchivalService reconciles provider attendance data and buffered webhook
// events into the attendance ledger when a meeting ends.
type ArchivalService struct {
	provider    domain.MeetingProvider
	events      domain.WebhookEventRepository
	records     domain.AttendanceRecordRepository
	occurrences domain.OccurrenceService
	aggregator  *WebhookAggregator
	pool        *concurrent.WorkerPool
	config      ServiceConfig
	tracer      trace.Tracer
	outcomes    metric.Int64Counter
}

// NewArchivalService creates a new ArchivalService.
func NewArchivalService(
	provider domain.MeetingProvider,
	events domain.WebhookEventRepository,
	records domain.AttendanceRecordRepository,
	occurrences domain.OccurrenceService,
	config ServiceConfig,
) *ArchivalService {
	outcomes, err := otel.Meter(instrumentationName).Int64Counter(
		"attendance.archival.outcomes",
		metric.WithDescription("Archival attempts by terminal state"),
	)
	if err != nil {
		slog.Warn("failed to create archival outcome counter", logging.ErrKey, err)
	}

	return &ArchivalService{
		provider:    provider,
		events:      events,
		records:     records,
		occurrences: occurrences,
		aggregator:  NewWebhookAggregator(events),
		pool:        concurrent.NewWorkerPool(config.workers()),
		config:      config,
		tracer:      otel.Tracer(instrumentationName),
		outcomes:    outcomes,
	}
}

// ServiceReady checks if the service is ready for use.
func (s *ArchivalService) ServiceReady() bool {
	return s.provider != nil && s.events != nil && s.records != nil && s.occurrences != nil
}

// Archive runs one archival attempt for a meeting-ended event. On any failure,
// including a panic, it writes an error record and leaves the webhook events
// in place; the returned error then wraps ErrArchivalFailure.
func (s *ArchivalService) Archive(ctx context.Context, trigger *models.WebhookEvent) (result *ArchivalResult, err error) {
	if trigger == nil {
		return nil, fmt.Errorf("%w: %w", ErrArchivalFailure, domain.NewValidationError("archive trigger is required"))
	}
	if trigger.Kind != models.WebhookEventMeetingEnded {
		return nil, fmt.Errorf("%w: %w", ErrArchivalFailure,
			domain.NewValidationError(fmt.Sprintf("archive trigger must be a %s event, got %s", models.WebhookEventMeetingEnded, trigger.Kind)))
	}

	ctx = logging.AppendCtx(ctx, slog.Int64("meeting_id", trigger.MeetingID))
	ctx = logging.AppendCtx(ctx, slog.String("trigger_uid", trigger.UID))

	ctx, span := s.tracer.Start(ctx, "archival.archive", trace.WithAttributes(
		attribute.Int64("meeting.id", trigger.MeetingID),
		attribute.String("trigger.uid", trigger.UID),
	))
	defer span.End()

	result = &ArchivalResult{MeetingID: trigger.MeetingID, State: ArchivalStateIdle}
	result.transition(ArchivalStateTriggered)
	slog.InfoContext(ctx, "archiving meeting")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during archival: %v", r)
		}
		if err != nil {
			s.fail(ctx, trigger, result, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			err = fmt.Errorf("%w: %w", ErrArchivalFailure, err)
		}
		s.recordOutcome(ctx, result.State)
	}()

	if err = s.archive(ctx, trigger, result); err != nil {
		return result, err
	}

	slog.InfoContext(ctx, "meeting archived",
		"records", len(result.Records),
		"purged", result.Purged,
	)
	return result, nil
}

func (s *ArchivalService) archive(ctx context.Context, trigger *models.WebhookEvent, result *ArchivalResult) error {
	result.transition(ArchivalStateFetching)

	meeting, err := s.provider.GetMeeting(ctx, trigger.MeetingID)
	if err != nil {
		slog.ErrorContext(ctx, "error getting meeting from provider", logging.ErrKey, err)
		return err
	}

	if meeting.AutoApprovedRegistration() {
		record, err := s.recordProviderAttendance(ctx, meeting)
		switch {
		case errors.Is(err, ErrAttendanceFetchUnavailable):
			slog.WarnContext(ctx, "provider attendance unavailable, skipping api record", logging.ErrKey, err)
		case err != nil:
			return err
		default:
			result.Records = append(result.Records, record)
			result.transition(ArchivalStateAPIRecorded)
		}
	} else {
		slog.DebugContext(ctx, "meeting registration is not auto-approved, skipping api record")
	}

	object, err := trigger.MeetingObject()
	if err != nil {
		slog.ErrorContext(ctx, "error decoding meeting-ended payload", logging.ErrKey, err)
		return err
	}

	result.Window = s.scope(ctx, meeting, object, trigger)

	aggregate, err := s.aggregator.Collect(ctx, trigger.MeetingID, result.Window)
	if err != nil {
		return err
	}

	if aggregate.ParticipantCount > 0 {
		record := webhookRecord(meeting, object, trigger, result.Window, aggregate)
		if err := s.records.Create(ctx, record); err != nil {
			slog.ErrorContext(ctx, "error creating webhook attendance record", logging.ErrKey, err)
			return err
		}
		result.Records = append(result.Records, record)
		result.transition(ArchivalStateWebhookRecorded)
	}

	if s.config.RetainWebhookEvents {
		slog.DebugContext(ctx, "retaining webhook events", "events", len(aggregate.Events))
	} else {
		purged, err := s.purge(ctx, trigger, aggregate.Events)
		if err != nil {
			return err
		}
		result.Purged = purged
	}

	result.transition(ArchivalStatePurged)
	return nil
}

// recordProviderAttendance fetches registrants and participants concurrently
// and writes the api record.
func (s *ArchivalService) recordProviderAttendance(ctx context.Context, meeting *models.MeetingDescriptor) (*models.MeetingAttendanceRecord, error) {
	var (
		registrants  []models.ZoomRegistrant
		participants []models.ZoomParticipant
	)

	err := s.pool.Run(ctx,
		func() error {
			var err error
			registrants, err = s.provider.GetRegistrants(ctx, meeting.ID)
			return err
		},
		func() error {
			var err error
			participants, err = s.provider.GetParticipants(ctx, meeting.ID)
			return err
		},
	)
	if err != nil {
		if errors.Is(err, domain.ErrProviderRequest) {
			return nil, fmt.Errorf("%w: %w", ErrAttendanceFetchUnavailable, err)
		}
		return nil, err
	}

	normalized := attendance.NormalizeRegistrants(registrants)
	aggregates := attendance.AggregateParticipants(participants)

	record := &models.MeetingAttendanceRecord{
		MeetingID:        meeting.ID,
		Title:            meeting.Topic,
		Description:      meeting.Agenda,
		ScheduledTime:    meeting.StartTime.UTC(),
		DurationMinutes:  meeting.Duration,
		RegistrantCount:  len(normalized),
		ParticipantCount: len(aggregates),
		Source:           models.AttendanceSourceAPI,
	}
	if err := s.records.Create(ctx, record); err != nil {
		slog.ErrorContext(ctx, "error creating api attendance record", logging.ErrKey, err)
		return nil, err
	}
	return record, nil
}

// scope picks the webhook window: nil for a single meeting, the trigger's
// start/end range for a recurring one, then the occurrence named by the
// payload, and finally the latest scheduled occurrence up to the trigger time.
func (s *ArchivalService) scope(ctx context.Context, meeting *models.MeetingDescriptor, object *models.ZoomMeetingObject, trigger *models.WebhookEvent) *models.TimeWindow {
	if !meeting.IsRecurring() {
		return nil
	}

	if window, ok := object.Window(); ok {
		return &window
	}

	// A named occurrence is scoped from its scheduled start until the later
	// of its scheduled end and the trigger.
	if occurrence, ok := meeting.Occurrence(object.OccurrenceID.String()); ok {
		window := occurrence.Window()
		window.Start = window.Start.UTC()
		window.End = window.End.UTC()
		if trigger.Timestamp.After(window.End) {
			window.End = trigger.Timestamp.UTC()
		}
		slog.DebugContext(ctx, "using named occurrence as webhook window",
			"occurrence_id", occurrence.OccurrenceID,
		)
		return &window
	}

	occurrence, ok := s.occurrences.LatestOccurrence(meeting, trigger.Timestamp)
	if !ok {
		slog.WarnContext(ctx, "no occurrence found for recurring meeting, using every webhook event")
		return nil
	}

	slog.DebugContext(ctx, "using latest occurrence as webhook window",
		"occurrence_id", occurrence.OccurrenceID,
	)
	return &models.TimeWindow{Start: occurrence.StartTime.UTC(), End: trigger.Timestamp.UTC()}
}

// webhookRecord builds the webhook record. Time and duration come from the
// trigger payload rather than the provider.
func webhookRecord(
	meeting *models.MeetingDescriptor,
	object *models.ZoomMeetingObject,
	trigger *models.WebhookEvent,
	window *models.TimeWindow,
	aggregate *WebhookAggregate,
) *models.MeetingAttendanceRecord {
	topic := utils.CoalesceString(object.Topic, meeting.Topic)

	scheduled := trigger.Timestamp.UTC()
	duration := object.Duration
	if payloadWindow, ok := object.Window(); ok {
		scheduled = payloadWindow.Start
		duration = payloadWindow.DurationMinutes()
	} else if object.StartTime != nil {
		scheduled = object.StartTime.UTC()
	} else if window != nil {
		scheduled = window.Start
	}

	return &models.MeetingAttendanceRecord{
		MeetingID:        trigger.MeetingID,
		Title:            topic + " (webhook)",
		Description:      meeting.Agenda,
		ScheduledTime:    scheduled,
		DurationMinutes:  duration,
		RegistrantCount:  aggregate.RegistrantCount,
		ParticipantCount: aggregate.ParticipantCount,
		Source:           models.AttendanceSourceWebhook,
	}
}

// purge deletes the in-scope events and the trigger. Deletes are idempotent,
// so a partially purged meeting can be archived again.
func (s *ArchivalService) purge(ctx context.Context, trigger *models.WebhookEvent, events []*models.WebhookEvent) (int, error) {
	uids := make([]string, 0, len(events)+1)
	seen := make(map[string]struct{}, len(events)+1)
	add := func(uid string) {
		if _, ok := seen[uid]; ok || uid == "" {
			return
		}
		seen[uid] = struct{}{}
		uids = append(uids, uid)
	}
	for _, event := range events {
		add(event.UID)
	}
	add(trigger.UID)

	functions := make([]func() error, 0, len(uids))
	for _, uid := range uids {
		functions = append(functions, func() error {
			return s.events.Delete(ctx, uid)
		})
	}

	slog.DebugContext(ctx, "purging webhook events",
		"events", len(uids),
		"workers", s.pool.Size(),
	)
	if errs := s.pool.RunAll(ctx, functions...); len(errs) > 0 {
		slog.ErrorContext(ctx, "error purging webhook events",
			"failed", len(errs),
			logging.ErrKey, errs[0],
		)
		return len(uids) - len(errs), errors.Join(errs...)
	}
	return len(uids), nil
}

// fail writes the error record of a failed attempt.
func (s *ArchivalService) fail(ctx context.Context, trigger *models.WebhookEvent, result *ArchivalResult, cause error) {
	result.transition(ArchivalStateErrored)

	slog.ErrorContext(ctx, "meeting archival failed", logging.ErrKey, cause)

	title := ""
	if object, err := trigger.MeetingObject(); err == nil {
		title = object.Topic
	}

	record := &models.MeetingAttendanceRecord{
		MeetingID:     trigger.MeetingID,
		Title:         title,
		Description:   fmt.Sprintf("archival failed: %v", cause),
		ScheduledTime: trigger.Timestamp.UTC(),
		Source:        models.AttendanceSourceError,
	}
	if err := s.records.Create(ctx, record); err != nil {
		slog.ErrorContext(ctx, "error creating error attendance record",
			logging.ErrKey, err,
			logging.PriorityCritical(),
		)
		return
	}
	result.Records = append(result.Records, record)
}

func (s *ArchivalService) recordOutcome(ctx context.Context, state ArchivalState) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(state))))
}

// Reprocess runs archival again for every stored meeting-ended event of a
// meeting. Triggers purged by an earlier pass of the same call are skipped.
func (s *ArchivalService) Reprocess(ctx context.Context, meetingID int64) (*models.ReprocessResponse, error) {
	ctx = logging.AppendCtx(ctx, slog.String("reprocess_meeting_id", strconv.FormatInt(meetingID, 10)))

	events, err := s.events.ListByMeeting(ctx, meetingID)
	if err != nil {
		slog.ErrorContext(ctx, "error listing webhook events for reprocessing", logging.ErrKey, err)
		return nil, err
	}

	response := &models.ReprocessResponse{MeetingID: meetingID}
	for _, event := range events {
		if event.Kind != models.WebhookEventMeetingEnded {
			continue
		}

		if _, err := s.events.Get(ctx, event.UID); err != nil {
			if domain.IsNotFound(err) {
				slog.DebugContext(ctx, "trigger already purged", "event_uid", event.UID)
				continue
			}
			return nil, err
		}

		response.Attempts++
		result, err := s.Archive(ctx, event)
		if result != nil {
			response.Records += len(result.Records)
		}
		if err != nil {
			response.Errors = append(response.Errors, err.Error())
		}
	}

	slog.InfoContext(ctx, "reprocessed meeting",
		"attempts", response.Attempts,
		"records", response.Records,
	)
	return response, nil
}
