// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package attendance

import (
	"sort"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
)

// Interval is one join/leave pair of a participant.
type Interval struct {
	Join  time.Time
	Leave time.Time
}

// Duration is the interval length. A leave before the join counts as zero.
func (i Interval) Duration() time.Duration {
	if i.Leave.Before(i.Join) {
		return 0
	}
	return i.Leave.Sub(i.Join)
}

// Minutes is the interval length in fractional minutes.
func (i Interval) Minutes() float64 {
	return i.Duration().Minutes()
}

// MergeIntervals unions overlapping and touching intervals. The input is not
// modified and the result is ordered by join time, so any permutation of the
// same intervals merges to the same result.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	for i, in := range intervals {
		if in.Leave.Before(in.Join) {
			in.Leave = in.Join
		}
		sorted[i] = in
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Join.Equal(sorted[j].Join) {
			return sorted[i].Leave.Before(sorted[j].Leave)
		}
		return sorted[i].Join.Before(sorted[j].Join)
	})

	merged := make([]Interval, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if !next.Join.After(current.Leave) {
			if next.Leave.After(current.Leave) {
				current.Leave = next.Leave
			}
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// TotalMinutes sums interval lengths in fractional minutes.
func TotalMinutes(intervals []Interval) float64 {
	var total time.Duration
	for _, in := range intervals {
		total += in.Duration()
	}
	return total.Minutes()
}

// ParticipantAggregate is a participant's attendance after merging.
type ParticipantAggregate struct {
	Email           string
	Name            string
	Intervals       []Interval
	DurationMinutes float64
}

// AggregateParticipants groups participant rows by lower-cased email, drops
// rows without an email and merges each group's intervals. The display name is
// the first non-empty name seen for the email. Results are ordered by email.
func AggregateParticipants(rows []models.ZoomParticipant) []ParticipantAggregate {
	groups := make(map[string]*ParticipantAggregate)
	for _, row := range rows {
		email := strings.ToLower(strings.TrimSpace(row.UserEmail))
		if email == "" {
			continue
		}
		agg, ok := groups[email]
		if !ok {
			agg = &ParticipantAggregate{Email: email}
			groups[email] = agg
		}
		if agg.Name == "" {
			agg.Name = row.Name
		}
		agg.Intervals = append(agg.Intervals, Interval{Join: row.JoinTime, Leave: row.LeaveTime})
	}

	aggregates := make([]ParticipantAggregate, 0, len(groups))
	for _, agg := range groups {
		agg.Intervals = MergeIntervals(agg.Intervals)
		agg.DurationMinutes = TotalMinutes(agg.Intervals)
		aggregates = append(aggregates, *agg)
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Email < aggregates[j].Email
	})
	return aggregates
}
