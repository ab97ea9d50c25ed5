// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package attendance holds the pure computations behind an attendance record:
// registrant normalization and participant interval merging.
package attendance

import (
	"sort"
	"strings"

	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-meeting-attendance-service/pkg/utils"
)

// UnknownLocation is used when a registrant supplied no location fields.
const UnknownLocation = "Unknown"

// NormalizeRegistrant builds a RegistrantRecord from a raw registrant row.
func NormalizeRegistrant(raw models.ZoomRegistrant) models.RegistrantRecord {
	name := joinPresent(" ", raw.FirstName, raw.LastName)

	location := utils.CoalesceString(joinPresent(", ", raw.City, raw.State, raw.Country), UnknownLocation)

	return models.RegistrantRecord{
		Name:            name,
		Email:           strings.ToLower(raw.Email),
		Location:        location,
		CustomQuestions: raw.CustomQuestions,
		SortKey:         surnameKey(name),
	}
}

// NormalizeRegistrants normalizes raw rows and orders them by surname,
// case-insensitively. Rows with equal keys keep their input order.
func NormalizeRegistrants(raw []models.ZoomRegistrant) []models.RegistrantRecord {
	records := make([]models.RegistrantRecord, 0, len(raw))
	for _, r := range raw {
		records = append(records, NormalizeRegistrant(r))
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].SortKey < records[j].SortKey
	})
	return records
}

// surnameKey is the lower-cased last space-delimited token of name.
func surnameKey(name string) string {
	tokens := strings.Split(name, " ")
	return strings.ToLower(tokens[len(tokens)-1])
}

func joinPresent(sep string, parts ...string) string {
	present := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			present = append(present, p)
		}
	}
	return strings.Join(present, sep)
}
